package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/plant-monitor/internal/logic"
)

func sampleRecord() logic.CycleRecord {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r := logic.NewReading(ts)
	r.Temperature = logic.Known(26)
	r.Humidity = logic.Known(65)
	r.BMPTemperature = logic.Known(25.5)
	r.Pressure = logic.Known(1012.25)
	r.Altitude = logic.Known(7.5)
	r.Light = logic.Known(182)
	r.SoilDry, r.SoilValid = true, true
	return logic.CycleRecord{
		Cycle:     10,
		Time:      ts,
		Reading:   r,
		Actuators: logic.ActuatorState{FanOn: true, PumpOn: true},
		FanStatus: logic.StateOn,
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	payload, err := FormatPayload(NewPayload(sampleRecord()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"dht_temp":26,"dht_humidity":65,"soil_moisture":1,"fan_status":"ON","pump_status":"ON","bmp_temp":25.5,"bmp_pressure":1012.25,"bmp_altitude":7.5,"photoresistor":182,"timestamp":"2026-03-14 09:26:53"}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestNewPayloadUnknowns(t *testing.T) {
	rec := logic.CycleRecord{
		Time:      time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Reading:   logic.NewReading(time.Time{}),
		FanStatus: logic.StateUnknown,
	}

	p := NewPayload(rec)
	if p.DHTTemp != -1 || p.DHTHumidity != -1 || p.BMPTemp != -1 ||
		p.BMPPressure != -1 || p.BMPAltitude != -1 || p.Photoresistor != -1 {
		t.Errorf("unknown values should be -1: %+v", p)
	}
	if p.FanStatus != "OFF" {
		t.Errorf("fan: got %s, want OFF", p.FanStatus)
	}
	if p.SoilMoisture != 0 {
		t.Errorf("soil: got %d, want 0", p.SoilMoisture)
	}
}

func TestNewPayloadUsesRecordLocation(t *testing.T) {
	rec := sampleRecord()
	rec.Time = time.Date(2026, 3, 14, 22, 0, 0, 0, time.FixedZone("NZDT", 13*3600))

	if got := NewPayload(rec).Timestamp; got != "2026-03-14 22:00:00" {
		t.Errorf("timestamp: got %s, want 2026-03-14 22:00:00", got)
	}
}

func TestStatusTopic(t *testing.T) {
	if got := StatusTopic("plant/sensors/pi"); got != "plant/sensors/pi/status" {
		t.Errorf("got %s", got)
	}
}

func TestFormatStatus(t *testing.T) {
	payload, err := FormatStatus(StatusOnline, "pi", "run-1", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"status":"online","client_id":"pi","run_id":"run-1","timestamp":"2026-03-14T09:00:00Z"}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatStatusWillOmitsTimestamp(t *testing.T) {
	payload, _ := FormatStatus(StatusOffline, "pi", "", time.Time{})

	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, exists := parsed["timestamp"]; exists {
		t.Error("timestamp should be omitted from the will")
	}
	if _, exists := parsed["run_id"]; exists {
		t.Error("empty run_id should be omitted")
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("refused")

	var ce *ConnectError
	if err := error(&ConnectError{Endpoint: "x", Err: cause}); !errors.As(err, &ce) || !errors.Is(err, cause) {
		t.Error("ConnectError should unwrap to its cause")
	}
	var pe *PublishError
	if err := error(&PublishError{Topic: "t", Err: cause}); !errors.As(err, &pe) || !errors.Is(err, cause) {
		t.Error("PublishError should unwrap to its cause")
	}
}

func TestFakeReporter(t *testing.T) {
	f := NewFakeReporter()

	if err := f.Publish(NewPayload(sampleRecord())); !errors.Is(err, ErrNotConnected) {
		t.Errorf("publish while disconnected: got %v, want ErrNotConnected", err)
	}

	if err := f.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsConnected() {
		t.Error("should be connected")
	}
	if err := f.Publish(NewPayload(sampleRecord())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}

	f.PublishError = errors.New("broken pipe")
	var pe *PublishError
	if err := f.Publish(NewPayload(sampleRecord())); !errors.As(err, &pe) {
		t.Errorf("got %v, want *PublishError", err)
	}

	f.Disconnect()
	if f.IsConnected() {
		t.Error("should be disconnected after Disconnect()")
	}
}

func TestFakeReporterConnectError(t *testing.T) {
	f := NewFakeReporter()
	f.ConnectError = errors.New("no route")

	var ce *ConnectError
	if err := f.Connect(); !errors.As(err, &ce) {
		t.Errorf("got %v, want *ConnectError", err)
	}
	if f.IsConnected() {
		t.Error("should not be connected")
	}
	if f.ConnectCalls != 1 {
		t.Errorf("connect calls: got %d, want 1", f.ConnectCalls)
	}
}

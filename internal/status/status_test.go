package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/plant-monitor/internal/logic"
)

func sampleRecord() logic.CycleRecord {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r := logic.NewReading(ts)
	r.Temperature = logic.Known(26)
	r.Humidity = logic.Known(65)
	r.Pressure = logic.Known(1012.5)
	r.SoilDry, r.SoilValid = true, true
	return logic.CycleRecord{
		Cycle:     42,
		Time:      ts,
		Reading:   r,
		Actuators: logic.ActuatorState{FanOn: true, PumpOn: true},
		FanStatus: logic.StateOn,
		Persist:   logic.PersistOK,
		Publish:   logic.PublishOK,
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Period: time.Second, PublishEvery: 10, Broker: "ssl://broker:8883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PublishEvery != 10 {
		t.Errorf("Config.PublishEvery: got %d, want 10", snap.Config.PublishEvery)
	}
	if snap.Config.HTTPAddr != ":8080" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":8080")
	}
	if snap.HasCycle {
		t.Error("expected HasCycle=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestRecordAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Record(sampleRecord(), Counts{Cycles: 42, Published: 4, PersistFailures: 1})

	snap := tr.Snapshot()
	if !snap.HasCycle {
		t.Fatal("expected HasCycle=true")
	}
	if snap.Last.Cycle != 42 {
		t.Errorf("Last.Cycle: got %d, want 42", snap.Last.Cycle)
	}
	if snap.Counts.Published != 4 {
		t.Errorf("Counts.Published: got %d, want 4", snap.Counts.Published)
	}
	if snap.Counts.PersistFailures != 1 {
		t.Errorf("Counts.PersistFailures: got %d, want 1", snap.Counts.PersistFailures)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{})
	tr.now = func() time.Time { return start.Add(90 * time.Second) }

	if got := tr.Snapshot().Uptime(); got != 90*time.Second {
		t.Errorf("Uptime: got %v, want 1m30s", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Record(sampleRecord(), Counts{Cycles: 1})

	snap := tr.Snapshot()
	snap.Last.Cycle = 999
	snap.Counts.Cycles = 999

	again := tr.Snapshot()
	if again.Last.Cycle != 42 || again.Counts.Cycles != 1 {
		t.Error("modifying a snapshot should not affect the tracker")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Last:          sampleRecord(),
		HasCycle:      true,
		Counts:        Counts{Cycles: 42, Published: 4, ReconnectAttempts: 2},
		StartTime:     start,
		Now:           start.Add(125 * time.Second),
		MQTTConnected: true,
		Config: Config{
			Broker:       "ssl://broker:8883",
			Topic:        "plant/sensors/pi",
			RunID:        "run-1",
			Period:       time.Second,
			PublishEvery: 10,
			SoilMode:     "digital",
		},
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if !s.Ready {
		t.Error("expected Ready=true")
	}
	if s.UptimeSeconds != 125 {
		t.Errorf("UptimeSeconds: got %d, want 125", s.UptimeSeconds)
	}
	if s.RunID != "run-1" {
		t.Errorf("RunID: got %q", s.RunID)
	}
	if !s.MQTT.Connected || s.MQTT.Topic != "plant/sensors/pi" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
	if s.Config.PeriodMs != 1000 {
		t.Errorf("Config.PeriodMs: got %d, want 1000", s.Config.PeriodMs)
	}
	if s.Counts.ReconnectAttempts != 2 {
		t.Errorf("Counts.ReconnectAttempts: got %d, want 2", s.Counts.ReconnectAttempts)
	}
	if s.Last == nil {
		t.Fatal("expected last_cycle")
	}
	if s.Last.Temperature == nil || *s.Last.Temperature != 26 {
		t.Errorf("Last.Temperature: got %v, want 26", s.Last.Temperature)
	}
	if s.Last.BMPTemperature != nil {
		t.Errorf("Last.BMPTemperature: got %v, want null", *s.Last.BMPTemperature)
	}
	if s.Last.Soil != "DRY" || s.Last.Fan != "ON" || s.Last.Pump != "ON" {
		t.Errorf("Last: soil=%s fan=%s pump=%s", s.Last.Soil, s.Last.Fan, s.Last.Pump)
	}
	if s.Last.Publish != "published" || s.Last.Persist != "ok" {
		t.Errorf("Last: publish=%s persist=%s", s.Last.Publish, s.Last.Persist)
	}
}

func TestFormatJSONBeforeFirstCycle(t *testing.T) {
	data := FormatJSON(Snapshot{})

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, exists := parsed["status"]["last_cycle"]; exists {
		t.Error("last_cycle should be omitted before the first cycle")
	}
	if parsed["status"]["ready"] != false {
		t.Error("expected ready=false")
	}
}

func TestSoilText(t *testing.T) {
	tests := []struct {
		dry, valid bool
		want       string
	}{
		{true, true, "DRY"},
		{false, true, "WET"},
		{true, false, "UNKNOWN"},
	}
	for _, tt := range tests {
		r := logic.Reading{SoilDry: tt.dry, SoilValid: tt.valid}
		if got := SoilText(r); got != tt.want {
			t.Errorf("SoilText(dry=%v, valid=%v): got %s, want %s", tt.dry, tt.valid, got, tt.want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Record(sampleRecord(), Counts{Cycles: i})
			tr.SetMQTTConnected(i%2 == 0)
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}

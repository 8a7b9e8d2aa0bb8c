package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/plant-monitor/internal/logic"
	"github.com/sweeney/plant-monitor/internal/status"
	"github.com/sweeney/plant-monitor/internal/store"
)

type failingHistory struct{}

func (failingHistory) Recent(int) ([]store.Row, error) {
	return nil, errors.New("database is locked")
}

func newTestServer(t *testing.T, history History) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Broker:       "ssl://broker.example:8883",
		Topic:        "plant/sensors/pi",
		HTTPAddr:     ":8080",
		Period:       time.Second,
		PublishEvery: 10,
		SoilMode:     "digital",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, history)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func sampleRecord(cycle int) logic.CycleRecord {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r := logic.NewReading(ts)
	r.Temperature = logic.Known(26)
	r.Humidity = logic.Known(65)
	r.SoilDry, r.SoilValid = true, true
	return logic.CycleRecord{
		Cycle:     cycle,
		Time:      ts,
		Reading:   r,
		Actuators: logic.ActuatorState{FanOn: true, PumpOn: true},
		FanStatus: logic.StateOn,
		Persist:   logic.PersistOK,
		Publish:   logic.PublishOK,
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Record(sampleRecord(10), status.Counts{Cycles: 10, Published: 1})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "ssl://broker.example:8883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Published != 1 {
		t.Errorf("Counts.Published: got %d, want 1", sj.Status.Counts.Published)
	}
	if sj.Status.Last == nil || sj.Status.Last.Cycle != 10 {
		t.Fatalf("Last: got %+v, want cycle 10", sj.Status.Last)
	}
	if sj.Status.Last.Fan != "ON" {
		t.Errorf("Last.Fan: got %q, want ON", sj.Status.Last.Fan)
	}
}

func TestJSONBeforeFirstCycle(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Ready {
		t.Error("expected Ready=false before the first cycle")
	}
	if sj.Status.Last != nil {
		t.Error("expected no last cycle")
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Record(sampleRecord(3), status.Counts{Cycles: 3})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"S=D P=1 A=1 D=1", "T=26 H=65 F=1", "26.0 °C", "DRY"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Waiting for the first cycle") {
		t.Error("expected waiting message before the first cycle")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	fs := store.NewFakeStore()
	for i := 1; i <= 5; i++ {
		fs.Append(sampleRecord(i))
	}
	ts, _ := newTestServer(t, fs)

	resp, err := http.Get(ts.URL + "/history.json?limit=2")
	if err != nil {
		t.Fatalf("GET /history.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var hj HistoryJSON
	if err := json.NewDecoder(resp.Body).Decode(&hj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if hj.Count != 2 || len(hj.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", hj.Count)
	}
	if hj.Rows[0].ID != 5 {
		t.Errorf("first row: got id %d, want 5 (newest first)", hj.Rows[0].ID)
	}
	if hj.Rows[0].AWSStatus != "1" {
		t.Errorf("aws_status: got %q, want 1", hj.Rows[0].AWSStatus)
	}
}

func TestHistoryEmptyIsArray(t *testing.T) {
	ts, _ := newTestServer(t, store.NewFakeStore())

	resp, err := http.Get(ts.URL + "/history.json")
	if err != nil {
		t.Fatalf("GET /history.json: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"rows":[]`) {
		t.Errorf("expected empty rows array, got %s", body)
	}
}

func TestHistoryBadLimit(t *testing.T) {
	ts, _ := newTestServer(t, store.NewFakeStore())

	for _, q := range []string{"limit=abc", "limit=0", "limit=-3"} {
		resp, err := http.Get(ts.URL + "/history.json?" + q)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != 400 {
			t.Errorf("%s: got %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestHistoryStoreError(t *testing.T) {
	ts, _ := newTestServer(t, failingHistory{})

	resp, err := http.Get(ts.URL + "/history.json")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 500 {
		t.Errorf("status: got %d, want 500", resp.StatusCode)
	}
}

func TestHistoryNotServedWithoutStore(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/history.json")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	// Initially no cycle
	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	// Record a cycle
	rec := sampleRecord(1)
	rec.Actuators.PumpOn = false
	tr.Record(rec, status.Counts{Cycles: 1})
	tr.SetMQTTConnected(true)

	// Should reflect new state
	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj2.Status.Last.Pump != "OFF" {
		t.Errorf("Pump: got %q, want OFF", sj2.Status.Last.Pump)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestJSONAllowsCrossOrigin(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/index.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "http://dashboard.local")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
	}
}

package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/plant-monitor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Ready         bool       `json:"ready"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	RunID         string     `json:"run_id"`
	MQTT          MQTTStatus `json:"mqtt"`
	Last          *CycleJSON `json:"last_cycle,omitempty"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Topic     string `json:"topic"`
}

// CycleJSON is the latest cycle. Unknown values are null.
type CycleJSON struct {
	Cycle          int      `json:"cycle"`
	Timestamp      string   `json:"timestamp"`
	Temperature    *float64 `json:"temperature"`
	Humidity       *float64 `json:"humidity"`
	BMPTemperature *float64 `json:"bmp_temperature"`
	Pressure       *float64 `json:"pressure_hpa"`
	Altitude       *float64 `json:"altitude_m"`
	Light          *float64 `json:"light"`
	Soil           string   `json:"soil"`
	Fan            string   `json:"fan"`
	Pump           string   `json:"pump"`
	Publish        string   `json:"publish"`
	Persist        string   `json:"persist"`
}

// CountsJSON is the JSON representation of running totals.
type CountsJSON struct {
	Cycles            int `json:"cycles"`
	Published         int `json:"published"`
	PublishFailures   int `json:"publish_failures"`
	PersistFailures   int `json:"persist_failures"`
	SensorFailures    int `json:"sensor_failures"`
	ReconnectAttempts int `json:"reconnect_attempts"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs       int64   `json:"period_ms"`
	PublishEvery   int     `json:"publish_every"`
	ReconnectEvery int     `json:"reconnect_every"`
	FanOnC         float64 `json:"fan_on_c"`
	SoilMode       string  `json:"soil_mode"`
	ClientID       string  `json:"client_id"`
	HTTPAddr       string  `json:"http_addr"`
}

// SoilText describes the soil reading for humans.
func SoilText(r logic.Reading) string {
	switch {
	case !r.SoilValid:
		return "UNKNOWN"
	case r.SoilDry:
		return "DRY"
	default:
		return "WET"
	}
}

func measurePtr(m logic.Measure) *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func buildCycle(rec logic.CycleRecord) *CycleJSON {
	r := rec.Reading
	fan := rec.FanStatus
	if fan == "" {
		fan = logic.StateUnknown
	}
	return &CycleJSON{
		Cycle:          rec.Cycle,
		Timestamp:      rec.Time.UTC().Format(time.RFC3339),
		Temperature:    measurePtr(r.Temperature),
		Humidity:       measurePtr(r.Humidity),
		BMPTemperature: measurePtr(r.BMPTemperature),
		Pressure:       measurePtr(r.Pressure),
		Altitude:       measurePtr(r.Altitude),
		Light:          measurePtr(r.Light),
		Soil:           SoilText(r),
		Fan:            string(fan),
		Pump:           string(rec.PumpStatus()),
		Publish:        rec.Publish.String(),
		Persist:        rec.Persist.String(),
	}
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	inner := StatusInner{
		Ready:         snap.HasCycle,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		RunID:         snap.Config.RunID,
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Topic:     snap.Config.Topic,
		},
		Counts: CountsJSON{
			Cycles:            snap.Counts.Cycles,
			Published:         snap.Counts.Published,
			PublishFailures:   snap.Counts.PublishFailures,
			PersistFailures:   snap.Counts.PersistFailures,
			SensorFailures:    snap.Counts.SensorFailures,
			ReconnectAttempts: snap.Counts.ReconnectAttempts,
		},
		Config: ConfigJSON{
			PeriodMs:       snap.Config.Period.Milliseconds(),
			PublishEvery:   snap.Config.PublishEvery,
			ReconnectEvery: snap.Config.ReconnectEvery,
			FanOnC:         snap.Config.FanOnC,
			SoilMode:       snap.Config.SoilMode,
			ClientID:       snap.Config.ClientID,
			HTTPAddr:       snap.Config.HTTPAddr,
		},
	}
	if snap.HasCycle {
		inner.Last = buildCycle(snap.Last)
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

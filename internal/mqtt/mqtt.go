// Package mqtt forwards cycle readings to an MQTT broker over mutual TLS.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/plant-monitor/internal/logic"
)

// TimeLayout is the payload timestamp format (local time).
const TimeLayout = "2006-01-02 15:04:05"

// DefaultPort is the MQTT-over-TLS port.
const DefaultPort = 8883

// Reporter sends payloads to the remote endpoint. It never reconnects on its
// own: the caller decides when to call Connect again.
type Reporter interface {
	// Connect establishes a session. Returns *ConnectError on failure.
	Connect() error

	// IsConnected reports whether a session is believed to be up.
	IsConnected() bool

	// Publish sends one payload with at-least-once delivery.
	// Returns ErrNotConnected or *PublishError.
	Publish(p Payload) error

	// Disconnect tears the session down. Safe to call when not connected.
	Disconnect()
}

// ErrNotConnected is returned by Publish when no session is up.
var ErrNotConnected = errors.New("mqtt: not connected")

// ConnectError is a failed connection attempt.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// PublishError is a failed publish on an open session.
type PublishError struct {
	Topic string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s: %v", e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Payload is the JSON document published at each decimation boundary.
// Unknown numeric values carry -1.
type Payload struct {
	DHTTemp       float64 `json:"dht_temp"`
	DHTHumidity   float64 `json:"dht_humidity"`
	SoilMoisture  int     `json:"soil_moisture"`
	FanStatus     string  `json:"fan_status"`
	PumpStatus    string  `json:"pump_status"`
	BMPTemp       float64 `json:"bmp_temp"`
	BMPPressure   float64 `json:"bmp_pressure"`
	BMPAltitude   float64 `json:"bmp_altitude"`
	Photoresistor int     `json:"photoresistor"`
	Timestamp     string  `json:"timestamp"`
}

// NewPayload builds the payload for a cycle record. The timestamp is in the
// record time's location.
func NewPayload(rec logic.CycleRecord) Payload {
	r := rec.Reading
	return Payload{
		DHTTemp:       r.Temperature.OrUnknown(),
		DHTHumidity:   r.Humidity.OrUnknown(),
		SoilMoisture:  rec.SoilMoisture(),
		FanStatus:     string(rec.FanRecordStatus()),
		PumpStatus:    string(rec.PumpStatus()),
		BMPTemp:       r.BMPTemperature.OrUnknown(),
		BMPPressure:   r.Pressure.OrUnknown(),
		BMPAltitude:   r.Altitude.OrUnknown(),
		Photoresistor: int(r.Light.OrUnknown()),
		Timestamp:     rec.Time.Format(TimeLayout),
	}
}

// FormatPayload creates the JSON payload.
func FormatPayload(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// StatusTopic returns the lifecycle topic for a data topic.
func StatusTopic(topic string) string {
	return topic + "/status"
}

// Lifecycle states published on the status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// StatusPayload is the retained lifecycle message on the status topic.
type StatusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	RunID     string `json:"run_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// FormatStatus creates the JSON lifecycle payload. A zero time omits the
// timestamp, as in the last-will message registered at connect time.
func FormatStatus(status, clientID, runID string, t time.Time) ([]byte, error) {
	p := StatusPayload{
		Status:   status,
		ClientID: clientID,
		RunID:    runID,
	}
	if !t.IsZero() {
		p.Timestamp = t.UTC().Format(time.RFC3339)
	}
	return json.Marshal(p)
}

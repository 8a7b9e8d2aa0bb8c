// Package status provides a thread-safe status tracker for the plant monitor.
// It is written by the control loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/plant-monitor/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Broker         string
	Topic          string
	ClientID       string
	HTTPAddr       string
	RunID          string
	SoilMode       string
	Period         time.Duration
	PublishEvery   int
	ReconnectEvery int
	FanOnC         float64
}

// Counts are running totals since startup.
type Counts struct {
	Cycles            int
	Published         int
	PublishFailures   int
	PersistFailures   int
	SensorFailures    int
	ReconnectAttempts int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Last          logic.CycleRecord
	HasCycle      bool
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Record stores the latest completed cycle and the running totals.
// Called by the controller at the end of every cycle.
func (t *Tracker) Record(rec logic.CycleRecord, counts Counts) {
	t.mu.Lock()
	t.snap.Last = rec
	t.snap.HasCycle = true
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}

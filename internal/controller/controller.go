// Package controller runs the plant monitor's fixed-period control cycle:
// sample, actuate, publish every Nth cycle, persist, display.
package controller

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/plant-monitor/internal/dht"
	"github.com/sweeney/plant-monitor/internal/gpio"
	"github.com/sweeney/plant-monitor/internal/logic"
	"github.com/sweeney/plant-monitor/internal/mqtt"
	"github.com/sweeney/plant-monitor/internal/sensor"
	"github.com/sweeney/plant-monitor/internal/status"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{"package": "controller"})

// Collaborator contracts. Optional ones may be nil in a Session.
type (
	// Hygrometer reads one DHT11 frame.
	Hygrometer interface {
		Read(ctx context.Context) (dht.Frame, error)
	}

	// Barometer reads temperature and pressure.
	Barometer interface {
		Read() (sensor.BaroReading, error)
	}

	// ADC reads one analog channel.
	ADC interface {
		ReadChannel(ch int) (uint8, error)
	}

	// Display shows two short lines.
	Display interface {
		Show(line1, line2 string) error
		Close() error
	}

	// Recorder appends one row per cycle.
	Recorder interface {
		Append(rec logic.CycleRecord) error
		Close() error
	}

	// MetricsSink receives every cycle.
	MetricsSink interface {
		Write(rec logic.CycleRecord) error
		Close() error
	}
)

// Session owns every collaborator the control loop touches. It is built once
// at startup and released by Shutdown.
type Session struct {
	DHT       Hygrometer
	Soil      gpio.SoilReader // digital soil mode
	Barometer Barometer       // optional
	ADC       ADC             // optional; light and analog soil
	Relays    gpio.Relays
	Reporter  mqtt.Reporter
	Store     Recorder
	Display   Display         // optional
	Metrics   MetricsSink     // optional
	Tracker   *status.Tracker // optional
}

// Config holds the control parameters.
type Config struct {
	FanOnC         float64
	Pump           logic.PumpPolicy
	LightChannel   int
	SoilChannel    int
	PublishEvery   int
	ReconnectEvery int
}

// DefaultConfig returns the standard control parameters.
func DefaultConfig() Config {
	return Config{
		FanOnC:         logic.DefaultFanOnC,
		Pump:           logic.PumpPolicy{Mode: logic.SoilDigital},
		LightChannel:   0,
		SoilChannel:    1,
		PublishEvery:   10,
		ReconnectEvery: 30,
	}
}

// Controller is the cycle state machine. It is not safe for concurrent use.
type Controller struct {
	s         Session
	cfg       Config
	publish   *logic.Decimator
	reconnect *logic.ReconnectTimer
	cycle     int
	pumpOn    bool
	counts    status.Counts
	now       func() time.Time
}

// New creates a Controller over the given session.
func New(s Session, cfg Config) *Controller {
	return &Controller{
		s:         s,
		cfg:       cfg,
		publish:   logic.NewDecimator(cfg.PublishEvery),
		reconnect: logic.NewReconnectTimer(cfg.ReconnectEvery),
		now:       time.Now,
	}
}

// Counts returns the running totals.
func (c *Controller) Counts() status.Counts {
	return c.counts
}

// Cycle runs one control cycle and returns what it observed and decided.
// Sensor, transport, persistence, and display failures are recorded and
// logged; none of them ends the cycle early.
func (c *Controller) Cycle(ctx context.Context) logic.CycleRecord {
	c.cycle++
	c.counts.Cycles = c.cycle
	t := c.now()

	rec := logic.CycleRecord{Cycle: c.cycle, Time: t}
	rec.Reading = c.sample(ctx, t)

	// Actuation
	fanOn, fanStatus := logic.DecideFan(rec.Reading.Temperature, c.cfg.FanOnC)
	pumpOn := c.cfg.Pump.Decide(rec.Reading, c.currentPump())
	if err := c.s.Relays.Set(fanOn, pumpOn); err != nil {
		log.WithError(err).Warn("Failed to drive relays")
	}
	c.pumpOn = pumpOn
	rec.Actuators = logic.ActuatorState{FanOn: fanOn, PumpOn: pumpOn}
	rec.FanStatus = fanStatus

	rec.Publish = c.maybePublish(rec)
	c.maybeReconnect()

	if err := c.s.Store.Append(rec); err != nil {
		rec.Persist = logic.PersistFailed
		c.counts.PersistFailures++
		log.WithError(err).Warn("Failed to persist cycle")
	} else {
		rec.Persist = logic.PersistOK
	}

	if c.s.Display != nil {
		line1, line2 := logic.DisplayLines(rec)
		if err := c.s.Display.Show(line1, line2); err != nil {
			log.WithError(err).Warn("Failed to update display")
		}
	}
	if c.s.Metrics != nil {
		if err := c.s.Metrics.Write(rec); err != nil {
			log.WithError(err).Debug("Failed to write metrics")
		}
	}
	if c.s.Tracker != nil {
		c.s.Tracker.Record(rec, c.counts)
		c.s.Tracker.SetMQTTConnected(c.s.Reporter.IsConnected())
	}

	logCycle(rec)
	return rec
}

// currentPump reads the pump relay back so hysteresis carries across cycles.
// If the read-back fails the last commanded state is used.
func (c *Controller) currentPump() bool {
	_, pump, err := c.s.Relays.State()
	if err != nil {
		log.WithError(err).Debug("Relay read-back failed, using last command")
		return c.pumpOn
	}
	return pump
}

func (c *Controller) maybePublish(rec logic.CycleRecord) logic.PublishStatus {
	if !c.publish.Tick() {
		return logic.PublishSkipped
	}
	if !c.s.Reporter.IsConnected() {
		return logic.PublishOffline
	}
	if err := c.s.Reporter.Publish(mqtt.NewPayload(rec)); err != nil {
		c.counts.PublishFailures++
		log.WithError(err).Warn("Publish failed, tearing down session")
		c.s.Reporter.Disconnect()
		return logic.PublishFailed
	}
	c.counts.Published++
	return logic.PublishOK
}

func (c *Controller) maybeReconnect() {
	if c.s.Reporter.IsConnected() {
		c.reconnect.Reset()
		return
	}
	if !c.reconnect.Tick() {
		return
	}
	c.counts.ReconnectAttempts++
	log.WithField("attempt", c.counts.ReconnectAttempts).Info("Attempting reconnect")
	if err := c.s.Reporter.Connect(); err != nil {
		log.WithError(err).Warn("Reconnect failed")
	}
}

// Connect makes the initial connection attempt. Failure is not fatal: the
// reconnect timer takes over.
func (c *Controller) Connect() {
	if err := c.s.Reporter.Connect(); err != nil {
		log.WithError(err).Warn("Initial connect failed")
	}
}

// Run shows the start-up screen, attempts the initial connection, then runs
// one cycle immediately and one per tick until ctx is cancelled. The session
// is shut down before Run returns.
func (c *Controller) Run(ctx context.Context, tick <-chan time.Time) error {
	defer c.Shutdown()

	if c.s.Display != nil {
		if err := c.s.Display.Show("Plant Monitor", "System Starting"); err != nil {
			log.WithError(err).Warn("Failed to show start-up screen")
		}
	}
	c.Connect()

	for {
		c.Cycle(ctx)

		select {
		case <-ctx.Done():
			log.WithField("cycles", c.cycle).Info("Shutting down")
			return nil
		case <-tick:
		}
	}
}

// Shutdown forces both relays off, clears the display, disconnects, and
// closes every handle. Each failure is logged and the rest still run.
func (c *Controller) Shutdown() {
	if err := c.s.Relays.Set(false, false); err != nil {
		log.WithError(err).Warn("Failed to switch relays off")
	}
	if err := c.s.Relays.Close(); err != nil {
		log.WithError(err).Warn("Failed to release relays")
	}
	if c.s.Display != nil {
		if err := c.s.Display.Close(); err != nil {
			log.WithError(err).Warn("Failed to clear display")
		}
	}
	c.s.Reporter.Disconnect()
	if err := c.s.Store.Close(); err != nil {
		log.WithError(err).Warn("Failed to close store")
	}
	if c.s.Metrics != nil {
		if err := c.s.Metrics.Close(); err != nil {
			log.WithError(err).Warn("Failed to close metrics sink")
		}
	}
}

func (c *Controller) sensorFailed(name string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	c.counts.SensorFailures++
	log.WithError(&logic.SensorError{Sensor: name, Err: err}).Warn("Sensor read failed")
}

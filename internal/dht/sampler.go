package dht

import (
	"context"
	"fmt"
	"time"
)

// Line is the bidirectional data line the sensor is wired to.
type Line interface {
	// Drive configures the line as an output at the given level.
	Drive(level Level) error
	// Release configures the line as a pulled-up input.
	Release() error
	// Level reads the current input level.
	Level() (Level, error)
}

// SamplerConfig controls the start signal and capture bounds.
type SamplerConfig struct {
	// WakeHigh is how long the line is held high before the start signal.
	WakeHigh time.Duration
	// StartLow is how long the line is held low to request a reading.
	StartLow time.Duration
	// IdleSamples ends the capture once the level has not changed for more
	// than this many consecutive samples.
	IdleSamples int
	// MaxSamples bounds the capture so a stuck or noisy line cannot hang a cycle.
	MaxSamples int
}

// DefaultSamplerConfig returns the DHT11 timings.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		WakeHigh:    50 * time.Millisecond,
		StartLow:    20 * time.Millisecond,
		IdleSamples: 100,
		MaxSamples:  100000,
	}
}

// ctxCheckEvery is how often, in samples, the capture loop checks for cancellation.
const ctxCheckEvery = 1024

// Sampler captures one sensor transmission from a Line.
type Sampler struct {
	line  Line
	cfg   SamplerConfig
	sleep func(time.Duration)
}

// NewSampler creates a Sampler. Zero config fields take the DHT11 defaults.
func NewSampler(line Line, cfg SamplerConfig) *Sampler {
	def := DefaultSamplerConfig()
	if cfg.WakeHigh <= 0 {
		cfg.WakeHigh = def.WakeHigh
	}
	if cfg.StartLow <= 0 {
		cfg.StartLow = def.StartLow
	}
	if cfg.IdleSamples <= 0 {
		cfg.IdleSamples = def.IdleSamples
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = def.MaxSamples
	}
	return &Sampler{line: line, cfg: cfg, sleep: time.Sleep}
}

// Capture sends the start signal and samples the line as fast as it can be
// read until it goes idle. If MaxSamples is reached first the partial capture
// is returned with ErrTimeout.
func (s *Sampler) Capture(ctx context.Context) ([]Level, error) {
	if err := s.line.Drive(High); err != nil {
		return nil, fmt.Errorf("drive high: %w", err)
	}
	s.sleep(s.cfg.WakeHigh)
	if err := s.line.Drive(Low); err != nil {
		return nil, fmt.Errorf("drive low: %w", err)
	}
	s.sleep(s.cfg.StartLow)
	if err := s.line.Release(); err != nil {
		return nil, fmt.Errorf("release line: %w", err)
	}

	levels := make([]Level, 0, 4096)
	var last Level
	unchanged := 0

	for i := 0; i < s.cfg.MaxSamples; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return levels, err
			}
		}

		lv, err := s.line.Level()
		if err != nil {
			return levels, fmt.Errorf("read line: %w", err)
		}
		levels = append(levels, lv)

		if i == 0 || lv != last {
			last = lv
			unchanged = 0
			continue
		}
		unchanged++
		if unchanged > s.cfg.IdleSamples {
			return levels, nil
		}
	}
	return levels, ErrTimeout
}

// Sensor reads decoded frames from a DHT11.
type Sensor struct {
	sampler *Sampler
}

// NewSensor creates a Sensor on the given line.
func NewSensor(line Line, cfg SamplerConfig) *Sensor {
	return &Sensor{sampler: NewSampler(line, cfg)}
}

// Read captures and decodes one frame.
func (s *Sensor) Read(ctx context.Context) (Frame, error) {
	levels, err := s.sampler.Capture(ctx)
	if err != nil {
		return Frame{}, err
	}
	return Decode(levels)
}

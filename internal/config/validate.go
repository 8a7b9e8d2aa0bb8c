package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sweeney/plant-monitor/internal/logic"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	// ------------------------------------------------------------
	// TRANSPORT IDENTITY (REQUIRED, NO DEFAULTS)
	// ------------------------------------------------------------

	required := []struct {
		key   string
		value string
	}{
		{"aws.endpoint", cfg.AWS.Endpoint},
		{"aws.cert", cfg.AWS.Cert},
		{"aws.key", cfg.AWS.Key},
		{"aws.ca", cfg.AWS.CA},
		{"aws.client_id", cfg.AWS.ClientID},
		{"aws.topic", cfg.AWS.Topic},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if cfg.AWS.Port < 1 || cfg.AWS.Port > 65535 {
		return fmt.Errorf("aws.port %d out of range", cfg.AWS.Port)
	}
	if cfg.AWS.KeepAliveS < 0 {
		return fmt.Errorf("aws.keep_alive_s must not be negative")
	}

	// ------------------------------------------------------------
	// GPIO LINES
	// ------------------------------------------------------------

	if cfg.GPIO.Chip == "" {
		return errors.New("gpio.chip is required")
	}
	pins := []struct {
		key string
		pin int
	}{
		{"gpio.dht_pin", cfg.GPIO.DHTPin},
		{"gpio.soil_pin", cfg.GPIO.SoilPin},
		{"gpio.fan_pin", cfg.GPIO.FanPin},
		{"gpio.pump_pin", cfg.GPIO.PumpPin},
	}
	owner := make(map[int]string)
	for _, p := range pins {
		if p.pin < 0 {
			return fmt.Errorf("%s must not be negative", p.key)
		}
		if prev, exists := owner[p.pin]; exists {
			return fmt.Errorf("gpio line %d used by both %s and %s", p.pin, prev, p.key)
		}
		owner[p.pin] = p.key
	}

	// ------------------------------------------------------------
	// I2C DEVICES
	// ------------------------------------------------------------

	addrs := []struct {
		key  string
		addr int
	}{
		{"i2c.bmp_addr", cfg.I2C.BMPAddr},
		{"i2c.adc_addr", cfg.I2C.ADCAddr},
		{"i2c.lcd_addr", cfg.I2C.LCDAddr},
	}
	for _, a := range addrs {
		if a.addr < 0x03 || a.addr > 0x77 {
			return fmt.Errorf("%s 0x%02x is not a 7-bit device address", a.key, a.addr)
		}
	}
	if err := checkChannel("i2c.photo_channel", cfg.I2C.PhotoChannel); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// SOIL POLICY
	// ------------------------------------------------------------

	mode, err := logic.ParseSoilMode(strings.ToLower(strings.TrimSpace(cfg.Soil.Mode)))
	if err != nil {
		return fmt.Errorf("soil.mode: %w", err)
	}
	if mode == logic.SoilAnalog {
		if err := checkChannel("soil.analog_channel", cfg.Soil.AnalogChannel); err != nil {
			return err
		}
		if cfg.Soil.AnalogChannel == cfg.I2C.PhotoChannel {
			return fmt.Errorf("soil.analog_channel %d is the photoresistor channel", cfg.Soil.AnalogChannel)
		}
		if cfg.I2C.Disabled {
			return errors.New("soil.mode analog needs the i2c bus")
		}
		if cfg.Soil.OnThreshold >= cfg.Soil.OffThreshold {
			return fmt.Errorf(
				"soil.on_threshold %v must be below soil.off_threshold %v",
				cfg.Soil.OnThreshold,
				cfg.Soil.OffThreshold,
			)
		}
	}

	// ------------------------------------------------------------
	// CYCLE COUNTERS
	// ------------------------------------------------------------

	if cfg.Control.Period <= 0 {
		return fmt.Errorf("control.period must be positive, got %v", cfg.Control.Period)
	}
	if cfg.Control.PublishEvery < 1 {
		return fmt.Errorf("control.publish_every must be positive, got %d", cfg.Control.PublishEvery)
	}
	if cfg.Control.ReconnectEvery < 1 {
		return fmt.Errorf("control.reconnect_every must be positive, got %d", cfg.Control.ReconnectEvery)
	}

	if cfg.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if cfg.Influx.Addr != "" && cfg.Influx.Database == "" {
		return errors.New("influx.database is required when influx.addr is set")
	}

	return nil
}

func checkChannel(key string, ch int) error {
	if ch < 0 || ch > 3 {
		return fmt.Errorf("%s %d out of range 0-3", key, ch)
	}
	return nil
}

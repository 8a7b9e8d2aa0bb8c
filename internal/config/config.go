// Package config loads the plant monitor's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/plant-monitor/internal/gpio"
	"github.com/sweeney/plant-monitor/internal/lcd"
	"github.com/sweeney/plant-monitor/internal/logic"
	"github.com/sweeney/plant-monitor/internal/mqtt"
	"github.com/sweeney/plant-monitor/internal/sensor"
	"github.com/sweeney/plant-monitor/internal/store"
)

// DefaultPath is where the command looks for its configuration.
const DefaultPath = "/etc/plant-monitor/config.yaml"

type Config struct {
	AWS     AWSConfig     `yaml:"aws"`
	GPIO    GPIOConfig    `yaml:"gpio"`
	I2C     I2CConfig     `yaml:"i2c"`
	Soil    SoilConfig    `yaml:"soil"`
	Control ControlConfig `yaml:"control"`
	Store   StoreConfig   `yaml:"store"`
	HTTP    HTTPConfig    `yaml:"http"`
	Influx  InfluxConfig  `yaml:"influx"`
}

// ---- TRANSPORT ----

type AWSConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Port       int    `yaml:"port"`
	Cert       string `yaml:"cert"`
	Key        string `yaml:"key"`
	CA         string `yaml:"ca"`
	ClientID   string `yaml:"client_id"`
	Topic      string `yaml:"topic"`
	KeepAliveS int    `yaml:"keep_alive_s"`
}

// KeepAlive returns the MQTT keep-alive interval.
func (a AWSConfig) KeepAlive() time.Duration {
	return time.Duration(a.KeepAliveS) * time.Second
}

// ---- HARDWARE ----

type GPIOConfig struct {
	Chip      string `yaml:"chip"`
	DHTPin    int    `yaml:"dht_pin"`
	SoilPin   int    `yaml:"soil_pin"`
	FanPin    int    `yaml:"fan_pin"`
	PumpPin   int    `yaml:"pump_pin"`
	ActiveLow *bool  `yaml:"active_low"`
}

// Pins returns the BCM line offsets.
func (g GPIOConfig) Pins() gpio.Pins {
	return gpio.Pins{DHT: g.DHTPin, Soil: g.SoilPin, Fan: g.FanPin, Pump: g.PumpPin}
}

// RelaysActiveLow reports the relay polarity. Relay boards default to active-low.
func (g GPIOConfig) RelaysActiveLow() bool {
	return g.ActiveLow == nil || *g.ActiveLow
}

// I2CConfig addresses the devices on /dev/i2c-1.
type I2CConfig struct {
	Disabled     bool `yaml:"disabled"`
	BMPAddr      int  `yaml:"bmp_addr"`
	ADCAddr      int  `yaml:"adc_addr"`
	LCDAddr      int  `yaml:"lcd_addr"`
	PhotoChannel int  `yaml:"photo_channel"`
}

// ---- CONTROL ----

type SoilConfig struct {
	Mode          string  `yaml:"mode"`
	AnalogChannel int     `yaml:"analog_channel"`
	OnThreshold   float64 `yaml:"on_threshold"`
	OffThreshold  float64 `yaml:"off_threshold"`
}

// Policy returns the pump policy. The mode must already be valid.
func (s SoilConfig) Policy() logic.PumpPolicy {
	return logic.PumpPolicy{
		Mode:     logic.SoilMode(s.Mode),
		OnBelow:  s.OnThreshold,
		OffAbove: s.OffThreshold,
	}
}

type ControlConfig struct {
	FanOnC         float64       `yaml:"fan_on_c"`
	Period         time.Duration `yaml:"period"`
	PublishEvery   int           `yaml:"publish_every"`
	ReconnectEvery int           `yaml:"reconnect_every"`
}

// ---- OUTPUTS ----

type StoreConfig struct {
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	// Addr is the status server address; empty disables it.
	Addr string `yaml:"addr"`
}

// InfluxConfig enables the metrics sink when Addr is set.
type InfluxConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Default returns a configuration with every optional value filled in. The
// transport identity has no default.
func Default() Config {
	return Config{
		AWS: AWSConfig{
			Port:       mqtt.DefaultPort,
			KeepAliveS: 30,
		},
		GPIO: GPIOConfig{
			Chip:    gpio.DefaultChip,
			DHTPin:  gpio.DefaultPinDHT,
			SoilPin: gpio.DefaultPinSoil,
			FanPin:  gpio.DefaultPinFan,
			PumpPin: gpio.DefaultPinPump,
		},
		I2C: I2CConfig{
			BMPAddr:      sensor.DefaultBMPAddr,
			ADCAddr:      sensor.DefaultADCAddr,
			LCDAddr:      lcd.DefaultAddr,
			PhotoChannel: 0,
		},
		Soil: SoilConfig{
			Mode:          string(logic.SoilDigital),
			AnalogChannel: 1,
			OnThreshold:   80,
			OffThreshold:  120,
		},
		Control: ControlConfig{
			FanOnC:         logic.DefaultFanOnC,
			Period:         time.Second,
			PublishEvery:   10,
			ReconnectEvery: 30,
		},
		Store: StoreConfig{Path: store.DefaultPath},
		HTTP:  HTTPConfig{Addr: ":80"},
		Influx: InfluxConfig{
			Database: "plants",
		},
	}
}

// Load reads the file at path over the defaults. Keys the file omits keep
// their default; unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML from r over the defaults. An empty document yields the
// defaults unchanged.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

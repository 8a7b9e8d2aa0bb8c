// Command plant-monitor runs the greenhouse control loop: it samples the
// sensors once per period, drives the fan and pump relays, publishes to AWS
// IoT over MQTT and records every cycle in SQLite.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/reef-pi/rpi/i2c"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/plant-monitor/internal/config"
	"github.com/sweeney/plant-monitor/internal/controller"
	"github.com/sweeney/plant-monitor/internal/dht"
	"github.com/sweeney/plant-monitor/internal/gpio"
	"github.com/sweeney/plant-monitor/internal/lcd"
	"github.com/sweeney/plant-monitor/internal/logic"
	"github.com/sweeney/plant-monitor/internal/metrics"
	"github.com/sweeney/plant-monitor/internal/mqtt"
	"github.com/sweeney/plant-monitor/internal/sensor"
	"github.com/sweeney/plant-monitor/internal/status"
	"github.com/sweeney/plant-monitor/internal/store"
	"github.com/sweeney/plant-monitor/internal/web"
)

// options are the command-line overrides. Zero values keep the file's setting.
type options struct {
	configPath string
	httpAddr   string
	dbPath     string
	period     time.Duration
	verbose    bool
	printState bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", config.DefaultPath, "Path to the YAML configuration file")
	flag.StringVar(&o.httpAddr, "http", "", `HTTP status address (overrides config, "off" disables)`)
	flag.StringVar(&o.dbPath, "db", "", "SQLite database path (overrides config)")
	flag.DurationVar(&o.period, "period", 0, "Control cycle period (overrides config)")
	flag.BoolVar(&o.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&o.printState, "print-state", false, "Sample all sensors once, print, and exit")

	flag.Parse()

	if o.verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	runID := uuid.NewString()

	// Resources the loop cannot run without.
	board, err := gpio.Open(cfg.GPIO.Chip, cfg.GPIO.Pins(), cfg.GPIO.RelaysActiveLow())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}

	session := controller.Session{
		DHT:    dht.NewSensor(board.DHTLine(), dht.DefaultSamplerConfig()),
		Soil:   board,
		Relays: board,
	}
	bus := openI2C(cfg, &session)
	if bus != nil {
		defer bus.Close()
	}

	if o.printState {
		defer board.Close()
		c := controller.New(session, controlConfig(cfg))
		fmt.Println(formatState(c.Sample(context.Background())))
		return nil
	}

	db, err := store.Open(cfg.Store.Path, runID)
	if err != nil {
		board.Close()
		return fmt.Errorf("open store: %w", err)
	}
	session.Store = db

	session.Reporter = mqtt.NewRealReporter(mqtt.Config{
		Endpoint:  cfg.AWS.Endpoint,
		Port:      cfg.AWS.Port,
		CertPath:  cfg.AWS.Cert,
		KeyPath:   cfg.AWS.Key,
		CAPath:    cfg.AWS.CA,
		ClientID:  cfg.AWS.ClientID,
		Topic:     cfg.AWS.Topic,
		KeepAlive: cfg.AWS.KeepAlive(),
		RunID:     runID,
	})

	if cfg.Influx.Addr != "" {
		sink, err := metrics.New(metrics.Config{
			Addr:     cfg.Influx.Addr,
			Database: cfg.Influx.Database,
			Username: cfg.Influx.User,
			Password: cfg.Influx.Password,
			Tags:     map[string]string{"client_id": cfg.AWS.ClientID},
		})
		if err != nil {
			log.WithError(err).Warn("InfluxDB disabled")
		} else {
			session.Metrics = sink
		}
	}

	tracker := status.NewTracker(time.Now(), statusConfig(cfg, runID))
	session.Tracker = tracker

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, db)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("HTTP server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("HTTP status server listening on %s", cfg.HTTP.Addr)
	}

	log.WithFields(log.Fields{
		"run_id":   runID,
		"endpoint": cfg.AWS.Endpoint,
		"topic":    cfg.AWS.Topic,
		"soil":     cfg.Soil.Mode,
		"period":   cfg.Control.Period,
	}).Info("Started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Control.Period)
	defer ticker.Stop()

	// Run releases the board, display, reporter, store and sink on return.
	return controller.New(session, controlConfig(cfg)).Run(ctx, ticker.C)
}

// loadConfig reads the file, applies flag overrides, then validates.
func loadConfig(o options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg, o)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func applyOverrides(cfg *config.Config, o options) {
	switch o.httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = o.httpAddr
	}
	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	if o.period > 0 {
		cfg.Control.Period = o.period
	}
}

// openI2C attaches the I2C devices to the session. The bus is optional: without
// it the barometer, light and display are simply absent.
func openI2C(cfg *config.Config, s *controller.Session) i2c.Bus {
	if cfg.I2C.Disabled {
		return nil
	}
	bus, err := i2c.New()
	if err != nil {
		log.WithError(err).Warn("I2C bus unavailable, running without barometer, light sensor and display")
		return nil
	}

	s.Barometer = sensor.NewBMP085(bus, byte(cfg.I2C.BMPAddr))
	s.ADC = sensor.NewPCF8591(bus, byte(cfg.I2C.ADCAddr))

	display := lcd.New(bus, byte(cfg.I2C.LCDAddr))
	if err := display.Init(); err != nil {
		log.WithError(err).Warn("Display unavailable")
	} else {
		s.Display = display
	}
	return bus
}

func controlConfig(cfg *config.Config) controller.Config {
	return controller.Config{
		FanOnC:         cfg.Control.FanOnC,
		Pump:           cfg.Soil.Policy(),
		LightChannel:   cfg.I2C.PhotoChannel,
		SoilChannel:    cfg.Soil.AnalogChannel,
		PublishEvery:   cfg.Control.PublishEvery,
		ReconnectEvery: cfg.Control.ReconnectEvery,
	}
}

func statusConfig(cfg *config.Config, runID string) status.Config {
	return status.Config{
		Broker:         cfg.AWS.Endpoint,
		Topic:          cfg.AWS.Topic,
		ClientID:       cfg.AWS.ClientID,
		HTTPAddr:       cfg.HTTP.Addr,
		RunID:          runID,
		SoilMode:       cfg.Soil.Mode,
		Period:         cfg.Control.Period,
		PublishEvery:   cfg.Control.PublishEvery,
		ReconnectEvery: cfg.Control.ReconnectEvery,
		FanOnC:         cfg.Control.FanOnC,
	}
}

// formatState renders one reading for -print-state.
func formatState(r logic.Reading) string {
	soil := "UNKNOWN"
	if r.SoilValid {
		soil = "WET"
		if r.SoilDry {
			soil = "DRY"
		}
	}
	return fmt.Sprintf("Temp: %s, Humidity: %s, Soil: %s, Light: %s, Pressure: %s, BMP Temp: %s",
		measure(r.Temperature, "%.0f°C"),
		measure(r.Humidity, "%.0f%%"),
		soil,
		measure(r.Light, "%.0f"),
		measure(r.Pressure, "%.2fhPa"),
		measure(r.BMPTemperature, "%.1f°C"),
	)
}

func measure(m logic.Measure, format string) string {
	if !m.Valid {
		return "--"
	}
	return fmt.Sprintf(format, m.Value)
}

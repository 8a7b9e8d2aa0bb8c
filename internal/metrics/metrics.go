// Package metrics writes one InfluxDB point per control cycle.
package metrics

import (
	"fmt"
	"time"

	"github.com/influxdata/influxdb1-client/v2"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/plant-monitor/internal/logic"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{"package": "metrics"})

// DefaultMeasurement is the measurement name used when none is configured.
const DefaultMeasurement = "plant"

// DefaultTimeout bounds one write, well under the cycle period.
const DefaultTimeout = 300 * time.Millisecond

// Config locates the InfluxDB server.
type Config struct {
	Addr        string
	Database    string
	Username    string
	Password    string
	Measurement string

	// Timeout bounds each write; zero means DefaultTimeout.
	Timeout time.Duration

	// Tags are attached to every point.
	Tags map[string]string
}

// Sink writes cycle records to InfluxDB.
type Sink struct {
	client      client.Client
	database    string
	measurement string
	tags        map[string]string
}

// New creates a Sink. No request is made until the first Write.
func New(cfg Config) (*Sink, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("influx client: %w", err)
	}
	m := cfg.Measurement
	if m == "" {
		m = DefaultMeasurement
	}
	log.WithFields(logrus.Fields{"addr": cfg.Addr, "database": cfg.Database}).Debug("Influx sink configured")
	return &Sink{client: c, database: cfg.Database, measurement: m, tags: cfg.Tags}, nil
}

// Fields returns the point fields for a cycle. Unknown readings are left
// out rather than written as -1.
func Fields(rec logic.CycleRecord) map[string]interface{} {
	r := rec.Reading
	f := map[string]interface{}{
		"cycle":      rec.Cycle,
		"fan_on":     rec.Actuators.FanOn,
		"pump_on":    rec.Actuators.PumpOn,
		"aws_status": rec.Publish.Code(),
	}
	for name, m := range map[string]logic.Measure{
		"dht_temp":     r.Temperature,
		"dht_humidity": r.Humidity,
		"bmp_temp":     r.BMPTemperature,
		"bmp_pressure": r.Pressure,
		"bmp_altitude": r.Altitude,
		"soil_level":   r.SoilLevel,
	} {
		if m.Valid {
			f[name] = m.Value
		}
	}
	if r.Light.Valid {
		f["photoresistor"] = int(r.Light.Value)
	}
	if r.SoilValid {
		f["soil_dry"] = r.SoilDry
	}
	return f
}

// Write sends one point for rec.
func (s *Sink) Write(rec logic.CycleRecord) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: "s",
	})
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	pt, err := client.NewPoint(s.measurement, s.tags, Fields(rec), rec.Time)
	if err != nil {
		return fmt.Errorf("point: %w", err)
	}
	bp.AddPoint(pt)
	if err := s.client.Write(bp); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

// Close releases the HTTP client.
func (s *Sink) Close() error {
	return s.client.Close()
}

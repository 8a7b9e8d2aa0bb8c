package controller

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/plant-monitor/internal/logic"
)

// Sample reads every sensor once without actuating, publishing, or recording.
func (c *Controller) Sample(ctx context.Context) logic.Reading {
	return c.sample(ctx, c.now())
}

// sample reads every sensor once. A failed read leaves its values unknown.
func (c *Controller) sample(ctx context.Context, t time.Time) logic.Reading {
	r := logic.NewReading(t)

	if frame, err := c.s.DHT.Read(ctx); err != nil {
		c.sensorFailed("dht11", err)
	} else {
		r.Temperature = logic.Known(float64(frame.Temperature()))
		r.Humidity = logic.Known(float64(frame.Humidity()))
	}

	if c.s.Barometer != nil {
		if b, err := c.s.Barometer.Read(); err != nil {
			c.sensorFailed("bmp085", err)
		} else {
			r.BMPTemperature = logic.Known(b.TempC)
			r.Pressure = logic.Known(b.HPa())
			r.Altitude = logic.Known(b.Altitude())
		}
	}

	if c.s.ADC != nil {
		if v, err := c.s.ADC.ReadChannel(c.cfg.LightChannel); err != nil {
			c.sensorFailed("photoresistor", err)
		} else {
			r.Light = logic.Known(float64(v))
		}
	}

	switch c.cfg.Pump.Mode {
	case logic.SoilAnalog:
		if c.s.ADC == nil {
			break
		}
		if v, err := c.s.ADC.ReadChannel(c.cfg.SoilChannel); err != nil {
			c.sensorFailed("soil", err)
		} else {
			r.SoilLevel = logic.Known(float64(v))
			r.SoilDry = c.cfg.Pump.SoilDryFromLevel(float64(v))
			r.SoilValid = true
		}
	default:
		if dry, err := c.s.Soil.ReadSoil(); err != nil {
			c.sensorFailed("soil", err)
		} else {
			r.SoilDry = dry
			r.SoilValid = true
		}
	}

	return r
}

func logCycle(rec logic.CycleRecord) {
	r := rec.Reading
	log.WithFields(logrus.Fields{
		"cycle":    rec.Cycle,
		"temp":     r.DisplayTemperature().OrUnknown(),
		"humidity": r.Humidity.OrUnknown(),
		"soil":     rec.SoilMoisture(),
		"pump":     rec.PumpStatus(),
		"fan":      rec.FanStatus,
		"aws":      rec.Publish.Code(),
		"db":       rec.Persist.Code(),
		"bmp_temp": r.BMPTemperature.OrUnknown(),
		"pressure": r.Pressure.OrUnknown(),
		"photo":    r.Light.OrUnknown(),
	}).Info("Cycle")
}

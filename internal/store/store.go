// Package store persists one row per control cycle in SQLite.
package store

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/sweeney/plant-monitor/internal/logic"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{"package": "store"})

// TimeLayout is the persisted timestamp format (UTC).
const TimeLayout = "2006-01-02 15:04:05"

// DefaultPath is the database file used when none is configured.
const DefaultPath = "plant_data.db"

const schema = `
CREATE TABLE IF NOT EXISTS sensor_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	dht_temp REAL,
	dht_humidity REAL,
	bmp_temp REAL,
	bmp_pressure REAL,
	bmp_altitude REAL,
	photoresistor INTEGER,
	soil_moisture INTEGER,
	fan_status TEXT,
	pump_status TEXT,
	aws_status TEXT
);
CREATE INDEX IF NOT EXISTS idx_sensor_data_timestamp ON sensor_data(timestamp);
`

const insertRow = `
INSERT INTO sensor_data (
	run_id, timestamp, dht_temp, dht_humidity, bmp_temp, bmp_pressure, bmp_altitude,
	photoresistor, soil_moisture, fan_status, pump_status, aws_status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectRecent = `
SELECT id, run_id, timestamp, dht_temp, dht_humidity, bmp_temp, bmp_pressure, bmp_altitude,
       photoresistor, soil_moisture, fan_status, pump_status, aws_status
FROM sensor_data
ORDER BY id DESC
LIMIT ?`

// PersistError is a failed write of one cycle's row.
type PersistError struct {
	Cycle int
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist cycle %d: %v", e.Cycle, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Row is one persisted cycle. Unknown numeric values hold -1.
type Row struct {
	ID            int64   `json:"id"`
	RunID         string  `json:"run_id"`
	Timestamp     string  `json:"timestamp"`
	DHTTemp       float64 `json:"dht_temp"`
	DHTHumidity   float64 `json:"dht_humidity"`
	BMPTemp       float64 `json:"bmp_temp"`
	BMPPressure   float64 `json:"bmp_pressure"`
	BMPAltitude   float64 `json:"bmp_altitude"`
	Photoresistor int     `json:"photoresistor"`
	SoilMoisture  int     `json:"soil_moisture"`
	FanStatus     string  `json:"fan_status"`
	PumpStatus    string  `json:"pump_status"`
	AWSStatus     string  `json:"aws_status"`
}

// NewRow flattens a cycle record into its persisted form.
func NewRow(rec logic.CycleRecord, runID string) Row {
	r := rec.Reading
	return Row{
		RunID:         runID,
		Timestamp:     rec.Time.UTC().Format(TimeLayout),
		DHTTemp:       r.Temperature.OrUnknown(),
		DHTHumidity:   r.Humidity.OrUnknown(),
		BMPTemp:       r.BMPTemperature.OrUnknown(),
		BMPPressure:   r.Pressure.OrUnknown(),
		BMPAltitude:   r.Altitude.OrUnknown(),
		Photoresistor: int(r.Light.OrUnknown()),
		SoilMoisture:  rec.SoilMoisture(),
		FanStatus:     string(rec.FanRecordStatus()),
		PumpStatus:    string(rec.PumpStatus()),
		AWSStatus:     rec.Publish.Code(),
	}
}

// Store is an append-only table of cycle rows.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
	runID  string
}

// Open opens (or creates) the database at path and ensures the schema exists.
// Every row appended through the returned Store carries runID.
func Open(path, runID string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	insert, err := db.Prepare(insertRow)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}

	log.WithFields(logrus.Fields{"path": path, "run_id": runID}).Debug("Database opened")
	return &Store{db: db, insert: insert, runID: runID}, nil
}

// Append writes one row for rec. Each call commits on its own.
func (s *Store) Append(rec logic.CycleRecord) error {
	row := NewRow(rec, s.runID)
	_, err := s.insert.Exec(
		row.RunID, row.Timestamp, row.DHTTemp, row.DHTHumidity, row.BMPTemp, row.BMPPressure, row.BMPAltitude,
		row.Photoresistor, row.SoilMoisture, row.FanStatus, row.PumpStatus, row.AWSStatus,
	)
	if err != nil {
		return &PersistError{Cycle: rec.Cycle, Err: err}
	}
	return nil
}

// Recent returns up to n rows, newest first.
func (s *Store) Recent(n int) ([]Row, error) {
	rows, err := s.db.Query(selectRecent, n)
	if err != nil {
		return nil, fmt.Errorf("query recent rows: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.DHTTemp, &r.DHTHumidity, &r.BMPTemp, &r.BMPPressure, &r.BMPAltitude,
			&r.Photoresistor, &r.SoilMoisture, &r.FanStatus, &r.PumpStatus, &r.AWSStatus,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Count returns the number of rows written by any run.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sensor_data").Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.insert.Close(); err != nil {
		log.WithError(err).Warn("Failed to close insert statement")
	}
	return s.db.Close()
}

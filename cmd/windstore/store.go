// Command windstore is a reference persistence adapter: the core
// engine owns no storage of its own (spec.md §6), so this is a
// caller-side example of durably recording wind observations and
// strategy points in SQLite.
package main

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/windtrace/windtrace/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite connection holding wind observations and
// strategy points for one or more sessions.
type Store struct {
	*sql.DB
}

// Open connects to (creating if necessary) the SQLite database at
// path and brings its schema up to the latest migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection avoids handing out a fresh, empty :memory:
	// database per pooled connection, and matches SQLite's
	// single-writer concurrency model under WAL.
	db.SetMaxOpenConns(1)
	if err := applyPragmas(db); err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db}
	if err := s.migrateUp(); err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}
	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrateUp() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// InsertWindObservation persists a single fused wind observation.
func (s *Store) InsertWindObservation(boatID string, o model.WindObservation) error {
	_, err := s.Exec(
		`INSERT INTO wind_observation (boat_id, taken_unix, lat, lon, direction_deg, speed_kts, confidence, source_method)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		boatID, o.Timestamp.Unix(), o.Lat, o.Lon, o.Direction, o.Speed, o.Confidence, string(o.SourceMethod),
	)
	return err
}

// ListWindObservations returns the most recent observations for a
// boat, newest first.
func (s *Store) ListWindObservations(boatID string, limit int) ([]model.WindObservation, error) {
	rows, err := s.Query(
		`SELECT taken_unix, lat, lon, direction_deg, speed_kts, confidence, source_method
		 FROM wind_observation WHERE boat_id = ? ORDER BY taken_unix DESC LIMIT ?`,
		boatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WindObservation
	for rows.Next() {
		var takenUnix int64
		var o model.WindObservation
		var source string
		if err := rows.Scan(&takenUnix, &o.Lat, &o.Lon, &o.Direction, &o.Speed, &o.Confidence, &source); err != nil {
			return nil, err
		}
		o.Timestamp = unixToTime(takenUnix)
		o.SourceMethod = model.SourceMethod(source)
		out = append(out, o)
	}
	return out, rows.Err()
}

// InsertStrategyPoint persists a single detected strategy event.
func (s *Store) InsertStrategyPoint(p model.StrategyPoint) error {
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.Exec(
		`INSERT INTO strategy_point (id, boat_id, taken_unix, lat, lon, kind, metadata_json, importance, evaluation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.BoatID, p.Timestamp.Unix(), p.Lat, p.Lon, string(p.Kind), string(metadataJSON), p.Importance, p.Evaluation,
	)
	return err
}

// ListStrategyPoints returns every strategy point recorded for a boat,
// ordered by timestamp.
func (s *Store) ListStrategyPoints(boatID string) ([]model.StrategyPoint, error) {
	rows, err := s.Query(
		`SELECT id, taken_unix, lat, lon, kind, metadata_json, importance, evaluation
		 FROM strategy_point WHERE boat_id = ? ORDER BY taken_unix ASC`,
		boatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StrategyPoint
	for rows.Next() {
		var p model.StrategyPoint
		var takenUnix int64
		var kind, metadataJSON string
		if err := rows.Scan(&p.ID, &takenUnix, &p.Lat, &p.Lon, &kind, &metadataJSON, &p.Importance, &p.Evaluation); err != nil {
			return nil, err
		}
		p.BoatID = boatID
		p.Timestamp = unixToTime(takenUnix)
		p.Kind = model.StrategyKind(kind)
		if err := json.Unmarshal([]byte(metadataJSON), &p.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Package persistence provides SQLite-based storage of completed runs, so
// epidemic curves can be compared across strategies after the fact.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/outbreak/internal/collect"
	"github.com/talgya/outbreak/internal/sim"
)

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		final_tick INTEGER NOT NULL,
		peak_infected INTEGER NOT NULL,
		peak_tick INTEGER NOT NULL,
		final_recovered INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS series (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		susceptible INTEGER NOT NULL,
		infected INTEGER NOT NULL,
		recovered INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_series_run ON series(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunMeta summarizes one stored run.
type RunMeta struct {
	ID             string `db:"id" json:"id"`
	CreatedAt      string `db:"created_at" json:"created_at"`
	Seed           uint64 `db:"seed" json:"seed"`
	ConfigJSON     string `db:"config_json" json:"config_json"`
	FinalTick      int    `db:"final_tick" json:"final_tick"`
	PeakInfected   int    `db:"peak_infected" json:"peak_infected"`
	PeakTick       int    `db:"peak_tick" json:"peak_tick"`
	FinalRecovered int    `db:"final_recovered" json:"final_recovered"`
}

// SaveRun stores a completed run and its per-tick series in one transaction.
// Returns the generated run ID.
func (db *DB) SaveRun(cfg sim.Config, series []collect.Sample) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("save run: empty series")
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	final := series[len(series)-1]
	peak := series[0]
	for _, s := range series[1:] {
		if s.Counts.Infected > peak.Counts.Infected {
			peak = s
		}
	}

	runID := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, created_at, seed, config_json, final_tick, peak_infected, peak_tick, final_recovered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), cfg.Seed, string(cfgJSON),
		final.Tick, peak.Counts.Infected, peak.Tick, final.Counts.Recovered,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO series
		(run_id, tick, susceptible, infected, recovered)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, s := range series {
		if _, err := stmt.Exec(runID, s.Tick, s.Counts.Susceptible, s.Counts.Infected, s.Counts.Recovered); err != nil {
			return "", fmt.Errorf("insert tick %d: %w", s.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	slog.Info("run saved", "run_id", runID, "ticks", final.Tick, "peak_infected", peak.Counts.Infected)
	return runID, nil
}

type seriesRow struct {
	Tick        int `db:"tick"`
	Susceptible int `db:"susceptible"`
	Infected    int `db:"infected"`
	Recovered   int `db:"recovered"`
}

// LoadSeries returns the per-tick compartment totals of a stored run.
func (db *DB) LoadSeries(runID string) ([]collect.Sample, error) {
	var rows []seriesRow
	err := db.conn.Select(&rows,
		"SELECT tick, susceptible, infected, recovered FROM series WHERE run_id = ? ORDER BY tick",
		runID,
	)
	if err != nil {
		return nil, err
	}

	samples := make([]collect.Sample, len(rows))
	for i, r := range rows {
		samples[i] = collect.Sample{
			Tick: r.Tick,
			Counts: sim.Counts{
				Susceptible: r.Susceptible,
				Infected:    r.Infected,
				Recovered:   r.Recovered,
			},
		}
	}
	return samples, nil
}

// RecentRuns returns the most recently stored runs.
func (db *DB) RecentRuns(limit int) ([]RunMeta, error) {
	var runs []RunMeta
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	return runs, err
}

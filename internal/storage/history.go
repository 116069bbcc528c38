// Package storage persists a summary row per diagnostic run so that draw
// and severity can be compared across days. Opt-in: nothing here runs
// unless a history database path is configured.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	severity TEXT NOT NULL,
	capacity_pct INTEGER,
	power_watts REAL,
	cpu_percent REAL,
	finding_count INTEGER NOT NULL,
	detail_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp);
`

// Run is one persisted diagnosis summary. The nullable columns are metrics
// that may have been unavailable at run time.
type Run struct {
	ID           int64
	Timestamp    int64 // unix epoch seconds
	Severity     string
	CapacityPct  sql.NullInt64
	PowerWatts   sql.NullFloat64
	CPUPercent   sql.NullFloat64
	FindingCount int
	DetailJSON   string
}

// DB wraps the SQLite run-history database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// InsertRun inserts one run summary and returns its row id.
func (d *DB) InsertRun(r Run) (int64, error) {
	res, err := d.db.Exec(
		"INSERT INTO runs (timestamp, severity, capacity_pct, power_watts, cpu_percent, finding_count, detail_json) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.Timestamp, r.Severity, r.CapacityPct, r.PowerWatts, r.CPUPercent, r.FindingCount, r.DetailJSON,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentRuns returns up to limit run summaries, newest first.
func (d *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.Query(
		"SELECT id, timestamp, severity, capacity_pct, power_watts, cpu_percent, finding_count, detail_json FROM runs ORDER BY timestamp DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Severity, &r.CapacityPct, &r.PowerWatts, &r.CPUPercent, &r.FindingCount, &r.DetailJSON); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

package stats

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DBFileName is the session history database inside the data directory
const DBFileName = "stats.db"

// Store manages persistence of session history using SQLite
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the history database in dir
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		planned_seconds INTEGER NOT NULL DEFAULT 0,
		added_seconds REAL NOT NULL DEFAULT 0,
		completed BOOLEAN NOT NULL DEFAULT 0,
		charge_used BOOLEAN NOT NULL DEFAULT 0,
		paused_duration_seconds INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.addColumnIfMissing("paused_duration_seconds", "INTEGER NOT NULL DEFAULT 0")
}

// addColumnIfMissing upgrades databases created before a column existed
func (s *Store) addColumnIfMissing(column, definition string) error {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('sessions')`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE sessions ADD COLUMN %s %s", column, definition))
	return err
}

// RecordSession stores a finished session. A missing ID is generated.
func (s *Store) RecordSession(rec SessionRecord) error {
	if strings.TrimSpace(rec.Kind) == "" {
		return errors.New("session kind is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, kind, started_at, ended_at, planned_seconds, added_seconds, completed, charge_used, paused_duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Kind,
		rec.StartedAt.UnixMilli(),
		rec.EndedAt.UnixMilli(),
		rec.PlannedSeconds,
		rec.AddedSeconds,
		rec.Completed,
		rec.ChargeUsed,
		max(0, rec.PausedSeconds),
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first
func (s *Store) Recent(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, kind, started_at, ended_at, planned_seconds, added_seconds, completed, charge_used, paused_duration_seconds
		 FROM sessions
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// SessionsOn returns every session that started on the given local day
func (s *Store) SessionsOn(date time.Time) ([]SessionRecord, error) {
	startOfDay, endOfDay := dayBounds(date)

	rows, err := s.db.Query(
		`SELECT id, kind, started_at, ended_at, planned_seconds, added_seconds, completed, charge_used, paused_duration_seconds
		 FROM sessions
		 WHERE started_at >= ? AND started_at < ?
		 ORDER BY started_at ASC`,
		startOfDay.UnixMilli(),
		endOfDay.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// DailySummary aggregates the sessions of one day
func (s *Store) DailySummary(date time.Time) (*DailySummary, error) {
	sessions, err := s.SessionsOn(date)
	if err != nil {
		return nil, err
	}

	startOfDay, _ := dayBounds(date)
	summary := &DailySummary{Date: startOfDay}
	for _, rec := range sessions {
		switch {
		case !rec.Completed:
			summary.SessionsStopped++
		case rec.Kind == "work":
			summary.WorkSessionsCompleted++
		case rec.Kind == "break":
			summary.BreakSessionsCompleted++
		}
		if rec.Kind == "work" {
			summary.WorkMinutes += rec.ActiveDuration().Minutes()
		}
		if rec.ChargeUsed {
			summary.ChargesUsed++
		}
	}
	summary.CompletionRate = CalculateCompletionRate(
		summary.WorkSessionsCompleted+summary.BreakSessionsCompleted,
		len(sessions),
	)
	return summary, nil
}

func scanSessions(rows *sql.Rows) ([]SessionRecord, error) {
	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started, ended int64
		err := rows.Scan(&rec.ID, &rec.Kind, &started, &ended, &rec.PlannedSeconds,
			&rec.AddedSeconds, &rec.Completed, &rec.ChargeUsed, &rec.PausedSeconds)
		if err != nil {
			return nil, err
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.EndedAt = time.UnixMilli(ended)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

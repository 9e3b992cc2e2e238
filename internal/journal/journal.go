// Package journal keeps a sqlite record of every upstream fetch attempt.
// It is operational diagnostics only; fetched observation data is never
// persisted.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"wxhist-server/internal/config"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS fetch_attempts (
	id            TEXT PRIMARY KEY,
	endpoint      TEXT NOT NULL,
	station_code  TEXT NOT NULL DEFAULT '',
	outcome       TEXT NOT NULL,
	rows_received INTEGER NOT NULL DEFAULT 0,
	duration_ms   INTEGER NOT NULL,
	detail        TEXT NOT NULL DEFAULT '',
	started_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_attempts_started_at ON fetch_attempts (started_at);
`

const insertAttemptSQL = `
INSERT INTO fetch_attempts (id, endpoint, station_code, outcome, rows_received, duration_ms, detail, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`

// Outcome values for an attempt.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Attempt describes one upstream call.
type Attempt struct {
	Endpoint     string
	StationCode  string
	Outcome      string
	RowsReceived int
	Duration     time.Duration
	Detail       string
	StartedAt    time.Time
}

type Journal struct {
	db *sql.DB
}

// Open opens (and migrates) the journal database. Pooling stays low
// because sqlite handles concurrency poorly; WAL covers concurrent reads.
func Open(cfg config.Config) (*Journal, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogLevel == slog.LevelDebug {
		db = sql.OpenDB(newTraceConnector(dsn, slog.Default()))
	} else {
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("journal open: %w", err)
		}
	}

	if cfg.JournalMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.JournalMaxOpenConns)
	}
	if cfg.JournalMaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.JournalMaxIdleConns)
	}
	if cfg.JournalConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.JournalConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal ping: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal migrate: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Ping reports database connectivity; used by the liveness endpoint.
func (j *Journal) Ping(ctx context.Context) error {
	if j == nil || j.db == nil {
		return nil
	}
	var ok int
	if err := j.db.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	return nil
}

// Record writes one attempt row. Journal failures must never disturb the
// fetch pipeline, so they are logged and swallowed. A nil journal is a
// no-op (journaling disabled).
func (j *Journal) Record(ctx context.Context, a Attempt) {
	if j == nil || j.db == nil {
		return
	}

	startedAt := a.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, insertAttemptSQL,
		uuid.NewString(),
		a.Endpoint,
		a.StationCode,
		a.Outcome,
		a.RowsReceived,
		a.Duration.Milliseconds(),
		a.Detail,
		startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		slog.Error("journal record", "endpoint", a.Endpoint, "error", err)
	}
}

// AttemptCount returns the number of recorded attempts; diagnostics only.
func (j *Journal) AttemptCount(ctx context.Context) (int, error) {
	if j == nil || j.db == nil {
		return 0, nil
	}
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fetch_attempts`).Scan(&n)
	return n, err
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.JournalDSN != "" {
		return cfg.JournalDSN, nil
	}

	path := cfg.JournalPath
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// foreign_keys for constraint enforcement, busy_timeout against
	// "database is locked", WAL for concurrent reads.
	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	// A caller-supplied "file:..." path is not double-wrapped.
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

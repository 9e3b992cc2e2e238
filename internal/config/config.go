package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	// UpstreamBaseURL is the base URL of the third-party weather API.
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// RateCapacity upstream call starts are admitted per RateWindow.
	RateCapacity int
	RateWindow   time.Duration

	JournalEnabled         bool
	JournalDSN             string
	JournalPath            string
	JournalMaxOpenConns    int
	JournalMaxIdleConns    int
	JournalConnMaxLifetime time.Duration
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	staticDir := strings.TrimSpace(os.Getenv("STATIC_DIR"))
	if staticDir == "" {
		staticDir = "static"
	}
	staticDir, err = filepath.Abs(staticDir)
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", staticDir, err)
	}

	upstreamBaseURL := strings.TrimSpace(os.Getenv("UPSTREAM_BASE_URL"))
	if upstreamBaseURL == "" {
		upstreamBaseURL = "http://localhost:9000"
	}

	upstreamTimeoutStr := strings.TrimSpace(os.Getenv("UPSTREAM_TIMEOUT"))
	if upstreamTimeoutStr == "" {
		upstreamTimeoutStr = "15s"
	}
	upstreamTimeout, err := time.ParseDuration(upstreamTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", upstreamTimeoutStr, err)
	}
	if upstreamTimeout <= 0 {
		return Config{}, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %q", upstreamTimeoutStr)
	}

	rateCapacityStr := strings.TrimSpace(os.Getenv("RATE_CAPACITY"))
	if rateCapacityStr == "" {
		rateCapacityStr = "20"
	}
	rateCapacity, err := strconv.Atoi(rateCapacityStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid RATE_CAPACITY %q: %w", rateCapacityStr, err)
	}
	if rateCapacity <= 0 {
		return Config{}, fmt.Errorf("RATE_CAPACITY must be positive, got %d", rateCapacity)
	}

	rateWindowStr := strings.TrimSpace(os.Getenv("RATE_WINDOW"))
	if rateWindowStr == "" {
		rateWindowStr = "60s"
	}
	rateWindow, err := time.ParseDuration(rateWindowStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid RATE_WINDOW %q: %w", rateWindowStr, err)
	}
	if rateWindow <= 0 {
		return Config{}, fmt.Errorf("RATE_WINDOW must be positive, got %q", rateWindowStr)
	}

	journalEnabledStr := strings.TrimSpace(os.Getenv("JOURNAL_ENABLED"))
	if journalEnabledStr == "" {
		journalEnabledStr = "true"
	}
	journalEnabled, err := strconv.ParseBool(journalEnabledStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JOURNAL_ENABLED %q: %w", journalEnabledStr, err)
	}

	journalDSN := strings.TrimSpace(os.Getenv("JOURNAL_DSN"))
	journalPath := strings.TrimSpace(os.Getenv("JOURNAL_PATH"))
	if journalPath == "" {
		journalPath = "data/journal.db"
	}

	journalMaxOpenConnsStr := strings.TrimSpace(os.Getenv("JOURNAL_MAX_OPEN_CONNS"))
	if journalMaxOpenConnsStr == "" {
		journalMaxOpenConnsStr = "1"
	}
	journalMaxOpenConns, err := strconv.Atoi(journalMaxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JOURNAL_MAX_OPEN_CONNS %q: %w", journalMaxOpenConnsStr, err)
	}

	journalMaxIdleConnsStr := strings.TrimSpace(os.Getenv("JOURNAL_MAX_IDLE_CONNS"))
	if journalMaxIdleConnsStr == "" {
		journalMaxIdleConnsStr = "1"
	}
	journalMaxIdleConns, err := strconv.Atoi(journalMaxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JOURNAL_MAX_IDLE_CONNS %q: %w", journalMaxIdleConnsStr, err)
	}

	journalConnMaxLifetimeStr := strings.TrimSpace(os.Getenv("JOURNAL_CONN_MAX_LIFETIME"))
	if journalConnMaxLifetimeStr == "" {
		journalConnMaxLifetimeStr = "0s"
	}
	journalConnMaxLifetime, err := time.ParseDuration(journalConnMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JOURNAL_CONN_MAX_LIFETIME %q: %w", journalConnMaxLifetimeStr, err)
	}

	return Config{
		AppEnv:                 appEnv,
		LogLevel:               level,
		HTTPAddr:               httpAddr,
		StaticDir:              staticDir,
		UpstreamBaseURL:        upstreamBaseURL,
		UpstreamTimeout:        upstreamTimeout,
		RateCapacity:           rateCapacity,
		RateWindow:             rateWindow,
		JournalEnabled:         journalEnabled,
		JournalDSN:             journalDSN,
		JournalPath:            journalPath,
		JournalMaxOpenConns:    journalMaxOpenConns,
		JournalMaxIdleConns:    journalMaxIdleConns,
		JournalConnMaxLifetime: journalConnMaxLifetime,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

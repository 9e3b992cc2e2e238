package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"wxhist-server/internal/config"
	"wxhist-server/internal/httpapi"
	"wxhist-server/internal/journal"
	"wxhist-server/internal/modules/history"
	"wxhist-server/internal/modules/stations"
	"wxhist-server/internal/schedule"
	"wxhist-server/internal/upstream"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"upstreamBaseURL", cfg.UpstreamBaseURL,
		"upstreamTimeout", cfg.UpstreamTimeout,
		"rateCapacity", cfg.RateCapacity,
		"rateWindow", cfg.RateWindow,
		"journalEnabled", cfg.JournalEnabled,
		"journalPath", cfg.JournalPath,
	)

	// A broken journal only costs diagnostics, never the service.
	var jrnl *journal.Journal
	if cfg.JournalEnabled {
		var err error
		jrnl, err = journal.Open(cfg)
		if err != nil {
			slog.Warn("journal unavailable (continuing without attempt records)", "error", err)
			jrnl = nil
		}
	}
	defer func() {
		if closeErr := jrnl.Close(); closeErr != nil {
			slog.Error("journal close", "error", closeErr)
		}
	}()

	scheduler := schedule.New(cfg.RateCapacity, cfg.RateWindow)
	scheduler.Start(ctx)

	client := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	catalog := stations.NewCatalog(client, scheduler, jrnl)
	fetcher := history.NewFetcher(client, scheduler, jrnl)

	router := httpapi.NewRouter(cfg, jrnl,
		stations.NewController(catalog),
		history.NewController(catalog, fetcher),
	)
	srv := httpapi.NewServer(cfg, router)

	// Warm the catalog so the first search doesn't pay the upstream
	// round-trip; failure is retried lazily on the next request.
	warmCtx, warmCancel := context.WithTimeout(ctx, cfg.UpstreamTimeout)
	if err := catalog.Load(warmCtx); err != nil {
		slog.Warn("initial station load failed (will retry on demand)", "error", err)
	}
	warmCancel()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/predictwatch/arbscan/internal/domain"
	"github.com/predictwatch/arbscan/internal/server"
	"github.com/predictwatch/arbscan/internal/server/handler"
)

// archiveInterval is how often the archive job sweeps expired rows to S3.
const archiveInterval = 24 * time.Hour

// ServerMode serves the HTTP API only. Scans run when triggered through
// POST /api/arbitrage/scan.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// ScanMode runs scan cycles without the HTTP server. With a positive
// scan_interval it loops until cancelled; otherwise it runs a single cycle
// and exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Scanner.ScanInterval.Duration
	a.logger.InfoContext(ctx, "starting scan mode",
		slog.Duration("interval", interval),
	)

	if interval <= 0 {
		opps, err := deps.Scanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("scan mode: %w", err)
		}
		a.logger.InfoContext(ctx, "scan complete",
			slog.Int("opportunities", len(opps)),
		)
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startScanLoop(ctx, g, deps, interval)
	if a.cfg.Archive.Enabled && deps.Archiver != nil {
		a.startArchiveLoop(ctx, g, deps)
	}
	return g.Wait()
}

// FullMode runs the HTTP server plus the periodic scan and archive loops.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	if interval := a.cfg.Scanner.ScanInterval.Duration; interval > 0 {
		a.startScanLoop(ctx, g, deps, interval)
	} else {
		a.logger.InfoContext(ctx, "scan_interval not set, scans are API-triggered only")
	}

	if a.cfg.Archive.Enabled && deps.Archiver != nil {
		a.startArchiveLoop(ctx, g, deps)
	}

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	return g.Wait()
}

// startScanLoop adds a goroutine that runs a scan cycle immediately and then
// on every tick. A cycle skipped because another scan holds the lock is normal
// when an API-triggered scan is running; failed cycles are logged and retried
// on the next tick rather than tearing the process down.
func (a *App) startScanLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies, interval time.Duration) {
	g.Go(func() error {
		runOnce := func() {
			opps, err := deps.Scanner.Scan(ctx)
			switch {
			case errors.Is(err, domain.ErrScanInFlight):
				a.logger.InfoContext(ctx, "scan loop: cycle skipped, another scan in flight")
			case err != nil:
				a.logger.ErrorContext(ctx, "scan loop: cycle failed",
					slog.String("error", err.Error()),
				)
			default:
				a.logger.InfoContext(ctx, "scan loop: cycle complete",
					slog.Int("opportunities", len(opps)),
				)
			}
		}

		runOnce()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runOnce()
			}
		}
	})
}

// startArchiveLoop adds a goroutine that periodically sweeps expired rows
// older than the retention window out to object storage.
func (a *App) startArchiveLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour

	g.Go(func() error {
		runOnce := func() {
			cutoff := time.Now().UTC().Add(-retention)
			archived, err := deps.Archiver.ArchiveExpired(ctx, cutoff)
			if err != nil {
				a.logger.ErrorContext(ctx, "archive loop: sweep failed",
					slog.String("error", err.Error()),
				)
				return
			}
			if archived > 0 {
				a.logger.InfoContext(ctx, "archive loop: sweep complete",
					slog.Int64("archived", archived),
				)
			}
		}

		runOnce()
		ticker := time.NewTicker(archiveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runOnce()
			}
		}
	})
}

// startHTTPServer adds the API server goroutine to the given errgroup and a
// companion goroutine that shuts it down when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		AdminToken:  a.cfg.Server.AdminToken,
	}, server.Handlers{
		Health: handler.NewHealthHandler(a.logger).
			WithCheck("postgres", deps.PostgresPing).
			WithCheck("redis", deps.RedisPing),
		Arbitrage: handler.NewArbitrageHandler(deps.Scanner, a.logger),
		Markets:   handler.NewMarketHandler([]domain.MarketSource{deps.Polymarket, deps.Kalshi}, a.logger),
	}, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/predictwatch/arbscan/internal/arb"
	s3blob "github.com/predictwatch/arbscan/internal/blob/s3"
	"github.com/predictwatch/arbscan/internal/cache/redis"
	"github.com/predictwatch/arbscan/internal/config"
	"github.com/predictwatch/arbscan/internal/domain"
	"github.com/predictwatch/arbscan/internal/match"
	"github.com/predictwatch/arbscan/internal/platform/kalshi"
	"github.com/predictwatch/arbscan/internal/platform/polymarket"
	"github.com/predictwatch/arbscan/internal/scanner"
	"github.com/predictwatch/arbscan/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Store       domain.OpportunityStore
	MarketCache domain.MarketCache
	LockManager domain.LockManager

	Polymarket domain.MarketSource
	Kalshi     domain.MarketSource

	Scanner *scanner.Scanner

	// Archiver is nil unless the archive job is enabled in config.
	Archiver domain.Archiver

	// Health probes for the API health endpoint.
	PostgresPing func(ctx context.Context) error
	RedisPing    func(ctx context.Context) error
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}
	deps.Store = postgres.NewOpportunityStore(pgClient.Pool())
	deps.PostgresPing = pgClient.Ping

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.MarketCache = redis.NewMarketCache(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.RedisPing = redisClient.Ping

	// --- Market sources ---
	gamma := polymarket.NewGammaClient(cfg.Polymarket.GammaHost)
	deps.Polymarket = polymarket.NewSource(gamma, deps.MarketCache, cfg.Polymarket.CacheTTL.Duration, logger)

	kalshiClient := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		keyBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: read kalshi rsa key: %w", err)
		}
		if err := kalshiClient.SetRSAPrivateKey(keyBytes); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: parse kalshi rsa key: %w", err)
		}
	}
	deps.Kalshi = kalshi.NewSource(kalshiClient, deps.MarketCache, cfg.Kalshi.CacheTTL.Duration, logger)

	// --- Matching and arbitrage math ---
	matcher := match.NewMatcher(match.Config{
		MinScore:      cfg.Matcher.MinScore,
		CategoryBoost: cfg.Matcher.CategoryBoost,
		EndDateBoost:  cfg.Matcher.EndDateBoost,
		EndDateWindow: cfg.Matcher.EndDateWindow.Duration,
		Weights: match.Weights{
			Token:  cfg.Matcher.TokenWeight,
			Bigram: cfg.Matcher.BigramWeight,
			Anchor: cfg.Matcher.AnchorWeight,
		},
	})
	calc := arb.NewCalculator(cfg.Scanner.NoiseFloor, cfg.Scanner.Stake)

	deps.Scanner = scanner.New(
		deps.Polymarket, deps.Kalshi,
		matcher, calc,
		deps.Store, deps.LockManager,
		scanner.Config{
			FetchLimit:      cfg.Scanner.FetchLimit,
			FetchTimeout:    cfg.Scanner.FetchTimeout.Duration,
			LockTTL:         cfg.Scanner.LockTTL.Duration,
			MinGapThreshold: cfg.Scanner.MinGapThreshold,
		},
		logger,
	)

	// --- S3 archive (optional) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.Store, logger)
	}

	return deps, cleanup, nil
}

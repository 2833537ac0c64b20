// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBSCAN_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Scanner    ScannerConfig    `toml:"scanner"`
	Matcher    MatcherConfig    `toml:"matcher"`
	Archive    ArchiveConfig    `toml:"archive"`
	Server     ServerConfig     `toml:"server"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket Gamma API parameters.
type PolymarketConfig struct {
	GammaHost string   `toml:"gamma_host"`
	CacheTTL  duration `toml:"cache_ttl"`
}

// KalshiConfig holds Kalshi exchange API parameters. The key fields are
// optional; public market data does not require a signed session.
type KalshiConfig struct {
	BaseURL           string   `toml:"base_url"`
	ApiKey            string   `toml:"api_key"`
	RsaPrivateKeyPath string   `toml:"rsa_private_key_path"`
	CacheTTL          duration `toml:"cache_ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the archive.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ScannerConfig holds scan cycle parameters.
type ScannerConfig struct {
	FetchLimit      int      `toml:"fetch_limit"`
	FetchTimeout    duration `toml:"fetch_timeout"`
	LockTTL         duration `toml:"lock_ttl"`
	MinGapThreshold float64  `toml:"min_gap_threshold"`
	NoiseFloor      float64  `toml:"noise_floor"`
	Stake           float64  `toml:"stake"`
	// ScanInterval enables periodic scanning when positive. Zero leaves
	// scans manual (API-triggered only).
	ScanInterval duration `toml:"scan_interval"`
}

// MatcherConfig holds the cross-platform matching parameters.
type MatcherConfig struct {
	MinScore      float64  `toml:"min_score"`
	TokenWeight   float64  `toml:"token_weight"`
	BigramWeight  float64  `toml:"bigram_weight"`
	AnchorWeight  float64  `toml:"anchor_weight"`
	CategoryBoost float64  `toml:"category_boost"`
	EndDateBoost  float64  `toml:"end_date_boost"`
	EndDateWindow duration `toml:"end_date_window"`
}

// ArchiveConfig holds parameters for archiving expired opportunities to S3.
type ArchiveConfig struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// AdminToken guards the mutating endpoints (scan trigger, config
	// updates). Empty disables the check.
	AdminToken string `toml:"admin_token"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			CacheTTL:  duration{60 * time.Second},
		},
		Kalshi: KalshiConfig{
			BaseURL:  "https://api.elections.kalshi.com/trade-api/v2",
			CacheTTL: duration{60 * time.Second},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "arbscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbscan-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Scanner: ScannerConfig{
			FetchLimit:      200,
			FetchTimeout:    duration{15 * time.Second},
			LockTTL:         duration{60 * time.Second},
			MinGapThreshold: 0.5,
			NoiseFloor:      2.0,
			Stake:           100.0,
			ScanInterval:    duration{0},
		},
		Matcher: MatcherConfig{
			MinScore:      0.35,
			TokenWeight:   0.5,
			BigramWeight:  0.3,
			AnchorWeight:  0.2,
			CategoryBoost: 0.05,
			EndDateBoost:  0.10,
			EndDateWindow: duration{7 * 24 * time.Hour},
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 90,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"scan":   true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, scan, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Polymarket
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}

	// Kalshi — a key path without a key ID (or vice versa) is a config slip.
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if (c.Kalshi.ApiKey == "") != (c.Kalshi.RsaPrivateKeyPath == "") {
		errs = append(errs, "kalshi: api_key and rsa_private_key_path must be set together")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 — only required when the archive job is on.
	if c.Archive.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
	}

	// Scanner
	if c.Scanner.FetchLimit < 1 {
		errs = append(errs, "scanner: fetch_limit must be >= 1")
	}
	if c.Scanner.FetchTimeout.Duration <= 0 {
		errs = append(errs, "scanner: fetch_timeout must be positive")
	}
	if c.Scanner.MinGapThreshold <= 0 {
		errs = append(errs, "scanner: min_gap_threshold must be > 0")
	}
	if c.Scanner.NoiseFloor <= 0 {
		errs = append(errs, "scanner: noise_floor must be > 0")
	}
	if c.Scanner.Stake <= 0 {
		errs = append(errs, "scanner: stake must be > 0")
	}

	// Matcher
	if c.Matcher.MinScore <= 0 || c.Matcher.MinScore >= 1 {
		errs = append(errs, fmt.Sprintf("matcher: min_score must be in (0, 1), got %v", c.Matcher.MinScore))
	}
	weightSum := c.Matcher.TokenWeight + c.Matcher.BigramWeight + c.Matcher.AnchorWeight
	if weightSum <= 0 {
		errs = append(errs, "matcher: similarity weights must sum to a positive value")
	}
	if c.Matcher.EndDateWindow.Duration <= 0 {
		errs = append(errs, "matcher: end_date_window must be positive")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBSCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "ARBSCAN_POLYMARKET_GAMMA_HOST")
	setDuration(&cfg.Polymarket.CacheTTL, "ARBSCAN_POLYMARKET_CACHE_TTL")

	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "ARBSCAN_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "ARBSCAN_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "ARBSCAN_KALSHI_RSA_PRIVATE_KEY_PATH")
	setDuration(&cfg.Kalshi.CacheTTL, "ARBSCAN_KALSHI_CACHE_TTL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ARBSCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "ARBSCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBSCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBSCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBSCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBSCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBSCAN_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBSCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBSCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBSCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBSCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBSCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBSCAN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "ARBSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBSCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBSCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBSCAN_S3_FORCE_PATH_STYLE")

	// ── Scanner ──
	setInt(&cfg.Scanner.FetchLimit, "ARBSCAN_SCANNER_FETCH_LIMIT")
	setDuration(&cfg.Scanner.FetchTimeout, "ARBSCAN_SCANNER_FETCH_TIMEOUT")
	setDuration(&cfg.Scanner.LockTTL, "ARBSCAN_SCANNER_LOCK_TTL")
	setFloat64(&cfg.Scanner.MinGapThreshold, "ARBSCAN_SCANNER_MIN_GAP_THRESHOLD")
	setFloat64(&cfg.Scanner.NoiseFloor, "ARBSCAN_SCANNER_NOISE_FLOOR")
	setFloat64(&cfg.Scanner.Stake, "ARBSCAN_SCANNER_STAKE")
	setDuration(&cfg.Scanner.ScanInterval, "ARBSCAN_SCANNER_SCAN_INTERVAL")

	// ── Matcher ──
	setFloat64(&cfg.Matcher.MinScore, "ARBSCAN_MATCHER_MIN_SCORE")
	setFloat64(&cfg.Matcher.TokenWeight, "ARBSCAN_MATCHER_TOKEN_WEIGHT")
	setFloat64(&cfg.Matcher.BigramWeight, "ARBSCAN_MATCHER_BIGRAM_WEIGHT")
	setFloat64(&cfg.Matcher.AnchorWeight, "ARBSCAN_MATCHER_ANCHOR_WEIGHT")
	setFloat64(&cfg.Matcher.CategoryBoost, "ARBSCAN_MATCHER_CATEGORY_BOOST")
	setFloat64(&cfg.Matcher.EndDateBoost, "ARBSCAN_MATCHER_END_DATE_BOOST")
	setDuration(&cfg.Matcher.EndDateWindow, "ARBSCAN_MATCHER_END_DATE_WINDOW")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "ARBSCAN_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "ARBSCAN_ARCHIVE_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBSCAN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBSCAN_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBSCAN_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.AdminToken, "ARBSCAN_SERVER_ADMIN_TOKEN")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBSCAN_MODE")
	setStr(&cfg.LogLevel, "ARBSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

package domain

import (
	"context"
	"io"
	"time"
)

// MarketCache caches platform market listings so repeated scans and API
// requests within the TTL window do not hammer the upstream APIs. The cache
// is injected into the platform clients so tests can substitute fixtures.
type MarketCache interface {
	SetMarkets(ctx context.Context, key string, markets []UnifiedMarket, ttl time.Duration) error
	// GetMarkets returns ErrNotFound when the key is absent or expired.
	GetMarkets(ctx context.Context, key string) ([]UnifiedMarket, error)
	Invalidate(ctx context.Context, key string) error
}

// LockManager provides distributed locking. The scanner uses it as a
// single-flight guard so overlapping scan triggers cannot interleave the
// expire/reinsert sequence.
type LockManager interface {
	// Acquire returns ErrLockHeld when another holder owns the key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// BlobWriter uploads a single object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver exports aged-out opportunity rows to blob storage.
type Archiver interface {
	// ArchiveExpired uploads expired opportunities detected before the
	// cutoff and returns how many were written.
	ArchiveExpired(ctx context.Context, before time.Time) (int64, error)
}

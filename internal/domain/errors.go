package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrLockHeld     = errors.New("lock already held")
	ErrScanInFlight = errors.New("scan already in flight")
)

// SourceError wraps a failed or timed-out market-listing call and identifies
// the platform so callers can report which side of the scan broke.
type SourceError struct {
	Platform Platform
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Platform, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

package seriescache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value cache with optional expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflicting update")
)

// Store is a durable key-value capability over one record type. Save is an
// unconditional upsert; Update is the optimistic read-modify-write used when
// concurrent writers must not clobber each other.
type Store[T any] interface {
	Get(ctx context.Context, key string) (*T, error)
	Set(ctx context.Context, key string, val T, expiresIn time.Duration) error
	Save(ctx context.Context, key string, val T) error
	Del(ctx context.Context, key string) error
	// Update applies fn to the current value and persists the result. fn
	// receives nil when no value exists under key. When another writer
	// modifies the key mid-update the whole call fails with ErrConflict
	// and nothing is written.
	Update(ctx context.Context, key string, fn func(cur *T) (T, error)) error
}

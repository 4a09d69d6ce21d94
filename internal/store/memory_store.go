package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"
	"time"

	"github.com/gofiber/storage/memory/v2"
)

type MemoryStore[T any] struct {
	mu      sync.Mutex // serializes Update's read-modify-write
	storage *memory.Storage
}

func (s *MemoryStore[T]) Get(ctx context.Context, key string) (*T, error) {
	blob, err := s.storage.Get(key)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, ErrNotFound
	}
	var obj T
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (s *MemoryStore[T]) Set(ctx context.Context, key string, val T, expiresIn time.Duration) error {
	blob := new(bytes.Buffer)
	if err := gob.NewEncoder(blob).Encode(val); err != nil {
		return err
	}
	return s.storage.Set(key, blob.Bytes(), expiresIn)
}

func (s *MemoryStore[T]) Save(ctx context.Context, key string, val T) error {
	return s.Set(ctx, key, val, 0)
}

func (s *MemoryStore[T]) Del(ctx context.Context, key string) error {
	return s.storage.Delete(key)
}

func (s *MemoryStore[T]) Update(ctx context.Context, key string, fn func(cur *T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Get(ctx, key)
	if err != nil && err != ErrNotFound {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return s.Save(ctx, key, next)
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		storage: memory.New(memory.Config{GCInterval: 10 * time.Second}),
	}
}

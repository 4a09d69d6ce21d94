package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore[T any] struct {
	rdb       redis.UniversalClient
	keyPrefix string
}

func (s *RedisStore[T]) Get(ctx context.Context, key string) (*T, error) {
	cmd := s.rdb.HGetAll(ctx, s.keyPrefix+key)
	if err := cmd.Err(); err != nil {
		return nil, err
	}
	if len(cmd.Val()) == 0 {
		return nil, ErrNotFound
	}
	var obj T
	if err := cmd.Scan(&obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (s *RedisStore[T]) Set(ctx context.Context, key string, val T, expiresIn time.Duration) error {
	if expiresIn == 0 {
		return s.Save(ctx, key, val)
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.keyPrefix+key, val)
	pipe.Expire(ctx, s.keyPrefix+key, expiresIn)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore[T]) Save(ctx context.Context, key string, val T) error {
	return s.rdb.HSet(ctx, s.keyPrefix+key, val).Err()
}

func (s *RedisStore[T]) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.keyPrefix+key).Err()
}

// Update watches the key so the write aborts if any other client touches the
// hash between the read and the transactional HSET.
func (s *RedisStore[T]) Update(ctx context.Context, key string, fn func(cur *T) (T, error)) error {
	txf := func(tx *redis.Tx) error {
		var cur *T
		cmd := tx.HGetAll(ctx, s.keyPrefix+key)
		if err := cmd.Err(); err != nil {
			return err
		}
		if len(cmd.Val()) > 0 {
			var obj T
			if err := cmd.Scan(&obj); err != nil {
				return err
			}
			cur = &obj
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.keyPrefix+key, next)
			return nil
		})
		return err
	}
	err := s.rdb.Watch(ctx, txf, s.keyPrefix+key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func NewRedisStore[T any](db redis.UniversalClient, keyPrefix string) *RedisStore[T] {
	return &RedisStore[T]{
		rdb:       db,
		keyPrefix: keyPrefix,
	}
}

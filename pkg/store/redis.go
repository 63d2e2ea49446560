package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const defaultRedisTxRetries = 32

// RedisStore keeps every item as a hash under "<namespace>:<key>". Writes that depend on the
// current value run as WATCH/MULTI transactions and are retried when another client wins the race.
type RedisStore struct {
	rdb        *redis.Client
	prefix     string
	maxRetries int
}

// NewRedisStore wraps a connected client. prefix is prepended to every hash key (may be empty).
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, maxRetries: defaultRedisTxRetries}
}

func (r *RedisStore) hashKey(ns Namespace, key string) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, ns, key)
}

func (r *RedisStore) Get(ctx context.Context, ns Namespace, key string) (Item, error) {
	if err := validateKey(ns, key); err != nil {
		return nil, err
	}
	fields, err := r.rdb.HGetAll(ctx, r.hashKey(ns, key)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return Item(fields), nil
}

func (r *RedisStore) Create(ctx context.Context, ns Namespace, key string, item Item) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	if len(item) == 0 {
		return fmt.Errorf("%w: item has no fields", ErrMalformedItem)
	}
	hk := r.hashKey(ns, key)
	return r.watch(ctx, hk, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, hk).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hk, toArgs(item))
			return nil
		})
		return err
	})
}

func (r *RedisStore) Update(ctx context.Context, ns Namespace, key string, fields Item) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	hk := r.hashKey(ns, key)
	return r.watch(ctx, hk, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, hk).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if len(fields) == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hk, toArgs(fields))
			return nil
		})
		return err
	})
}

func (r *RedisStore) Delete(ctx context.Context, ns Namespace, key string) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	return r.rdb.Del(ctx, r.hashKey(ns, key)).Err()
}

func (r *RedisStore) AdjustDecimal(ctx context.Context, ns Namespace, key string, field string, delta decimal.Decimal) (Item, error) {
	if err := validateKey(ns, key); err != nil {
		return nil, err
	}
	hk := r.hashKey(ns, key)
	var updated Item
	err := r.watch(ctx, hk, func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, hk).Result()
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return ErrNotFound
		}
		item := Item(fields)
		if err := addDecimal(item, field, delta); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hk, field, item[field])
			return nil
		})
		if err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// watch runs fn under WATCH on key, retrying with a short random pause while the optimistic
// transaction is aborted by a concurrent writer.
func (r *RedisStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < r.maxRetries; i++ {
		err := r.rdb.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(rand.Int63n(int64(time.Millisecond) * int64(i+1)))):
		}
	}
	return fmt.Errorf("redis transaction on %s: %w", key, redis.TxFailedErr)
}

func toArgs(item Item) map[string]interface{} {
	args := make(map[string]interface{}, len(item))
	for k, v := range item {
		args[k] = v
	}
	return args
}

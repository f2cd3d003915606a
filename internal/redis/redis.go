// Package redis provides an entity store backend in Redis.
//
// Each record is a string key holding its JSON encoding. A sorted set per
// kind, scored by an insertion counter, serves as the kind's index.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/evcraddock/domaindeck/internal/store"
	"github.com/redis/go-redis/v9"
)

// Redis provides record storage in Redis.
type Redis struct {
	cli    *redis.Client
	prefix string
}

// maxRetries bounds optimistic transaction retries under contention.
const maxRetries = 50

// Connect connects to the Redis server at url and pings it to ensure the
// connection is working.
func Connect(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(cli), nil
}

// New wraps an existing client.
func New(cli *redis.Client) *Redis {
	return &Redis{cli: cli, prefix: "dd"}
}

func (r *Redis) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, kind, id)
}

func (r *Redis) indexKey(kind string) string {
	return fmt.Sprintf("%s:%s:index", r.prefix, kind)
}

func (r *Redis) seqKey(kind string) string {
	return fmt.Sprintf("%s:%s:seq", r.prefix, kind)
}

// Insert stores a new record and adds it to the kind's index.
func (r *Redis) Insert(ctx context.Context, kind, id string, data []byte) error {
	key := r.key(kind, id)
	ok, err := r.cli.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return store.ErrExists
	}

	seq, err := r.cli.Incr(ctx, r.seqKey(kind)).Result()
	if err != nil {
		return fmt.Errorf("incr: %w", err)
	}
	if err := r.cli.ZAdd(ctx, r.indexKey(kind), redis.Z{
		Score:  float64(seq),
		Member: id,
	}).Err(); err != nil {
		return fmt.Errorf("zadd: %w", err)
	}
	return nil
}

// Get loads a record.
func (r *Redis) Get(ctx context.Context, kind, id string) ([]byte, error) {
	data, err := r.cli.Get(ctx, r.key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return data, nil
}

// List returns all records of kind in insertion order. Index entries whose
// record has vanished are skipped.
func (r *Redis) List(ctx context.Context, kind string) ([][]byte, error) {
	ids, err := r.cli.ZRange(ctx, r.indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(kind, id)
	}
	vals, err := r.cli.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}

	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, []byte(s))
	}
	return out, nil
}

// Update watches the record key and commits fn's result in a MULTI block,
// retrying when another writer touched the key in between.
func (r *Redis) Update(ctx context.Context, kind, id string, fn store.UpdateFunc) error {
	key := r.key(kind, id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}

		next, err := fn(data)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := r.cli.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("redis update %s: too much contention", key)
}

// Delete removes a record and its index entry.
func (r *Redis) Delete(ctx context.Context, kind, id string) error {
	n, err := r.cli.Del(ctx, r.key(kind, id)).Result()
	if err != nil {
		return fmt.Errorf("del: %w", err)
	}
	if err := r.cli.ZRem(ctx, r.indexKey(kind), id).Err(); err != nil {
		return fmt.Errorf("zrem: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.cli.Close()
}

// Ping checks if Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.cli.Ping(ctx).Err()
}

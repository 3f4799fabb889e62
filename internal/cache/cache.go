// Package cache stores computed dashboard stats in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

const namespace = "stats"

var (
	// ErrMiss is returned by Get when nothing is cached for the key.
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by Set when the key was invalidated after the
	// caller read its generation.
	ErrStale = errors.New("cache generation changed")
)

// StatsCache keeps one generation counter per key. Invalidate bumps it, and Set
// only stores a value computed under the generation that is still current.
type StatsCache interface {
	Get(ctx context.Context, key string) (models.DashboardStats, error)
	Generation(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, gen int64, s models.DashboardStats) error
	Invalidate(ctx context.Context, keys ...string) error
}

// =========================
// REDIS
// =========================

type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(addr, password string, ttl time.Duration) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &Redis{client: rdb, ttl: ttl}
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Get(ctx context.Context, key string) (models.DashboardStats, error) {
	var s models.DashboardStats
	raw, err := c.client.Get(ctx, dataKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return s, ErrMiss
	}
	if err != nil {
		return s, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return s, fmt.Errorf("decode cached stats: %w", err)
	}
	return s, nil
}

func dataKey(key string) string { return namespace + ":" + key }
func genKey(key string) string  { return namespace + ":gen:" + key }

func (c *Redis) Generation(ctx context.Context, key string) (int64, error) {
	return readGen(ctx, c.client, key)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGen(ctx context.Context, g getter, key string) (int64, error) {
	n, err := g.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return n, nil
}

// Set watches the generation key so an Invalidate that lands between the
// check and the write aborts the transaction.
func (c *Redis) Set(ctx context.Context, key string, gen int64, s models.DashboardStats) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readGen(ctx, tx, key)
		if err != nil {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dataKey(key), b, c.ttl)
			return nil
		})
		return err
	}, genKey(key))
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

func (c *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, genKey(k))
			pipe.Del(ctx, dataKey(k))
		}
		return nil
	})
	return err
}

func (c *Redis) Close() error { return c.client.Close() }

// =========================
// NONE
// =========================

// Nop never holds anything, so every Stats call recomputes.
type Nop struct{}

func (Nop) Get(context.Context, string) (models.DashboardStats, error) {
	return models.DashboardStats{}, ErrMiss
}
func (Nop) Generation(context.Context, string) (int64, error)               { return 0, nil }
func (Nop) Set(context.Context, string, int64, models.DashboardStats) error { return nil }
func (Nop) Invalidate(context.Context, ...string) error                     { return nil }

// Package redis implementa lockout.Store sobre hashes de Redis,
// compartido entre réplicas.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"animal-rescue/internal/ports/lockout"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "rescue:lockout:"

type Store struct {
	client *goredis.Client
}

// Connect acepta redis://... o host:port.
func Connect(ctx context.Context, redisURL string) (*goredis.Client, error) {
	var client *goredis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := goredis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = goredis.NewClient(opt)
	} else {
		client = goredis.NewClient(&goredis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (lockout.State, error) {
	data, err := s.client.HGetAll(ctx, keyPrefix+key).Result()
	if err != nil {
		return lockout.State{}, err
	}
	return parseState(data), nil
}

// RecordFailure: el hash expira a los window, así que la cuenta se reinicia
// sola cuando pasan window sin fallos nuevos desde el primero.
func (s *Store) RecordFailure(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (lockout.State, error) {
	redisKey := keyPrefix + key

	count, err := s.client.HIncrBy(ctx, redisKey, "failed_count", 1).Result()
	if err != nil {
		return lockout.State{}, err
	}

	state := lockout.State{FailedCount: int(count)}
	if int(count) >= threshold {
		until := now.Add(window).UTC()
		_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.HSet(ctx, redisKey, "locked_until", until.Unix())
			p.Expire(ctx, redisKey, window)
			return nil
		})
		if err != nil {
			return lockout.State{}, err
		}
		state.LockedUntil = &until
		return state, nil
	}

	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return lockout.State{}, err
		}
	}
	return state, nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func parseState(data map[string]string) lockout.State {
	st := lockout.State{}
	if raw, ok := data["failed_count"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			st.FailedCount = n
		}
	}
	if raw, ok := data["locked_until"]; ok && raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil && unix > 0 {
			t := time.Unix(unix, 0).UTC()
			st.LockedUntil = &t
		}
	}
	return st
}

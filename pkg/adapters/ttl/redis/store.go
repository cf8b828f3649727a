// Package redis keeps share tokens in Redis with a native key expiry.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
)

type Store struct {
	rdb *goredis.Client
}

// New connects to addr and checks the connection with a PING
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Store{rdb: rdb}, nil
}

// NewWithClient wraps an existing client
func NewWithClient(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("redis set %s: ttl must be positive", key)
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

var _ ports.TTLStore = (*Store)(nil)

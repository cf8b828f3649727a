// Package etcd keeps share tokens in etcd, each key attached to its own lease.
package etcd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

// client is the part of *clientv3.Client the store uses
type client interface {
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Close() error
}

type Store struct {
	client client
	prefix string
}

// New connects to the etcd cluster at endpoints
func New(endpoints []string, logger *zap.Logger) (*Store, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd connect: %w", err)
	}
	return newStore(cli), nil
}

func newStore(c client) *Store {
	return &Store{client: c, prefix: "ttl/"}
}

// leaseSeconds rounds up, etcd leases have one second granularity
func leaseSeconds(ttl time.Duration) int64 {
	return int64(math.Ceil(ttl.Seconds()))
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("etcd set %s: ttl must be positive", key)
	}
	lease, err := s.client.Grant(ctx, leaseSeconds(ttl))
	if err != nil {
		return fmt.Errorf("etcd grant lease: %w", err)
	}
	if _, err := s.client.Put(ctx, s.prefix+key, value, clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("etcd put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	resp, err := s.client.Get(ctx, s.prefix+key)
	if err != nil {
		return "", false, fmt.Errorf("etcd get %s: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ ports.TTLStore = (*Store)(nil)

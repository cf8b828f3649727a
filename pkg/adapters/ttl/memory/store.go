// Package memory is a process-local TTL store for development and tests.
// Entries are dropped lazily on read.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock lets tests move time forward
func NewWithClock(now func() time.Time) *Store {
	return &Store{entries: make(map[string]entry), now: now}
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("memory set %s: ttl must be positive", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *Store) Close() error { return nil }

var _ ports.TTLStore = (*Store)(nil)

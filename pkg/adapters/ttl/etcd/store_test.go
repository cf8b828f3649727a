package etcd

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// fakeClient keeps keys in memory. A put is bound to the most recent lease,
// and a lease lapses once the clock passes its deadline.
type fakeClient struct {
	mu        sync.Mutex
	now       time.Time
	nextLease clientv3.LeaseID
	lastLease clientv3.LeaseID
	deadlines map[clientv3.LeaseID]time.Time
	values    map[string]string
	leases    map[string]clientv3.LeaseID
	grantErr  error
	granted   []int64
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		now:       time.Unix(1_700_000_000, 0),
		deadlines: map[clientv3.LeaseID]time.Time{},
		values:    map[string]string{},
		leases:    map[string]clientv3.LeaseID{},
	}
}

func (f *fakeClient) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeClient) Grant(_ context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	f.nextLease++
	f.lastLease = f.nextLease
	f.deadlines[f.lastLease] = f.now.Add(time.Duration(ttl) * time.Second)
	f.granted = append(f.granted, ttl)
	return &clientv3.LeaseGrantResponse{ID: f.lastLease, TTL: ttl}, nil
}

func (f *fakeClient) Put(_ context.Context, key, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = val
	f.leases[key] = f.lastLease
	return &clientv3.PutResponse{}, nil
}

func (f *fakeClient) Get(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.values[key]
	if !ok || !f.now.Before(f.deadlines[f.leases[key]]) {
		return &clientv3.GetResponse{}, nil
	}
	return &clientv3.GetResponse{Kvs: []*mvccpb.KeyValue{{Key: []byte(key), Value: []byte(val)}}}, nil
}

func (f *fakeClient) Close() error { return nil }

func TestLeaseSeconds(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int64
	}{
		{time.Hour, 3600},
		{1500 * time.Millisecond, 2},
		{time.Millisecond, 1},
	}
	for _, tt := range tests {
		if got := leaseSeconds(tt.ttl); got != tt.want {
			t.Errorf("leaseSeconds(%v) = %d, want %d", tt.ttl, got, tt.want)
		}
	}
}

func TestSetGetExpiry(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	s := newStore(fc)

	if err := s.Set(ctx, "share:abc", "7", 10*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(fc.granted) != 1 || fc.granted[0] != 10 {
		t.Errorf("granted leases %v, want [10]", fc.granted)
	}
	if _, ok := fc.values["ttl/share:abc"]; !ok {
		t.Error("key not stored under prefix")
	}

	got, ok, err := s.Get(ctx, "share:abc")
	if err != nil || !ok || got != "7" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	fc.advance(10 * time.Second)
	if _, ok, err := s.Get(ctx, "share:abc"); err != nil || ok {
		t.Errorf("after lease expiry: ok=%v err=%v", ok, err)
	}

	if _, ok, err := s.Get(ctx, "never-set"); err != nil || ok {
		t.Errorf("unknown key: ok=%v err=%v", ok, err)
	}
}

func TestSetErrors(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	s := newStore(fc)

	if err := s.Set(ctx, "k", "v", 0); err == nil {
		t.Error("expected error for zero ttl")
	}
	if len(fc.granted) != 0 {
		t.Error("no lease should be granted for a rejected ttl")
	}

	fc.grantErr = errors.New("etcdserver: no leader")
	if err := s.Set(ctx, "k", "v", time.Minute); err == nil {
		t.Error("expected grant failure")
	}
	if _, ok := fc.values["ttl/k"]; ok {
		t.Error("key written without a lease")
	}
}

package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	l := NewMemoryLimiter(2, 50*time.Millisecond)
	defer l.Stop()
	ctx := context.Background()

	if !l.Allow(ctx, "u1") || !l.Allow(ctx, "u1") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow(ctx, "u1") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow(ctx, "u2") {
		t.Fatalf("keys must not share a window")
	}

	time.Sleep(80 * time.Millisecond)
	if !l.Allow(ctx, "u1") {
		t.Fatalf("window should have slid")
	}
}

func TestMemoryLimiterEmptyKey(t *testing.T) {
	l := NewMemoryLimiter(0, time.Minute)
	defer l.Stop()
	if !l.Allow(context.Background(), "") {
		t.Fatalf("empty key is never limited")
	}
}

type fakeStore struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeStore) SlidingWindow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

func TestRedisLimiterUsesStore(t *testing.T) {
	store := &fakeStore{allow: false}
	l := NewRedisLimiter(store, "rl:api:", 10, time.Minute, nil, nil)
	if l.Allow(context.Background(), "1.2.3.4") {
		t.Fatalf("store rejection must be honoured")
	}
	if len(store.keys) != 1 || store.keys[0] != "rl:api:1.2.3.4" {
		t.Fatalf("unexpected keys %v", store.keys)
	}
}

func TestRedisLimiterFallsBack(t *testing.T) {
	fallback := NewMemoryLimiter(1, time.Minute)
	defer fallback.Stop()
	l := NewRedisLimiter(&fakeStore{err: errors.New("down")}, "rl:", 10, time.Minute, fallback, nil)
	ctx := context.Background()

	if !l.Allow(ctx, "k") {
		t.Fatalf("fallback should admit the first request")
	}
	if l.Allow(ctx, "k") {
		t.Fatalf("fallback limit should apply")
	}
}

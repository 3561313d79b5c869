package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// WindowStore records hits in a shared sliding window
type WindowStore interface {
	SlidingWindow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedisLimiter shares its window across server replicas. When the store is
// unreachable it answers from the local fallback limiter.
type RedisLimiter struct {
	store    WindowStore
	prefix   string
	maxReqs  int
	window   time.Duration
	fallback Limiter
	logger   *slog.Logger
}

func NewRedisLimiter(store WindowStore, prefix string, maxRequests int, window time.Duration, fallback Limiter, logger *slog.Logger) *RedisLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{
		store:    store,
		prefix:   prefix,
		maxReqs:  maxRequests,
		window:   window,
		fallback: fallback,
		logger:   logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}
	ok, err := l.store.SlidingWindow(ctx, l.prefix+key, l.maxReqs, l.window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, using local window",
			slog.String("error", err.Error()),
		)
		if l.fallback == nil {
			return true
		}
		return l.fallback.Allow(ctx, key)
	}
	return ok
}

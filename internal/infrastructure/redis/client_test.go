package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSlidingWindow(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	c, err := NewClient(url, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := "test:ratelimit:" + uuid.NewString()
	for i := 0; i < 3; i++ {
		ok, err := c.SlidingWindow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("hit %d should be admitted: %v, %v", i, ok, err)
		}
	}
	ok, err := c.SlidingWindow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("sliding window: %v", err)
	}
	if ok {
		t.Fatalf("fourth hit should be rejected")
	}
}

package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

func TestIsNilError(t *testing.T) {
	if !IsNilError(goredis.Nil) {
		t.Error("redis.Nil not recognised")
	}
	if !IsNilError(fmt.Errorf("get: %w", goredis.Nil)) {
		t.Error("wrapped redis.Nil not recognised")
	}
	if IsNilError(fmt.Errorf("timeout")) {
		t.Error("unrelated error recognised as nil")
	}
}

// TestJSONRoundTrip needs a Redis server at TA_TEST_REDIS_ADDR.
func TestJSONRoundTrip(t *testing.T) {
	addr := os.Getenv("TA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TA_TEST_REDIS_ADDR not set")
	}
	c, err := NewClient(config.RedisConfig{Addr: addr, PoolSize: 2})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	type payload struct{ Words int }
	if err := SetJSON(ctx, c, "ta-test:json", payload{Words: 7}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	got, found, err := GetJSON[payload](ctx, c, "ta-test:json")
	if err != nil || !found || got.Words != 7 {
		t.Errorf("GetJSON = %+v, %v, %v", got, found, err)
	}
	if n, err := c.FlushByPattern(ctx, "ta-test:*"); err != nil || n < 1 {
		t.Errorf("FlushByPattern = %d, %v", n, err)
	}
	if _, found, _ := GetJSON[payload](ctx, c, "ta-test:json"); found {
		t.Error("key survived flush")
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package iconcache

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "icon:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestIconCacheSecondGetSkipsLoader(t *testing.T) {
	client := testValkeyClient(t)

	var calls int32
	loader := func(ctx context.Context, name string) (string, bool, error) {
		atomic.AddInt32(&calls, 1)
		return "<svg>" + name + "</svg>", true, nil
	}
	c := New(client, loader, time.Minute)
	ctx := context.Background()

	svg, found, err := c.Get(ctx, "mosque")
	if err != nil || !found {
		t.Fatalf("first Get: svg=%q found=%v err=%v", svg, found, err)
	}
	if svg != "<svg>mosque</svg>" {
		t.Errorf("svg: got %q", svg)
	}

	svg2, found2, err := c.Get(ctx, "mosque")
	if err != nil || !found2 {
		t.Fatalf("second Get: found=%v err=%v", found2, err)
	}
	if svg2 != svg {
		t.Errorf("second Get returned different body: %q", svg2)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestIconCacheMiss(t *testing.T) {
	client := testValkeyClient(t)

	loader := func(ctx context.Context, name string) (string, bool, error) {
		return "", false, nil
	}
	c := New(client, loader, time.Minute)

	_, found, err := c.Get(context.Background(), "no-such-icon")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("expected miss for unknown icon")
	}
}

func TestIconCacheCoalescesConcurrentLoads(t *testing.T) {
	client := testValkeyClient(t)

	var calls int32
	release := make(chan struct{})
	loader := func(ctx context.Context, name string) (string, bool, error) {
		atomic.AddInt32(&calls, 1)
		<-release // hold all callers on one in-flight load
		return "<svg/>", true, nil
	}
	c := New(client, loader, time.Minute)
	ctx := context.Background()

	const waiters = 8
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svg, found, err := c.Get(ctx, "fort")
			if err != nil || !found || svg != "<svg/>" {
				t.Errorf("Get: svg=%q found=%v err=%v", svg, found, err)
			}
		}()
	}

	// Give the goroutines time to pile up on the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("loader called %d times for concurrent gets, want 1", n)
	}
}

func TestIconCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)

	var calls int32
	loader := func(ctx context.Context, name string) (string, bool, error) {
		atomic.AddInt32(&calls, 1)
		return "<svg/>", true, nil
	}
	c := New(client, loader, time.Minute)
	ctx := context.Background()

	c.Get(ctx, "shrine")
	c.Invalidate(ctx, "shrine")
	c.Get(ctx, "shrine")

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("loader called %d times across invalidation, want 2", n)
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package iconcache provides a read-through Valkey cache for the icon
// library. The service is constructed once per process and passed by
// reference to consumers; concurrent requests for the same uncached icon
// are coalesced into a single loader call.
package iconcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "icon:"

	// DefaultTTL is how long a cached icon body stays in Valkey. Icons
	// rarely change; invalidation on admin edits covers the rest.
	DefaultTTL = 12 * time.Hour
)

// Loader fetches an icon's SVG body from the backing store. It returns
// ("", false, nil) when the icon does not exist.
type Loader func(ctx context.Context, name string) (svg string, found bool, err error)

// call tracks one in-flight load so duplicate requests can wait on it.
type call struct {
	done  chan struct{}
	svg   string
	found bool
	err   error
}

// Cache is the read-through icon cache.
type Cache struct {
	client *redis.Client
	loader Loader
	ttl    time.Duration

	mu       sync.Mutex
	inflight map[string]*call
}

// New creates an icon cache over the given Valkey client and loader.
func New(client *redis.Client, loader Loader, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client:   client,
		loader:   loader,
		ttl:      ttl,
		inflight: make(map[string]*call),
	}
}

// Get returns the icon's SVG body. Cached entries are served from Valkey;
// on a cache miss the loader runs once regardless of how many goroutines
// ask for the same name concurrently. found is false when the icon does
// not exist anywhere.
func (c *Cache) Get(ctx context.Context, name string) (svg string, found bool, err error) {
	val, err := c.client.Get(ctx, keyPrefix+name).Result()
	if err == nil {
		return val, true, nil
	}
	if err != redis.Nil {
		// Valkey trouble: fall through to the loader rather than failing
		// the render.
		slog.Warn("icon cache get error", "name", name, "error", err)
	}

	c.mu.Lock()
	if cl, ok := c.inflight[name]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.svg, cl.found, cl.err
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[name] = cl
	c.mu.Unlock()

	cl.svg, cl.found, cl.err = c.load(ctx, name)
	close(cl.done)

	c.mu.Lock()
	delete(c.inflight, name)
	c.mu.Unlock()

	return cl.svg, cl.found, cl.err
}

// load runs the loader and writes a hit back to Valkey.
func (c *Cache) load(ctx context.Context, name string) (string, bool, error) {
	svg, found, err := c.loader(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("icon load %s: %w", name, err)
	}
	if !found {
		return "", false, nil
	}
	if err := c.client.Set(ctx, keyPrefix+name, svg, c.ttl).Err(); err != nil {
		slog.Warn("icon cache set error", "name", name, "error", err)
	}
	return svg, true, nil
}

// Invalidate drops a cached icon, e.g. after an admin edit.
func (c *Cache) Invalidate(ctx context.Context, name string) {
	if err := c.client.Del(ctx, keyPrefix+name).Err(); err != nil {
		slog.Warn("icon cache invalidate error", "name", name, "error", err)
	}
}

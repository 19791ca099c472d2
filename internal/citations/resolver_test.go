// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package citations

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolvePreservesOrderAndIsolatesFailures(t *testing.T) {
	// 12 URLs, two of which fail.
	failing := map[int]bool{3: true, 9: true}

	r := &Resolver{check: func(ctx context.Context, url string) Result {
		var idx int
		fmt.Sscanf(url, "https://example.org/ref/%d", &idx)
		if failing[idx] {
			return Result{URL: url, OK: false, Error: "connection refused"}
		}
		return Result{URL: url, OK: true, Status: 200}
	}}

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.org/ref/%d", i)
	}

	results := r.Resolve(context.Background(), urls)
	if len(results) != 12 {
		t.Fatalf("got %d results, want 12", len(results))
	}

	var failed int
	for i, res := range results {
		if res.URL != urls[i] {
			t.Errorf("result %d: url %q, want %q (order must match input)", i, res.URL, urls[i])
		}
		if !res.OK {
			failed++
			if !failing[i] {
				t.Errorf("result %d unexpectedly failed", i)
			}
			if res.Error == "" {
				t.Errorf("result %d: failed entry carries no error detail", i)
			}
		}
	}
	if failed != 2 {
		t.Errorf("got %d failures, want exactly 2", failed)
	}
}

func TestResolveCapsConcurrency(t *testing.T) {
	var inFlight, peak int32

	r := &Resolver{check: func(ctx context.Context, url string) Result {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return Result{URL: url, OK: true, Status: 200}
	}}

	urls := make([]string, 30)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.org/%d", i)
	}
	r.Resolve(context.Background(), urls)

	if p := atomic.LoadInt32(&peak); p > Workers {
		t.Errorf("peak concurrency %d exceeds cap %d", p, Workers)
	}
}

func TestResolveEmptyBatch(t *testing.T) {
	r := NewResolver(nil)
	results := r.Resolve(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("got %d results for empty batch, want 0", len(results))
	}
}

func TestHTTPCheckStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/ok"):
			w.WriteHeader(http.StatusOK)
		case strings.HasPrefix(r.URL.Path, "/gone"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/no-head"):
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	r := NewResolver(srv.Client())
	results := r.Resolve(context.Background(), []string{
		srv.URL + "/ok",
		srv.URL + "/gone",
		srv.URL + "/no-head",
	})

	if !results[0].OK || results[0].Status != 200 {
		t.Errorf("/ok: %+v", results[0])
	}
	if results[1].OK || results[1].Status != 404 {
		t.Errorf("/gone: %+v", results[1])
	}
	// HEAD rejected, GET fallback succeeds.
	if !results[2].OK || results[2].Status != 200 {
		t.Errorf("/no-head: %+v", results[2])
	}
}

func TestHTTPCheckNetworkError(t *testing.T) {
	r := NewResolver(&http.Client{Timeout: time.Second})
	results := r.Resolve(context.Background(), []string{"http://127.0.0.1:1/unreachable"})
	if results[0].OK {
		t.Error("expected failure for unreachable host")
	}
	if results[0].Error == "" {
		t.Error("expected error detail")
	}
}

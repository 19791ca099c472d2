// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package citations checks whether source URLs referenced by site articles
// are still reachable. Batches fan out over a small fixed worker pool; one
// dead link never fails the batch.
package citations

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Workers is the concurrency cap for one batch.
	Workers = 5

	// requestTimeout bounds a single URL check.
	requestTimeout = 10 * time.Second
)

// Result reports the outcome of checking one URL. Exactly one of Status
// and Error carries detail: Status for an HTTP response, Error when the
// request itself failed.
type Result struct {
	URL    string `json:"url"`
	OK     bool   `json:"ok"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// checkFunc resolves one URL. Swappable in tests.
type checkFunc func(ctx context.Context, url string) Result

// Resolver checks citation URLs in batches.
type Resolver struct {
	check checkFunc
}

// NewResolver creates a resolver over the given HTTP client. A nil client
// uses a default with a per-request timeout.
func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Resolver{check: httpCheck(client)}
}

// Resolve checks every URL and returns one Result per input, in input
// order. At most Workers requests run at a time; workers pull the next
// index from a shared counter until the batch is drained.
func (r *Resolver) Resolve(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	var next atomic.Int64
	workers := Workers
	if len(urls) < workers {
		workers = len(urls)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(urls) {
					return
				}
				results[i] = r.check(ctx, urls[i])
			}
		}()
	}
	wg.Wait()

	return results
}

// httpCheck probes a URL with HEAD, falling back to GET for servers that
// reject HEAD. 2xx and 3xx responses count as reachable.
func httpCheck(client *http.Client) checkFunc {
	return func(ctx context.Context, url string) Result {
		status, err := probe(ctx, client, http.MethodHead, url)
		if err == nil && status == http.StatusMethodNotAllowed {
			status, err = probe(ctx, client, http.MethodGet, url)
		}
		if err != nil {
			return Result{URL: url, OK: false, Error: err.Error()}
		}
		return Result{
			URL:    url,
			OK:     status >= 200 && status < 400,
			Status: status,
		}
	}
}

func probe(ctx context.Context, client *http.Client, method, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

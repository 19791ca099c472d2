// Package main rewrites the Cache-Control header on existing S3 objects.
// Objects uploaded before long-lived caching was introduced carry no
// Cache-Control at all; since keys are timestamped and never reused, the
// immutable policy is safe to apply across the board.
//
// Usage:
//
//	migrate-cache-control [-prefix media -prefix home] [-delay 100ms] [-dry-run]
package main

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"heritagepk/internal/config"
	"heritagepk/internal/storage"
)

// prefixList collects repeated -prefix flags.
type prefixList []string

func (p *prefixList) String() string     { return strings.Join(*p, ",") }
func (p *prefixList) Set(v string) error { *p = append(*p, v); return nil }

func main() {
	var prefixes prefixList
	flag.Var(&prefixes, "prefix", "object key prefix to migrate (repeatable)")
	delay := flag.Duration("delay", 100*time.Millisecond, "pause between objects")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if len(prefixes) == 0 {
		// Everything the app writes to the public bucket.
		prefixes = prefixList{"media/", "home/"}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.S3Endpoint == "" || cfg.S3AccessKey == "" {
		slog.Error("s3 storage is not configured")
		os.Exit(1)
	}

	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3PublicBucket, cfg.S3PrivateBucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	bucket := storageClient.PublicBucket()
	updated, skipped, failed := 0, 0, 0

	for _, prefix := range prefixes {
		objects, err := storageClient.ListByPrefix(ctx, bucket, prefix)
		if err != nil {
			slog.Error("list objects failed", "error", err, "prefix", prefix)
			os.Exit(1)
		}
		slog.Info("prefix listed", "prefix", prefix, "objects", len(objects))

		for _, obj := range objects {
			contentType, cacheControl, err := storageClient.Head(ctx, bucket, obj.Key)
			if err != nil {
				slog.Warn("head failed", "error", err, "key", obj.Key)
				failed++
				continue
			}
			if cacheControl == storage.CacheControlLongLived {
				skipped++
				continue
			}

			if *dryRun {
				slog.Info("would update", "key", obj.Key, "current", cacheControl)
				updated++
				continue
			}

			// S3 metadata is immutable, so the object is rewritten in
			// place with the new header.
			data, err := storageClient.Download(ctx, bucket, obj.Key)
			if err != nil {
				slog.Warn("download failed", "error", err, "key", obj.Key)
				failed++
				continue
			}
			if err := storageClient.Upload(ctx, bucket, obj.Key, contentType, storage.CacheControlLongLived, bytes.NewReader(data), int64(len(data))); err != nil {
				slog.Warn("rewrite failed", "error", err, "key", obj.Key)
				failed++
				continue
			}
			updated++

			// Fixed pacing keeps the bucket's request rate predictable.
			time.Sleep(*delay)
		}
	}

	slog.Info("migration complete", "updated", updated, "skipped", skipped, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

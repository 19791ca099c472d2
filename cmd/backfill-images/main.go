// Package main backfills image metadata (dimensions and blurhash) for
// media and portfolio photo rows created before the pipeline recorded
// them. It walks rows in batches, downloads each object from S3, and
// writes the computed values back.
//
// Usage:
//
//	backfill-images [-batch 50] [-dry-run]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"runtime"

	"heritagepk/internal/config"
	"heritagepk/internal/database"
	"heritagepk/internal/imaging"
	"heritagepk/internal/storage"
	"heritagepk/internal/store"
)

func main() {
	batchSize := flag.Int("batch", 50, "rows per batch")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.S3Endpoint == "" || cfg.S3AccessKey == "" {
		slog.Error("s3 storage is not configured")
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3PublicBucket, cfg.S3PrivateBucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}

	imaging.Startup(runtime.NumCPU())
	defer imaging.Shutdown()

	ctx := context.Background()
	mediaDone := backfillMedia(ctx, store.NewMediaStore(db), storageClient, *batchSize, *dryRun)
	photosDone := backfillPhotos(ctx, store.NewPhotoStore(db), storageClient, *batchSize, *dryRun)

	slog.Info("backfill complete", "media", mediaDone, "photos", photosDone)
}

// backfillMedia processes media rows missing dimensions or a blurhash,
// batch by batch, until none remain. Returns the number updated.
func backfillMedia(ctx context.Context, media *store.MediaStore, storageClient *storage.Client, batchSize int, dryRun bool) int {
	done := 0
	for {
		rows, err := media.ListNeedingMeta(ctx, batchSize)
		if err != nil {
			slog.Error("list media needing meta failed", "error", err)
			return done
		}
		if len(rows) == 0 {
			return done
		}

		for _, m := range rows {
			width, height, hash, err := computeMeta(ctx, storageClient, m.Bucket, m.S3Key)
			if err != nil {
				slog.Warn("media meta failed", "error", err, "id", m.ID, "key", m.S3Key)
				continue
			}
			if dryRun {
				slog.Info("would update media", "id", m.ID, "width", width, "height", height)
				done++
				continue
			}
			if err := media.UpdateImageMeta(ctx, m.ID, width, height, hash); err != nil {
				slog.Error("media meta update failed", "error", err, "id", m.ID)
				continue
			}
			done++
		}

		// In dry-run mode rows stay unfilled, so a second pass would loop
		// forever over the same batch.
		if dryRun {
			return done
		}
	}
}

// backfillPhotos does the same for portfolio photo rows, which always
// live in the public bucket.
func backfillPhotos(ctx context.Context, photos *store.PhotoStore, storageClient *storage.Client, batchSize int, dryRun bool) int {
	done := 0
	for {
		rows, err := photos.ListNeedingMeta(ctx, batchSize)
		if err != nil {
			slog.Error("list photos needing meta failed", "error", err)
			return done
		}
		if len(rows) == 0 {
			return done
		}

		for _, p := range rows {
			width, height, hash, err := computeMeta(ctx, storageClient, storageClient.PublicBucket(), p.S3Key)
			if err != nil {
				slog.Warn("photo meta failed", "error", err, "id", p.ID, "key", p.S3Key)
				continue
			}
			if dryRun {
				slog.Info("would update photo", "id", p.ID, "width", width, "height", height)
				done++
				continue
			}
			if err := photos.UpdateImageMeta(ctx, p.ID, width, height, hash); err != nil {
				slog.Error("photo meta update failed", "error", err, "id", p.ID)
				continue
			}
			done++
		}

		if dryRun {
			return done
		}
	}
}

// computeMeta downloads an object and derives its dimensions and blur
// placeholder.
func computeMeta(ctx context.Context, storageClient *storage.Client, bucket, key string) (width, height int, hash string, err error) {
	data, err := storageClient.Download(ctx, bucket, key)
	if err != nil {
		return 0, 0, "", err
	}
	width, height, err = imaging.Dimensions(data)
	if err != nil {
		return 0, 0, "", err
	}
	hash, err = imaging.BlurHash(data)
	if err != nil {
		return 0, 0, "", err
	}
	return width, height, hash, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging converts uploaded images to WebP using libvips. The main
// entry point compresses to a target byte budget by binary-searching the
// encoder quality; thumbnails and blurhash placeholders are generated from
// the same source bytes.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"

	"github.com/buckket/go-blurhash"
	"github.com/davidbyttow/govips/v2/vips"
)

const (
	// DefaultBudgetBytes is the target size for a compressed upload.
	DefaultBudgetBytes = 500 * 1024

	// ThumbWidth is the width of generated thumbnails.
	ThumbWidth = 320

	// searchSteps bounds the quality binary search. Six probes narrow a
	// 10..95 range to within ~1 quality point.
	searchSteps = 6

	minQuality      = 10
	maxQuality      = 95
	fallbackQuality = 60
	thumbQuality    = 75

	// blurhash component counts, matching the placeholders rendered by
	// the front end.
	blurXComponents = 4
	blurYComponents = 3
)

// ProcessedImage holds one encoded output ready for upload.
type ProcessedImage struct {
	Width       int
	Height      int
	Quality     int // encoder quality actually used
	Data        []byte
	ContentType string // always "image/webp"
}

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024, // 50 MB
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// encodeFunc encodes at the given quality and reports the output size.
type encodeFunc func(quality int) ([]byte, error)

// searchUnderBudget binary-searches encoder quality for the largest output
// that still fits the budget. It performs at most searchSteps encodes and
// returns the best blob found together with its quality. If no probe fits,
// it encodes once more at fallbackQuality and returns that, whatever its
// size.
func searchUnderBudget(encode encodeFunc, budget int) ([]byte, int, error) {
	lo, hi := minQuality, maxQuality
	var best []byte
	bestQ := 0

	for i := 0; i < searchSteps && lo <= hi; i++ {
		q := (lo + hi) / 2
		buf, err := encode(q)
		if err != nil {
			return nil, 0, err
		}
		if len(buf) <= budget {
			// Fits; try higher quality.
			best = buf
			bestQ = q
			lo = q + 1
		} else {
			hi = q - 1
		}
	}

	if best != nil {
		return best, bestQ, nil
	}

	buf, err := encode(fallbackQuality)
	if err != nil {
		return nil, 0, err
	}
	return buf, fallbackQuality, nil
}

// exportWebp encodes the image at the given quality with metadata stripped.
func exportWebp(img *vips.ImageRef, quality int) ([]byte, *vips.ImageMetadata, error) {
	params := vips.NewWebpExportParams()
	params.Quality = quality
	params.Lossless = false
	params.StripMetadata = true
	return img.ExportWebp(params)
}

// CompressToBudget re-encodes the source image as WebP, searching for the
// highest quality that keeps the output within budget bytes. EXIF rotation
// is applied and metadata stripped. A budget of 0 uses DefaultBudgetBytes.
func CompressToBudget(original []byte, budget int) (*ProcessedImage, error) {
	if budget <= 0 {
		budget = DefaultBudgetBytes
	}

	img, err := vips.NewImageFromBuffer(original)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	defer img.Close()

	if err := img.AutoRotate(); err != nil {
		return nil, fmt.Errorf("imaging: autorotate: %w", err)
	}

	var meta *vips.ImageMetadata
	data, quality, err := searchUnderBudget(func(q int) ([]byte, error) {
		buf, m, err := exportWebp(img, q)
		if err != nil {
			return nil, fmt.Errorf("imaging: export q=%d: %w", q, err)
		}
		meta = m
		return buf, nil
	}, budget)
	if err != nil {
		return nil, err
	}

	return &ProcessedImage{
		Width:       meta.Width,
		Height:      meta.Height,
		Quality:     quality,
		Data:        data,
		ContentType: "image/webp",
	}, nil
}

// Thumbnail produces a WebP thumbnail of the given width, never upscaling.
func Thumbnail(original []byte, width int) (*ProcessedImage, error) {
	if width <= 0 {
		width = ThumbWidth
	}

	probe, err := vips.NewImageFromBuffer(original)
	if err != nil {
		return nil, fmt.Errorf("imaging: probe: %w", err)
	}
	if probe.Width() < width {
		width = probe.Width()
	}
	probe.Close()

	img, err := vips.NewThumbnailFromBuffer(original, width, 0, vips.InterestingNone)
	if err != nil {
		return nil, fmt.Errorf("imaging: thumbnail %dpx: %w", width, err)
	}
	defer img.Close()

	if err := img.AutoRotate(); err != nil {
		return nil, fmt.Errorf("imaging: autorotate thumbnail: %w", err)
	}

	buf, meta, err := exportWebp(img, thumbQuality)
	if err != nil {
		return nil, fmt.Errorf("imaging: export thumbnail: %w", err)
	}

	return &ProcessedImage{
		Width:       meta.Width,
		Height:      meta.Height,
		Quality:     thumbQuality,
		Data:        buf,
		ContentType: "image/webp",
	}, nil
}

// Dimensions reports the pixel size of the source image after EXIF rotation.
func Dimensions(original []byte) (width, height int, err error) {
	img, err := vips.NewImageFromBuffer(original)
	if err != nil {
		return 0, 0, fmt.Errorf("imaging: decode: %w", err)
	}
	defer img.Close()
	if err := img.AutoRotate(); err != nil {
		return 0, 0, fmt.Errorf("imaging: autorotate: %w", err)
	}
	return img.Width(), img.Height(), nil
}

// BlurHash computes a compact blur placeholder string for the image. The
// source is downscaled to a small PNG first; blurhash only needs a few
// dozen pixels of signal.
func BlurHash(original []byte) (string, error) {
	small, err := vips.NewThumbnailFromBuffer(original, 64, 0, vips.InterestingNone)
	if err != nil {
		return "", fmt.Errorf("imaging: blurhash downscale: %w", err)
	}
	defer small.Close()

	buf, _, err := small.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return "", fmt.Errorf("imaging: blurhash export: %w", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("imaging: blurhash decode: %w", err)
	}

	hash, err := blurhash.Encode(blurXComponents, blurYComponents, decoded)
	if err != nil {
		return "", fmt.Errorf("imaging: blurhash encode: %w", err)
	}
	return hash, nil
}

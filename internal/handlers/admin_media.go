// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritagepk/internal/imaging"
	"heritagepk/internal/middleware"
	"heritagepk/internal/models"
	"heritagepk/internal/render"
	"heritagepk/internal/storage"
)

// maxUploadSize is the maximum allowed file upload size (25 MB). Uploads
// are re-encoded to WebP, so the stored object is far smaller.
const maxUploadSize = 25 << 20

// uploadableTypes are the source image types the compression pipeline
// accepts. Everything stored comes out as WebP.
var uploadableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/tiff": true,
}

// MediaLibrary renders the media library admin page.
func (a *Admin) MediaLibrary(w http.ResponseWriter, r *http.Request) {
	a.renderMedia(w, r, nil)
}

func (a *Admin) renderMedia(w http.ResponseWriter, r *http.Request, flashes []render.Flash) {
	ctx := r.Context()
	items, err := a.mediaStore.List(ctx, 100, 0)
	if err != nil {
		slog.Error("list media failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Prefer the thumbnail for grid previews; fall back to the original.
	urls := make(map[uuid.UUID]string, len(items))
	if a.storageClient != nil {
		for _, m := range items {
			key := m.S3Key
			if m.ThumbS3Key != nil {
				key = *m.ThumbS3Key
			}
			urls[m.ID] = a.storageClient.FileURL(key)
		}
	}

	a.renderer.Page(w, r, "media", &render.PageData{
		Title:   "Media Library",
		Section: "media",
		Flashes: flashes,
		Data: map[string]any{
			"items": items,
			"urls":  urls,
		},
	})
}

// MediaUpload accepts a multipart image upload, compresses it to the WebP
// budget, generates a thumbnail and blur placeholder, and stores the
// results in S3 with immutable cache headers.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if a.storageClient == nil {
		a.renderMedia(w, r, []render.Flash{{Type: "error", Message: "Object storage is not configured."}})
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		a.renderMedia(w, r, []render.Flash{{Type: "error", Message: "File too large. Maximum size is 25 MB."}})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.renderMedia(w, r, []render.Flash{{Type: "error", Message: "No file provided."}})
		return
	}
	defer file.Close()

	original, _, errMsg := readImageUpload(file, header)
	if errMsg != "" {
		a.renderMedia(w, r, []render.Flash{{Type: "error", Message: errMsg}})
		return
	}

	processed, err := imaging.CompressToBudget(original, imaging.DefaultBudgetBytes)
	if err != nil {
		slog.Error("image compression failed", "error", err, "name", header.Filename)
		a.renderMedia(w, r, []render.Flash{{Type: "error", Message: "Could not process this image."}})
		return
	}

	ctx := r.Context()
	bucket := a.storageClient.PublicBucket()
	s3Key := storage.TimestampKey("media", webpName(header.Filename))

	if err := a.storageClient.Upload(ctx, bucket, s3Key, processed.ContentType, storage.CacheControlLongLived, bytes.NewReader(processed.Data), int64(len(processed.Data))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", s3Key)
		a.renderMedia(w, r, []render.Flash{{Type: "error", Message: "Failed to upload file."}})
		return
	}

	// Thumbnail and blurhash are best-effort; the original upload stands
	// either way and backfill-images can fill in the gaps later.
	var thumbKey *string
	if thumb, err := imaging.Thumbnail(original, imaging.ThumbWidth); err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "key", s3Key)
	} else {
		tk := thumbKeyFor(s3Key)
		if err := a.storageClient.Upload(ctx, bucket, tk, thumb.ContentType, storage.CacheControlLongLived, bytes.NewReader(thumb.Data), int64(len(thumb.Data))); err != nil {
			slog.Warn("thumbnail upload failed", "error", err, "key", tk)
		} else {
			thumbKey = &tk
		}
	}

	var blur *string
	if hash, err := imaging.BlurHash(original); err != nil {
		slog.Warn("blurhash failed", "error", err, "key", s3Key)
	} else {
		blur = &hash
	}

	media := &models.Media{
		Filename:     s3Key[strings.LastIndexByte(s3Key, '/')+1:],
		OriginalName: header.Filename,
		ContentType:  processed.ContentType,
		SizeBytes:    int64(len(processed.Data)),
		Bucket:       bucket,
		S3Key:        s3Key,
		ThumbS3Key:   thumbKey,
		Width:        &processed.Width,
		Height:       &processed.Height,
		BlurHash:     blur,
		UploaderID:   sess.UserID,
	}
	if alt := strings.TrimSpace(r.FormValue("alt_text")); alt != "" {
		media.AltText = &alt
	}

	if _, err := a.mediaStore.Create(ctx, media); err != nil {
		slog.Error("media db insert failed", "error", err, "key", s3Key)
		a.renderMedia(w, r, []render.Flash{{Type: "error", Message: "Failed to save file metadata."}})
		return
	}

	http.Redirect(w, r, "/admin/media", http.StatusSeeOther)
}

// MediaDelete removes a media item from both S3 and the database.
func (a *Admin) MediaDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	// Delete from DB first (returns the row for S3 cleanup).
	deleted, err := a.mediaStore.Delete(r.Context(), id)
	if err != nil {
		slog.Error("media db delete failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if deleted == nil {
		http.NotFound(w, r)
		return
	}

	// S3 cleanup is best-effort; orphaned objects are harmless.
	ctx := r.Context()
	if a.storageClient != nil {
		if err := a.storageClient.Delete(ctx, deleted.Bucket, deleted.S3Key); err != nil {
			slog.Warn("s3 original delete failed", "error", err, "key", deleted.S3Key)
		}
		if deleted.ThumbS3Key != nil {
			if err := a.storageClient.Delete(ctx, deleted.Bucket, *deleted.ThumbS3Key); err != nil {
				slog.Warn("s3 thumbnail delete failed", "error", err, "key", *deleted.ThumbS3Key)
			}
		}
	}

	a.renderMedia(w, r, []render.Flash{{Type: "success", Message: "Media deleted."}})
}

// uploadHeroImage processes an optional hero_image form file and uploads
// it through the compression pipeline. Returns the new S3 key, "" if no
// file was attached, or a user-facing error message.
func (a *Admin) uploadHeroImage(r *http.Request) (key, errMsg string) {
	file, header, err := r.FormFile("hero_image")
	if err == http.ErrMissingFile {
		return "", ""
	}
	if err != nil {
		return "", "Failed to read the hero image."
	}
	defer file.Close()
	if header.Size == 0 {
		return "", ""
	}
	if a.storageClient == nil {
		return "", "Object storage is not configured."
	}

	original, _, msg := readImageUpload(file, header)
	if msg != "" {
		return "", msg
	}

	processed, err := imaging.CompressToBudget(original, imaging.DefaultBudgetBytes)
	if err != nil {
		slog.Error("hero image compression failed", "error", err)
		return "", "Could not process the hero image."
	}

	key = storage.TimestampKey("home/hero", webpName(header.Filename))
	err = a.storageClient.Upload(r.Context(), a.storageClient.PublicBucket(), key, processed.ContentType, storage.CacheControlLongLived, bytes.NewReader(processed.Data), int64(len(processed.Data)))
	if err != nil {
		slog.Error("hero image upload failed", "error", err, "key", key)
		return "", "Failed to upload the hero image."
	}
	return key, ""
}

// readImageUpload reads and type-checks an uploaded image file. Returns
// the raw bytes and detected content type, or a user-facing error.
func readImageUpload(file multipart.File, header *multipart.FileHeader) (data []byte, contentType, errMsg string) {
	if header.Size > maxUploadSize {
		return nil, "", "File too large. Maximum size is 25 MB."
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "Failed to read file."
	}

	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	contentType = http.DetectContentType(data[:sniffLen])
	if !uploadableTypes[contentType] {
		return nil, "", fmt.Sprintf("File type %q is not supported. Upload a JPEG, PNG, GIF, TIFF, or WebP image.", contentType)
	}
	return data, contentType, ""
}

// webpName swaps a filename's extension for .webp, matching the stored
// encoding regardless of what was uploaded.
func webpName(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i > 0 {
		filename = filename[:i]
	}
	return filename + ".webp"
}

// thumbKeyFor derives the thumbnail object key from the original's key.
func thumbKeyFor(s3Key string) string {
	if i := strings.LastIndexByte(s3Key, '.'); i > 0 {
		return s3Key[:i] + "_thumb" + s3Key[i:]
	}
	return s3Key + "_thumb"
}

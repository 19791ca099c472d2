// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritagepk/internal/citations"
	"heritagepk/internal/imaging"
	"heritagepk/internal/middleware"
	"heritagepk/internal/models"
	"heritagepk/internal/storage"
	"heritagepk/internal/store"
)

// API groups the member-facing JSON handlers: profiles, photo
// portfolios, reviews, wishlists, trips, and the citation resolver.
type API struct {
	profiles      *store.ProfileStore
	photos        *store.PhotoStore
	reviews       *store.ReviewStore
	wishlists     *store.WishlistStore
	trips         *store.TripStore
	sites         *store.SiteStore
	storageClient *storage.Client
	resolver      *citations.Resolver
}

// NewAPI creates a new API handler group. storageClient may be nil if S3
// is not configured; avatar and photo uploads then return 503.
func NewAPI(profiles *store.ProfileStore, photos *store.PhotoStore, reviews *store.ReviewStore, wishlists *store.WishlistStore, trips *store.TripStore, sites *store.SiteStore, storageClient *storage.Client, resolver *citations.Resolver) *API {
	return &API{
		profiles:      profiles,
		photos:        photos,
		reviews:       reviews,
		wishlists:     wishlists,
		trips:         trips,
		sites:         sites,
		storageClient: storageClient,
		resolver:      resolver,
	}
}

// --- Profile ---

// ProfileGet returns the caller's profile with badges.
func (h *API) ProfileGet(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	profile, err := h.profiles.Find(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("profile lookup failed", "error", err)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		// No row yet — return an empty profile so clients can render the
		// edit form without a special case.
		profile = &models.Profile{UserID: sess.UserID, DisplayName: sess.DisplayName}
	}

	writeJSON(w, http.StatusOK, h.profileView(profile))
}

// ProfileUpdate upserts the caller's display name and bio.
func (h *API) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeAPIError(w, "display_name is required", http.StatusBadRequest)
		return
	}
	if len(req.Bio) > maxBioLen {
		writeAPIError(w, "bio is too long", http.StatusBadRequest)
		return
	}

	err := h.profiles.Upsert(r.Context(), &models.Profile{
		UserID:      sess.UserID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		slog.Error("profile upsert failed", "error", err)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}

	profile, err := h.profiles.Find(r.Context(), sess.UserID)
	if err != nil || profile == nil {
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.profileView(profile))
}

// AvatarUpload replaces the caller's avatar. The image runs through the
// WebP compression pipeline and lands under the user's own key prefix;
// the previous avatar object is removed afterwards.
func (h *API) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	if h.storageClient == nil {
		writeAPIError(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeAPIError(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeAPIError(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	original, _, errMsg := readImageUpload(file, header)
	if errMsg != "" {
		writeAPIError(w, errMsg, http.StatusBadRequest)
		return
	}

	processed, err := imaging.CompressToBudget(original, imaging.DefaultBudgetBytes)
	if err != nil {
		slog.Error("avatar compression failed", "error", err, "user", sess.UserID)
		writeAPIError(w, "could not process this image", http.StatusUnprocessableEntity)
		return
	}

	ctx := r.Context()
	key := storage.UserKey(sess.UserID.String(), fmt.Sprintf("avatar-%d.webp", time.Now().UnixMilli()))
	if err := h.storageClient.Upload(ctx, h.storageClient.PublicBucket(), key, processed.ContentType, storage.CacheControlLongLived, bytes.NewReader(processed.Data), int64(len(processed.Data))); err != nil {
		slog.Error("avatar upload failed", "error", err, "key", key)
		writeAPIError(w, "upload failed", http.StatusInternalServerError)
		return
	}

	oldKey, err := h.profiles.SetAvatarKey(ctx, sess.UserID, key)
	if err != nil {
		slog.Error("avatar key update failed", "error", err, "user", sess.UserID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if oldKey != nil && *oldKey != key {
		if err := h.storageClient.Delete(ctx, h.storageClient.PublicBucket(), *oldKey); err != nil {
			slog.Warn("old avatar delete failed", "error", err, "key", *oldKey)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"avatar_url": h.storageClient.FileURL(key),
	})
}

func (h *API) profileView(p *models.Profile) map[string]any {
	view := map[string]any{
		"user_id":      p.UserID,
		"display_name": p.DisplayName,
		"bio":          p.Bio,
		"badges":       p.Badges,
	}
	if p.AvatarKey != nil && h.storageClient != nil {
		view["avatar_url"] = h.storageClient.FileURL(*p.AvatarKey)
	}
	return view
}

// --- Photo portfolio ---

// PortfolioList returns the caller's photos in display order.
func (h *API) PortfolioList(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	photos, err := h.photos.ListByOwner(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list photos failed", "error", err)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}

	views := make([]map[string]any, 0, len(photos))
	for i := range photos {
		views = append(views, h.photoView(&photos[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": views})
}

// PortfolioUpload adds a photo to the caller's portfolio. The image is
// compressed to the WebP budget and appended at the end of the display
// order.
func (h *API) PortfolioUpload(w http.ResponseWriter, r *http.Request) {
	if h.storageClient == nil {
		writeAPIError(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeAPIError(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeAPIError(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	original, _, errMsg := readImageUpload(file, header)
	if errMsg != "" {
		writeAPIError(w, errMsg, http.StatusBadRequest)
		return
	}

	processed, err := imaging.CompressToBudget(original, imaging.DefaultBudgetBytes)
	if err != nil {
		slog.Error("photo compression failed", "error", err, "user", sess.UserID)
		writeAPIError(w, "could not process this image", http.StatusUnprocessableEntity)
		return
	}

	ctx := r.Context()
	key := storage.UserKey(sess.UserID.String(), "portfolio", fmt.Sprintf("%d-%s", time.Now().UnixMilli(), webpName(header.Filename)))
	if err := h.storageClient.Upload(ctx, h.storageClient.PublicBucket(), key, processed.ContentType, storage.CacheControlLongLived, bytes.NewReader(processed.Data), int64(len(processed.Data))); err != nil {
		slog.Error("photo upload failed", "error", err, "key", key)
		writeAPIError(w, "upload failed", http.StatusInternalServerError)
		return
	}

	photo := &models.Photo{
		OwnerID: sess.UserID,
		S3Key:   key,
		Width:   &processed.Width,
		Height:  &processed.Height,
	}
	if hash, err := imaging.BlurHash(original); err != nil {
		slog.Warn("photo blurhash failed", "error", err, "key", key)
	} else {
		photo.BlurHash = &hash
	}
	if caption := strings.TrimSpace(r.FormValue("caption")); caption != "" {
		if len(caption) > maxCaptionLen {
			writeAPIError(w, "caption is too long", http.StatusBadRequest)
			return
		}
		photo.Caption = &caption
	}

	created, err := h.photos.Create(ctx, photo)
	if err != nil {
		slog.Error("photo db insert failed", "error", err, "key", key)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, h.photoView(created))
}

// PortfolioReorder applies a batch of explicit order positions to the
// caller's own photos. Photos belonging to other users are untouched.
func (h *API) PortfolioReorder(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		Updates []struct {
			PhotoID    uuid.UUID `json:"photo_id"`
			OrderIndex int       `json:"order_index"`
		} `json:"updates"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if len(req.Updates) == 0 {
		writeAPIError(w, "updates is required", http.StatusBadRequest)
		return
	}

	updates := make([]store.OrderUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, store.OrderUpdate{PhotoID: u.PhotoID, OrderIndex: u.OrderIndex})
	}

	if err := h.photos.Reorder(r.Context(), sess.UserID, updates); err != nil {
		slog.Error("photo reorder failed", "error", err, "user", sess.UserID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PortfolioDelete removes one of the caller's photos and its S3 object.
func (h *API) PortfolioDelete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, "invalid id", http.StatusBadRequest)
		return
	}

	deleted, err := h.photos.Delete(r.Context(), id, sess.UserID)
	if err != nil {
		slog.Error("photo delete failed", "error", err, "id", id)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if deleted == nil {
		writeAPIError(w, "not found", http.StatusNotFound)
		return
	}

	if h.storageClient != nil {
		if err := h.storageClient.Delete(r.Context(), h.storageClient.PublicBucket(), deleted.S3Key); err != nil {
			slog.Warn("s3 photo delete failed", "error", err, "key", deleted.S3Key)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *API) photoView(p *models.Photo) map[string]any {
	view := map[string]any{
		"id":          p.ID,
		"caption":     p.Caption,
		"width":       p.Width,
		"height":      p.Height,
		"blur_hash":   p.BlurHash,
		"order_index": p.OrderIndex,
		"created_at":  p.CreatedAt,
	}
	if h.storageClient != nil {
		view["url"] = h.storageClient.FileURL(p.S3Key)
	}
	return view
}

// --- Reviews ---

// ReviewsList returns a site's reviews, most helpful first.
func (h *API) ReviewsList(w http.ResponseWriter, r *http.Request) {
	siteID, err := uuid.Parse(chi.URLParam(r, "siteID"))
	if err != nil {
		writeAPIError(w, "invalid site id", http.StatusBadRequest)
		return
	}

	reviews, err := h.reviews.ListBySite(r.Context(), siteID)
	if err != nil {
		slog.Error("list reviews failed", "error", err, "site", siteID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// ReviewCreate publishes a review of a site and awards any review-count
// badge the author just crossed.
func (h *API) ReviewCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	siteID, err := uuid.Parse(chi.URLParam(r, "siteID"))
	if err != nil {
		writeAPIError(w, "invalid site id", http.StatusBadRequest)
		return
	}

	var req struct {
		Rating int    `json:"rating"`
		Body   string `json:"body"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateReview(req.Rating, req.Body); msg != "" {
		writeAPIError(w, msg, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	site, err := h.sites.FindByID(ctx, siteID)
	if err != nil {
		slog.Error("site lookup failed", "error", err, "site", siteID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if site == nil {
		writeAPIError(w, "site not found", http.StatusNotFound)
		return
	}

	created, err := h.reviews.Create(ctx, &models.Review{
		SiteID:   siteID,
		AuthorID: sess.UserID,
		Rating:   req.Rating,
		Body:     strings.TrimSpace(req.Body),
	})
	if err != nil {
		slog.Error("review create failed", "error", err, "site", siteID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.awardReviewBadges(ctx, sess.UserID)

	writeJSON(w, http.StatusCreated, created)
}

// ReviewVoteHelpful records a one-per-user helpful vote.
func (h *API) ReviewVoteHelpful(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	reviewID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = h.reviews.VoteHelpful(r.Context(), reviewID, sess.UserID)
	if errors.Is(err, store.ErrAlreadyVoted) {
		writeAPIError(w, "already voted", http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("helpful vote failed", "error", err, "review", reviewID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// awardReviewBadges grants any milestone badge the author's review count
// has reached. Awards are idempotent, so re-checking past milestones is
// harmless.
func (h *API) awardReviewBadges(ctx context.Context, authorID uuid.UUID) {
	count, err := h.reviews.CountByAuthor(ctx, authorID)
	if err != nil {
		slog.Warn("review count for badges failed", "error", err, "user", authorID)
		return
	}
	for threshold, badge := range models.ReviewBadgeThresholds {
		if count >= threshold {
			if err := h.profiles.AwardBadge(ctx, authorID, badge); err != nil {
				slog.Warn("badge award failed", "error", err, "badge", badge)
			}
		}
	}
}

// --- Wishlist ---

// WishlistGet returns the caller's wishlist with site names.
func (h *API) WishlistGet(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	items, err := h.wishlists.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list wishlist failed", "error", err)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// WishlistAdd marks a site as wanted. Adding twice is a no-op.
func (h *API) WishlistAdd(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	siteID, err := uuid.Parse(chi.URLParam(r, "siteID"))
	if err != nil {
		writeAPIError(w, "invalid site id", http.StatusBadRequest)
		return
	}

	if err := h.wishlists.Add(r.Context(), sess.UserID, siteID); err != nil {
		slog.Error("wishlist add failed", "error", err, "site", siteID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WishlistRemove takes a site off the wishlist.
func (h *API) WishlistRemove(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	siteID, err := uuid.Parse(chi.URLParam(r, "siteID"))
	if err != nil {
		writeAPIError(w, "invalid site id", http.StatusBadRequest)
		return
	}

	if err := h.wishlists.Remove(r.Context(), sess.UserID, siteID); err != nil {
		slog.Error("wishlist remove failed", "error", err, "site", siteID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Trips ---

// TripsList returns the caller's trips without stops.
func (h *API) TripsList(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	trips, err := h.trips.ListByOwner(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list trips failed", "error", err)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trips": trips})
}

// TripCreate starts a new empty trip.
func (h *API) TripCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		Name      string  `json:"name"`
		StartDate *string `json:"start_date"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateTripName(req.Name); msg != "" {
		writeAPIError(w, msg, http.StatusBadRequest)
		return
	}
	if req.StartDate != nil {
		if _, err := time.Parse("2006-01-02", *req.StartDate); err != nil {
			writeAPIError(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	created, err := h.trips.Create(r.Context(), &models.Trip{
		OwnerID:   sess.UserID,
		Name:      strings.TrimSpace(req.Name),
		StartDate: req.StartDate,
	})
	if err != nil {
		slog.Error("trip create failed", "error", err)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// TripGet returns one of the caller's trips with its stops.
func (h *API) TripGet(w http.ResponseWriter, r *http.Request) {
	trip, ok := h.ownedTrip(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// TripReplaceStops swaps a trip's full itinerary in one operation. Stops
// arrive grouped by day; positions are renumbered contiguously per day.
func (h *API) TripReplaceStops(w http.ResponseWriter, r *http.Request) {
	trip, ok := h.ownedTrip(w, r)
	if !ok {
		return
	}

	var req struct {
		Stops []struct {
			SiteID uuid.UUID `json:"site_id"`
			Day    int       `json:"day"`
			Note   *string   `json:"note"`
		} `json:"stops"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	// Renumber positions in arrival order within each day.
	positions := map[int]int{}
	stops := make([]models.TripStop, 0, len(req.Stops))
	for _, s := range req.Stops {
		if s.Day < 1 {
			writeAPIError(w, "day must be at least 1", http.StatusBadRequest)
			return
		}
		stops = append(stops, models.TripStop{
			TripID:   trip.ID,
			SiteID:   s.SiteID,
			Day:      s.Day,
			Position: positions[s.Day],
			Note:     s.Note,
		})
		positions[s.Day]++
	}

	if err := h.trips.ReplaceStops(r.Context(), trip.ID, stops); err != nil {
		slog.Error("trip stops replace failed", "error", err, "trip", trip.ID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}

	updated, err := h.trips.Get(r.Context(), trip.ID)
	if err != nil || updated == nil {
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// TripDelete removes one of the caller's trips.
func (h *API) TripDelete(w http.ResponseWriter, r *http.Request) {
	trip, ok := h.ownedTrip(w, r)
	if !ok {
		return
	}

	if err := h.trips.Delete(r.Context(), trip.ID); err != nil {
		slog.Error("trip delete failed", "error", err, "trip", trip.ID)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedTrip loads the trip from the URL and enforces ownership. Trips
// belonging to other users read as not found.
func (h *API) ownedTrip(w http.ResponseWriter, r *http.Request) (*models.Trip, bool) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	trip, err := h.trips.Get(r.Context(), id)
	if err != nil {
		slog.Error("trip lookup failed", "error", err, "id", id)
		writeAPIError(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	if trip == nil || trip.OwnerID != sess.UserID {
		writeAPIError(w, "not found", http.StatusNotFound)
		return nil, false
	}
	return trip, true
}

// --- Citations ---

// CitationsResolve checks a batch of citation URLs for link rot and
// returns one result per URL, in the order submitted.
func (h *API) CitationsResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if len(req.URLs) == 0 {
		writeAPIError(w, "urls is required", http.StatusBadRequest)
		return
	}
	if len(req.URLs) > maxCitationBatch {
		writeAPIError(w, fmt.Sprintf("too many urls (max %d)", maxCitationBatch), http.StatusBadRequest)
		return
	}

	results := h.resolver.Resolve(r.Context(), req.URLs)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// --- JSON plumbing ---

// readJSON decodes the request body into dst, writing a 400 and
// returning false on malformed input.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeAPIError(w, "malformed request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

func writeAPIError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

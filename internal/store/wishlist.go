// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"heritagepk/internal/models"
)

// WishlistStore manages the (user, site) wishlist rows.
type WishlistStore struct {
	db *sql.DB
}

// NewWishlistStore returns a new WishlistStore.
func NewWishlistStore(db *sql.DB) *WishlistStore {
	return &WishlistStore{db: db}
}

// Add puts a site on the user's wishlist. Adding twice is a no-op.
func (s *WishlistStore) Add(ctx context.Context, userID, siteID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wishlists (user_id, site_id) VALUES ($1, $2)
		ON CONFLICT (user_id, site_id) DO NOTHING
	`, userID, siteID)
	if err != nil {
		return fmt.Errorf("wishlist add: %w", err)
	}
	return nil
}

// Remove takes a site off the user's wishlist.
func (s *WishlistStore) Remove(ctx context.Context, userID, siteID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM wishlists WHERE user_id = $1 AND site_id = $2
	`, userID, siteID)
	if err != nil {
		return fmt.Errorf("wishlist remove: %w", err)
	}
	return nil
}

// ListByUser returns the user's wishlist, newest first, with site names.
func (s *WishlistStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.user_id, w.site_id, w.created_at, st.name
		FROM wishlists w
		JOIN sites st ON st.id = w.site_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		var w models.WishlistItem
		if err := rows.Scan(&w.UserID, &w.SiteID, &w.CreatedAt, &w.SiteName); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// Contains reports whether a site is on the user's wishlist.
func (s *WishlistStore) Contains(ctx context.Context, userID, siteID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM wishlists WHERE user_id = $1 AND site_id = $2)
	`, userID, siteID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("wishlist contains: %w", err)
	}
	return exists, nil
}

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

// SiteStore manages heritage site rows.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore returns a new SiteStore.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

const siteColumns = `id, name, slug, region, summary, category_id, cover_key,
	latitude, longitude, created_at, updated_at`

// scanSite scans a sites row.
func scanSite(scanner interface{ Scan(...any) error }) (*models.Site, error) {
	var st models.Site
	err := scanner.Scan(
		&st.ID, &st.Name, &st.Slug, &st.Region, &st.Summary, &st.CategoryID,
		&st.CoverKey, &st.Latitude, &st.Longitude, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// List returns sites ordered by name, with pagination.
func (s *SiteStore) List(ctx context.Context, limit, offset int) ([]models.Site, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+siteColumns+` FROM sites ORDER BY name LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var items []models.Site
	for rows.Next() {
		st, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		items = append(items, *st)
	}
	return items, rows.Err()
}

// FindByID retrieves a site by ID. Returns nil if not found.
func (s *SiteStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id)
	st, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by id: %w", err)
	}
	return st, nil
}

// FindBySlug retrieves a site by slug. Returns nil if not found.
func (s *SiteStore) FindBySlug(ctx context.Context, slug string) (*models.Site, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE slug = $1`, slug)
	st, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by slug: %w", err)
	}
	return st, nil
}

// Create inserts a new site and returns it.
func (s *SiteStore) Create(ctx context.Context, st *models.Site) (*models.Site, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO sites (name, slug, region, summary, category_id, cover_key, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+siteColumns,
		st.Name, st.Slug, st.Region, st.Summary, st.CategoryID,
		st.CoverKey, st.Latitude, st.Longitude,
	)
	result, err := scanSite(row)
	if err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return result, nil
}

// Update modifies an existing site.
func (s *SiteStore) Update(ctx context.Context, st *models.Site) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sites SET
			name = $1, slug = $2, region = $3, summary = $4, category_id = $5,
			cover_key = $6, latitude = $7, longitude = $8, updated_at = NOW()
		WHERE id = $9
	`, st.Name, st.Slug, st.Region, st.Summary, st.CategoryID,
		st.CoverKey, st.Latitude, st.Longitude, st.ID)
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	return nil
}

// Delete removes a site. Reviews, stops, and wishlist rows cascade.
func (s *SiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	return nil
}

// Count returns the total number of sites.
func (s *SiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sites`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sites: %w", err)
	}
	return count, nil
}

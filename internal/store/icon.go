// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"heritagepk/internal/models"
)

// IconStore manages the icon library rows.
type IconStore struct {
	db *sql.DB
}

// NewIconStore returns a new IconStore.
func NewIconStore(db *sql.DB) *IconStore {
	return &IconStore{db: db}
}

const iconColumns = `id, name, svg, keywords, created_at, updated_at`

// List returns all icons ordered by name.
func (s *IconStore) List(ctx context.Context) ([]models.Icon, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+iconColumns+` FROM icons ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list icons: %w", err)
	}
	defer rows.Close()

	var items []models.Icon
	for rows.Next() {
		var ic models.Icon
		err := rows.Scan(&ic.ID, &ic.Name, &ic.SVG, &ic.Keywords, &ic.CreatedAt, &ic.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan icon: %w", err)
		}
		items = append(items, ic)
	}
	return items, rows.Err()
}

// FindByName retrieves an icon by its unique name. Returns nil if not found.
func (s *IconStore) FindByName(ctx context.Context, name string) (*models.Icon, error) {
	ic := &models.Icon{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+iconColumns+` FROM icons WHERE name = $1
	`, name).Scan(&ic.ID, &ic.Name, &ic.SVG, &ic.Keywords, &ic.CreatedAt, &ic.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find icon: %w", err)
	}
	return ic, nil
}

// Search returns icons whose name or keywords match the query.
func (s *IconStore) Search(ctx context.Context, query string) ([]models.Icon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+iconColumns+` FROM icons
		WHERE name ILIKE '%' || $1 || '%' OR keywords ILIKE '%' || $1 || '%'
		ORDER BY name
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search icons: %w", err)
	}
	defer rows.Close()

	var items []models.Icon
	for rows.Next() {
		var ic models.Icon
		err := rows.Scan(&ic.ID, &ic.Name, &ic.SVG, &ic.Keywords, &ic.CreatedAt, &ic.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan icon: %w", err)
		}
		items = append(items, ic)
	}
	return items, rows.Err()
}

// Upsert creates or replaces an icon by name.
func (s *IconStore) Upsert(ctx context.Context, ic *models.Icon) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO icons (name, svg, keywords)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET svg = EXCLUDED.svg, keywords = EXCLUDED.keywords, updated_at = NOW()
	`, ic.Name, ic.SVG, ic.Keywords)
	if err != nil {
		return fmt.Errorf("upsert icon %s: %w", ic.Name, err)
	}
	return nil
}

// Delete removes an icon by name.
func (s *IconStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM icons WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete icon: %w", err)
	}
	return nil
}

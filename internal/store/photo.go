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

// PhotoStore manages member photo portfolios.
type PhotoStore struct {
	db *sql.DB
}

// NewPhotoStore returns a new PhotoStore.
func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

const photoColumns = `id, owner_id, s3_key, caption, width, height, blur_hash, order_index, created_at`

// scanPhoto scans a photos row.
func scanPhoto(scanner interface{ Scan(...any) error }) (*models.Photo, error) {
	var p models.Photo
	err := scanner.Scan(
		&p.ID, &p.OwnerID, &p.S3Key, &p.Caption, &p.Width, &p.Height,
		&p.BlurHash, &p.OrderIndex, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a photo at the end of the owner's portfolio.
func (s *PhotoStore) Create(ctx context.Context, p *models.Photo) (*models.Photo, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO photos (owner_id, s3_key, caption, width, height, blur_hash, order_index)
		VALUES ($1, $2, $3, $4, $5, $6,
			COALESCE((SELECT MAX(order_index) + 1 FROM photos WHERE owner_id = $1), 0))
		RETURNING `+photoColumns,
		p.OwnerID, p.S3Key, p.Caption, p.Width, p.Height, p.BlurHash,
	)
	result, err := scanPhoto(row)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return result, nil
}

// FindByID retrieves a photo. Returns nil if not found.
func (s *PhotoStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find photo: %w", err)
	}
	return p, nil
}

// ListByOwner returns the owner's photos in display order.
func (s *PhotoStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE owner_id = $1 ORDER BY order_index
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var items []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// OrderUpdate is one entry in a portfolio reorder request.
type OrderUpdate struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	OrderIndex int       `json:"order_index"`
}

// Reorder applies order updates to the owner's photos in one transaction.
// Rows not owned by ownerID are ignored, so a caller can only reorder
// their own portfolio.
func (s *PhotoStore) Reorder(ctx context.Context, ownerID uuid.UUID, updates []OrderUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reorder photos: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE photos SET order_index = $1 WHERE id = $2 AND owner_id = $3`)
	if err != nil {
		return fmt.Errorf("reorder photos: prepare: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.OrderIndex, u.PhotoID, ownerID); err != nil {
			return fmt.Errorf("reorder photo %s: %w", u.PhotoID, err)
		}
	}

	return tx.Commit()
}

// Delete removes a photo and returns it so the caller can clean up the
// S3 object. Returns nil if not found or not owned by ownerID.
func (s *PhotoStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (*models.Photo, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM photos WHERE id = $1 AND owner_id = $2
		RETURNING `+photoColumns, id, ownerID)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete photo: %w", err)
	}
	return p, nil
}

// ListNeedingMeta returns up to limit photos that are missing dimensions
// or a blur placeholder. Used by the backfill command.
func (s *PhotoStore) ListNeedingMeta(ctx context.Context, limit int) ([]models.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE width IS NULL OR height IS NULL OR blur_hash IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list photos needing meta: %w", err)
	}
	defer rows.Close()

	var items []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// UpdateImageMeta fills in dimensions and the blur placeholder for a photo.
func (s *PhotoStore) UpdateImageMeta(ctx context.Context, id uuid.UUID, width, height int, blurHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE photos SET width = $1, height = $2, blur_hash = $3 WHERE id = $4
	`, width, height, blurHash, id)
	if err != nil {
		return fmt.Errorf("update photo meta: %w", err)
	}
	return nil
}

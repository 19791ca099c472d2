// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"heritagepk/internal/models"
)

// ErrAlreadyVoted is returned when a user tries to mark the same review
// helpful twice.
var ErrAlreadyVoted = errors.New("store: already voted")

// ReviewStore manages site reviews and their helpful votes.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore returns a new ReviewStore.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

const reviewColumns = `id, site_id, author_id, rating, body, helpful_votes, created_at, updated_at`

// Create inserts a review and returns it.
func (s *ReviewStore) Create(ctx context.Context, r *models.Review) (*models.Review, error) {
	result := &models.Review{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reviews (site_id, author_id, rating, body)
		VALUES ($1, $2, $3, $4)
		RETURNING `+reviewColumns,
		r.SiteID, r.AuthorID, r.Rating, r.Body,
	).Scan(
		&result.ID, &result.SiteID, &result.AuthorID, &result.Rating,
		&result.Body, &result.HelpfulVotes, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return result, nil
}

// FindByID retrieves a review. Returns nil if not found.
func (s *ReviewStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	r := &models.Review{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews WHERE id = $1
	`, id).Scan(
		&r.ID, &r.SiteID, &r.AuthorID, &r.Rating,
		&r.Body, &r.HelpfulVotes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	return r, nil
}

// ListBySite returns a site's reviews, most helpful first, with author
// display names joined in.
func (s *ReviewStore) ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.site_id, r.author_id, r.rating, r.body, r.helpful_votes,
		       r.created_at, r.updated_at, u.display_name
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.site_id = $1
		ORDER BY r.helpful_votes DESC, r.created_at DESC
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var items []models.Review
	for rows.Next() {
		var r models.Review
		err := rows.Scan(
			&r.ID, &r.SiteID, &r.AuthorID, &r.Rating, &r.Body,
			&r.HelpfulVotes, &r.CreatedAt, &r.UpdatedAt, &r.AuthorName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// VoteHelpful records a helpful vote and bumps the denormalized counter in
// one transaction. One vote per (review, user); a second vote returns
// ErrAlreadyVoted.
func (s *ReviewStore) VoteHelpful(ctx context.Context, reviewID, userID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vote helpful: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO review_votes (review_id, user_id) VALUES ($1, $2)
		ON CONFLICT (review_id, user_id) DO NOTHING
	`, reviewID, userID)
	if err != nil {
		return fmt.Errorf("vote helpful: insert vote: %w", err)
	}
	inserted, _ := res.RowsAffected()
	if inserted == 0 {
		return ErrAlreadyVoted
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE reviews SET helpful_votes = helpful_votes + 1 WHERE id = $1
	`, reviewID)
	if err != nil {
		return fmt.Errorf("vote helpful: bump counter: %w", err)
	}

	return tx.Commit()
}

// CountByAuthor returns how many reviews a user has written. Used for
// badge milestone checks.
func (s *ReviewStore) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reviews WHERE author_id = $1
	`, authorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reviews by author: %w", err)
	}
	return count, nil
}

// Delete removes a review; its votes cascade.
func (s *ReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

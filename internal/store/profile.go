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

// ProfileStore manages user profiles and awarded badges.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Find retrieves a profile with its badges. Returns nil if no profile row
// exists for the user.
func (s *ProfileStore) Find(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, display_name, bio, avatar_key, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.DisplayName, &p.Bio, &p.AvatarKey, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	badges, err := s.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Badges = badges
	return p, nil
}

// Upsert creates or updates the profile row for a user.
func (s *ProfileStore) Upsert(ctx context.Context, p *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, bio, avatar_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET display_name = EXCLUDED.display_name, bio = EXCLUDED.bio,
			avatar_key = EXCLUDED.avatar_key, updated_at = NOW()
	`, p.UserID, p.DisplayName, p.Bio, p.AvatarKey)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// SetAvatarKey points the profile at a new avatar object, creating the
// profile row if needed. Returns the previous key so the caller can clean
// up the old object.
func (s *ProfileStore) SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) (*string, error) {
	var previous *string
	err := s.db.QueryRowContext(ctx, `
		SELECT avatar_key FROM profiles WHERE user_id = $1
	`, userID).Scan(&previous)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("set avatar: read previous: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, avatar_key)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET avatar_key = EXCLUDED.avatar_key, updated_at = NOW()
	`, userID, key)
	if err != nil {
		return nil, fmt.Errorf("set avatar: %w", err)
	}
	return previous, nil
}

// ListBadges returns the user's badges ordered by award time.
func (s *ProfileStore) ListBadges(ctx context.Context, userID uuid.UUID) ([]models.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, slug, awarded_at FROM badges
		WHERE user_id = $1 ORDER BY awarded_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.UserID, &b.Slug, &b.AwardedAt); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// AwardBadge grants a badge to a user. Awarding the same badge twice is a
// no-op, so milestone checks can run unconditionally.
func (s *ProfileStore) AwardBadge(ctx context.Context, userID uuid.UUID, slug string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO badges (user_id, slug) VALUES ($1, $2)
		ON CONFLICT (user_id, slug) DO NOTHING
	`, userID, slug)
	if err != nil {
		return fmt.Errorf("award badge %s: %w", slug, err)
	}
	return nil
}

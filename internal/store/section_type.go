// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"heritagepk/internal/layout"
	"heritagepk/internal/models"
)

// ErrVersionConflict is returned by checked updates when the row's version
// no longer matches the caller's expectation (another admin session saved
// in between).
var ErrVersionConflict = errors.New("store: version conflict")

// SectionTypeStore handles the persisted configuration instances of the
// layout archetypes.
type SectionTypeStore struct {
	db *sql.DB
}

// NewSectionTypeStore creates a new SectionTypeStore with the given
// database connection.
func NewSectionTypeStore(db *sql.DB) *SectionTypeStore {
	return &SectionTypeStore{db: db}
}

const sectionTypeColumns = `id, name, slug, version, enabled, config_json, created_at, updated_at`

// scanSectionType scans one section_types row, decoding the settings JSON.
func scanSectionType(scanner interface{ Scan(...any) error }) (*models.SectionType, error) {
	var st models.SectionType
	var cfg []byte
	err := scanner.Scan(
		&st.ID, &st.Name, &st.Slug, &st.Version, &st.Enabled,
		&cfg, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cfg, &st.Config); err != nil {
		return nil, fmt.Errorf("decode config_json for %s: %w", st.Slug, err)
	}
	return &st, nil
}

// SeedDefaults ensures a row exists for every archetype in the registry.
// Existing slugs are read first and only the missing ones inserted, in a
// single transaction, so the call is idempotent and safe on every admin
// page load.
func (s *SectionTypeStore) SeedDefaults(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed section types: begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT slug FROM section_types`)
	if err != nil {
		return fmt.Errorf("seed section types: read slugs: %w", err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			rows.Close()
			return fmt.Errorf("seed section types: scan slug: %w", err)
		}
		existing[slug] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("seed section types: %w", err)
	}

	for _, a := range layout.Registry {
		if existing[a.Slug] {
			continue
		}
		cfg, err := json.Marshal(a.Defaults)
		if err != nil {
			return fmt.Errorf("seed section types: marshal %s: %w", a.Slug, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO section_types (name, slug, version, enabled, config_json)
			VALUES ($1, $2, 1, TRUE, $3)
		`, a.DisplayName, a.Slug, cfg)
		if err != nil {
			return fmt.Errorf("seed section types: insert %s: %w", a.Slug, err)
		}
	}

	return tx.Commit()
}

// List returns all section type rows ordered by name.
func (s *SectionTypeStore) List(ctx context.Context) ([]models.SectionType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sectionTypeColumns+` FROM section_types ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list section types: %w", err)
	}
	defer rows.Close()

	var items []models.SectionType
	for rows.Next() {
		st, err := scanSectionType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section type: %w", err)
		}
		items = append(items, *st)
	}
	return items, rows.Err()
}

// FindByID retrieves a section type by ID. Returns nil if not found.
func (s *SectionTypeStore) FindByID(ctx context.Context, id uuid.UUID) (*models.SectionType, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sectionTypeColumns+` FROM section_types WHERE id = $1
	`, id)
	st, err := scanSectionType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section type: %w", err)
	}
	return st, nil
}

// FindBySlug retrieves a section type by its archetype slug.
func (s *SectionTypeStore) FindBySlug(ctx context.Context, slug string) (*models.SectionType, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sectionTypeColumns+` FROM section_types WHERE slug = $1
	`, slug)
	st, err := scanSectionType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section type by slug: %w", err)
	}
	return st, nil
}

// UpdateSettings persists new settings and bumps updated_at. The version
// column is left untouched: version tracks template-level revisions, not
// settings saves. Returns the updated row, or nil if the ID is unknown.
func (s *SectionTypeStore) UpdateSettings(ctx context.Context, id uuid.UUID, settings layout.Settings) (*models.SectionType, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("update section settings: marshal: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE section_types SET config_json = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+sectionTypeColumns, cfg, id)
	st, err := scanSectionType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update section settings: %w", err)
	}
	return st, nil
}

// UpdateSettingsChecked is the optimistic-concurrency variant: it only
// writes when the stored version equals expectVersion, and increments the
// version on success. The enabled flag is written inside the same guarded
// UPDATE so a stale editor cannot flip it either. Returns
// ErrVersionConflict when the row exists but has moved on.
func (s *SectionTypeStore) UpdateSettingsChecked(ctx context.Context, id uuid.UUID, settings layout.Settings, enabled bool, expectVersion int) (*models.SectionType, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("update section settings: marshal: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE section_types
		SET config_json = $1, enabled = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4
		RETURNING `+sectionTypeColumns, cfg, enabled, id, expectVersion)
	st, err := scanSectionType(row)
	if err == sql.ErrNoRows {
		// Distinguish missing row from stale version.
		exists, exErr := s.FindByID(ctx, id)
		if exErr != nil {
			return nil, exErr
		}
		if exists == nil {
			return nil, nil
		}
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update section settings checked: %w", err)
	}
	return st, nil
}

// Count returns the number of section type rows.
func (s *SectionTypeStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM section_types`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count section types: %w", err)
	}
	return count, nil
}

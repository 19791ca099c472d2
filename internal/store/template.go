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

// LayoutTemplateStore handles layout templates and their ordered section
// links.
type LayoutTemplateStore struct {
	db *sql.DB
}

// NewLayoutTemplateStore creates a new LayoutTemplateStore with the given
// database connection.
func NewLayoutTemplateStore(db *sql.DB) *LayoutTemplateStore {
	return &LayoutTemplateStore{db: db}
}

const templateColumns = `id, name, slug, version, created_at, updated_at`

// List returns template summaries with their section counts, ordered by name.
func (s *LayoutTemplateStore) List(ctx context.Context) ([]models.LayoutTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.version, t.created_at, t.updated_at,
		       COUNT(ts.section_type_id) AS section_count
		FROM layout_templates t
		LEFT JOIN template_sections ts ON ts.template_id = t.id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var items []models.LayoutTemplate
	for rows.Next() {
		var t models.LayoutTemplate
		err := rows.Scan(
			&t.ID, &t.Name, &t.Slug, &t.Version,
			&t.CreatedAt, &t.UpdatedAt, &t.SectionCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Get retrieves a template with its section links ordered by sort_order.
// Returns nil if not found.
func (s *LayoutTemplateStore) Get(ctx context.Context, id uuid.UUID) (*models.LayoutTemplate, error) {
	t := &models.LayoutTemplate{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+` FROM layout_templates WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Slug, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts.template_id, ts.section_type_id, ts.sort_order, ts.overrides_json,
		       st.slug, st.name
		FROM template_sections ts
		JOIN section_types st ON st.id = ts.section_type_id
		WHERE ts.template_id = $1
		ORDER BY ts.sort_order
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get template sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sec models.TemplateSection
		err := rows.Scan(
			&sec.TemplateID, &sec.SectionTypeID, &sec.SortOrder,
			&sec.Overrides, &sec.SectionSlug, &sec.SectionName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan template section: %w", err)
		}
		t.Sections = append(t.Sections, sec)
	}
	t.SectionCount = len(t.Sections)
	return t, rows.Err()
}

// Upsert creates or updates a template together with its section links.
// A new template (zero ID) is inserted at version 1; an existing one has
// its version incremented and all prior links replaced by the given set,
// renumbered contiguously from 0. The whole operation runs in one
// transaction, so a template can never be observed with a partial section
// set.
func (s *LayoutTemplateStore) Upsert(ctx context.Context, tpl *models.LayoutTemplate) (*models.LayoutTemplate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert template: begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &models.LayoutTemplate{}
	if tpl.ID == uuid.Nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO layout_templates (name, slug, version)
			VALUES ($1, $2, 1)
			RETURNING `+templateColumns,
			tpl.Name, tpl.Slug,
		).Scan(&result.ID, &result.Name, &result.Slug, &result.Version,
			&result.CreatedAt, &result.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert template: %w", err)
		}
	} else {
		err = tx.QueryRowContext(ctx, `
			UPDATE layout_templates
			SET name = $1, slug = $2, version = version + 1, updated_at = NOW()
			WHERE id = $3
			RETURNING `+templateColumns,
			tpl.Name, tpl.Slug, tpl.ID,
		).Scan(&result.ID, &result.Name, &result.Slug, &result.Version,
			&result.CreatedAt, &result.UpdatedAt)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("upsert template: id %s not found", tpl.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("update template: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM template_sections WHERE template_id = $1
		`, result.ID); err != nil {
			return nil, fmt.Errorf("clear template sections: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO template_sections (template_id, section_type_id, sort_order, overrides_json)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return nil, fmt.Errorf("prepare section insert: %w", err)
	}
	defer stmt.Close()

	for i, sec := range tpl.Sections {
		if _, err := stmt.ExecContext(ctx, result.ID, sec.SectionTypeID, i, sec.Overrides); err != nil {
			return nil, fmt.Errorf("insert template section %d: %w", i, err)
		}
		sec.TemplateID = result.ID
		sec.SortOrder = i
		result.Sections = append(result.Sections, sec)
	}
	result.SectionCount = len(result.Sections)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("upsert template: commit: %w", err)
	}
	return result, nil
}

// Delete removes a template; section links go with it via ON DELETE CASCADE.
func (s *LayoutTemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM layout_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// SectionCount returns the number of section links a template has.
func (s *LayoutTemplateStore) SectionCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM template_sections WHERE template_id = $1
	`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count template sections: %w", err)
	}
	return count, nil
}

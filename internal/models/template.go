// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// LayoutTemplate is a named, versioned, ordered stack of section types
// forming a publishable page layout.
type LayoutTemplate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sections is populated by store methods, ordered by SortOrder.
	Sections []TemplateSection `json:"sections,omitempty"`

	// SectionCount is populated by list queries.
	SectionCount int `json:"section_count"`
}

// TemplateSection links a template to a section type at a position.
// SortOrder defines rendering order and is contiguous from 0.
type TemplateSection struct {
	TemplateID    uuid.UUID `json:"template_id"`
	SectionTypeID uuid.UUID `json:"section_type_id"`
	SortOrder     int       `json:"sort_order"`
	Overrides     *string   `json:"overrides,omitempty"` // raw JSON settings overrides

	// SectionSlug and SectionName are joined in by store reads for display.
	SectionSlug string `json:"section_slug,omitempty"`
	SectionName string `json:"section_name,omitempty"`
}

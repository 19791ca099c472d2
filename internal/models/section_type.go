// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"heritagepk/internal/layout"
)

// SectionType is the persisted, editable configuration instance of a
// layout archetype. Exactly one row exists per archetype slug; rows are
// seeded idempotently and never deleted.
type SectionType struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"` // one of the layout.Registry slugs
	Version   int             `json:"version"`
	Enabled   bool            `json:"enabled"`
	Config    layout.Settings `json:"config"` // stored as config_json
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Archetype returns the code-defined archetype backing this row, or nil
// if the slug is unknown (schema drift).
func (s *SectionType) Archetype() *layout.Archetype {
	return layout.BySlug(s.Slug)
}

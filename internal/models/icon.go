// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Icon is an entry in the icon library: an inline SVG body addressed by a
// unique name, used by categories and the home page editor.
type Icon struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SVG       string    `json:"svg"`
	Keywords  string    `json:"keywords"` // space-separated search terms
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Site represents one heritage site — the central domain entity that
// reviews, trips, and wishlists reference.
type Site struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Region     string     `json:"region"`
	Summary    string     `json:"summary"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CoverKey   *string    `json:"cover_key,omitempty"` // S3 key of the cover image
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

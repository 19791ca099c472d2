// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a member's review of a heritage site. HelpfulVotes is a
// denormalized counter maintained alongside the review_votes rows.
type Review struct {
	ID           uuid.UUID `json:"id"`
	SiteID       uuid.UUID `json:"site_id"`
	AuthorID     uuid.UUID `json:"author_id"`
	Rating       int       `json:"rating"` // 1..5
	Body         string    `json:"body"`
	HelpfulVotes int       `json:"helpful_votes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// AuthorName is joined in by list queries.
	AuthorName string `json:"author_name,omitempty"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a member's planned itinerary: an ordered list of site stops
// grouped by day.
type Trip struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	StartDate *string   `json:"start_date,omitempty"` // YYYY-MM-DD, optional
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Stops is populated by store reads, ordered by (Day, Position).
	Stops []TripStop `json:"stops,omitempty"`
}

// TripStop places a site in a trip at a day and position. Position is
// contiguous from 0 within a day.
type TripStop struct {
	TripID   uuid.UUID `json:"trip_id"`
	SiteID   uuid.UUID `json:"site_id"`
	Day      int       `json:"day"`
	Position int       `json:"position"`
	Note     *string   `json:"note,omitempty"`

	// SiteName is joined in by store reads.
	SiteName string `json:"site_name,omitempty"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem marks a site a user wants to visit. The (UserID, SiteID)
// pair is unique.
type WishlistItem struct {
	UserID    uuid.UUID `json:"user_id"`
	SiteID    uuid.UUID `json:"site_id"`
	CreatedAt time.Time `json:"created_at"`

	// SiteName is joined in by list queries.
	SiteName string `json:"site_name,omitempty"`
}

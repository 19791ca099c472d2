// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the public-facing details of a user. Avatars live in
// object storage under the user's ID prefix.
type Profile struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarKey   *string   `json:"avatar_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Badges is populated by store reads.
	Badges []Badge `json:"badges,omitempty"`
}

// Badge is an achievement awarded to a user, e.g. for review milestones.
type Badge struct {
	UserID    uuid.UUID `json:"user_id"`
	Slug      string    `json:"slug"`
	AwardedAt time.Time `json:"awarded_at"`
}

// Review milestone thresholds mapped to badge slugs. Checked after each
// published review.
var ReviewBadgeThresholds = map[int]string{
	1:  "first-review",
	10: "ten-reviews",
	50: "fifty-reviews",
}

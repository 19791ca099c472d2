// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for admin and member form inputs.
const (
	maxTemplateNameLen = 200
	maxCategoryNameLen = 120
	maxIconNameLen     = 80
	maxIconSVGLen      = 50_000
	maxBioLen          = 2_000
	maxReviewBodyLen   = 10_000
	maxCaptionLen      = 500
	maxTripNameLen     = 200
	maxCitationBatch   = 50
)

// validateTemplateName checks the template form name and returns the
// first error found, or "".
func validateTemplateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Template name is required."
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLen {
		return "Template name is too long (max 200 characters)."
	}
	return ""
}

// validateCategoryName checks a category name.
func validateCategoryName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 120 characters)."
	}
	return ""
}

// validateIcon checks the icon upsert form. Names are lowercase slugs so
// they can be referenced from category rows and templates.
func validateIcon(name, svg string) string {
	if name == "" {
		return "Icon name is required."
	}
	if utf8.RuneCountInString(name) > maxIconNameLen {
		return "Icon name is too long (max 80 characters)."
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return "Icon name may only contain lowercase letters, digits, and hyphens."
		}
	}
	if svg == "" {
		return "SVG body is required."
	}
	if utf8.RuneCountInString(svg) > maxIconSVGLen {
		return "SVG body is too long (max 50,000 characters)."
	}
	if !strings.HasPrefix(svg, "<svg") {
		return "SVG body must start with an <svg> element."
	}
	return ""
}

// validateReview checks a member review submission.
func validateReview(rating int, body string) string {
	if rating < 1 || rating > 5 {
		return "Rating must be between 1 and 5."
	}
	if strings.TrimSpace(body) == "" {
		return "Review text is required."
	}
	if utf8.RuneCountInString(body) > maxReviewBodyLen {
		return "Review is too long (max 10,000 characters)."
	}
	return ""
}

// validateTripName checks a trip name.
func validateTripName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Trip name is required."
	}
	if utf8.RuneCountInString(name) > maxTripNameLen {
		return "Trip name is too long (max 200 characters)."
	}
	return ""
}

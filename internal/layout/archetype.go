// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package layout defines the section archetype registry and the declarative
// flow-layout presets consumed by the template renderer. Archetypes are a
// closed, code-defined set; their persisted counterparts live in the
// section_types table and are seeded from the defaults declared here.
package layout

import "fmt"

// Background is the allowed set of section background styles.
type Background string

const (
	BackgroundWhite       Background = "white"
	BackgroundLightGray   Background = "light-gray"
	BackgroundTransparent Background = "transparent"
)

// Settings holds the editable styling parameters for a section type.
// All numeric fields are pixel values and must be non-negative.
type Settings struct {
	PaddingY   int        `json:"padding_y"`
	MarginY    int        `json:"margin_y"`
	MaxWidth   int        `json:"max_width"`
	Gutter     int        `json:"gutter"`
	Background Background `json:"background"`
}

// Validate checks numeric ranges and the background enum.
func (s Settings) Validate() error {
	if s.PaddingY < 0 || s.MarginY < 0 || s.MaxWidth < 0 || s.Gutter < 0 {
		return fmt.Errorf("layout: settings values must be non-negative")
	}
	switch s.Background {
	case BackgroundWhite, BackgroundLightGray, BackgroundTransparent:
		return nil
	default:
		return fmt.Errorf("layout: unknown background %q", s.Background)
	}
}

// Archetype is one of the five fixed section layout kinds.
type Archetype struct {
	Slug        string
	DisplayName string
	Description string
	Defaults    Settings
}

// Archetype slugs. The set is closed; adding one requires a code change
// and a renderer that understands the new geometry.
const (
	FullWidthImage     = "full-width-image"
	ImageLeftTextRight = "image-left-text-right"
	ImageRightTextLeft = "image-right-text-left"
	TwoImages          = "two-images"
	ThreeImages        = "three-images"
)

// defaultSettings is shared by all archetypes unless overridden below.
var defaultSettings = Settings{
	PaddingY:   32,
	MarginY:    0,
	MaxWidth:   1200,
	Gutter:     16,
	Background: BackgroundWhite,
}

// Registry enumerates every archetype with its default settings, in
// display order.
var Registry = []Archetype{
	{
		Slug:        FullWidthImage,
		DisplayName: "Full-width image",
		Description: "A single edge-to-edge image with an optional caption.",
		Defaults:    Settings{PaddingY: 0, MarginY: 0, MaxWidth: 0, Gutter: 0, Background: BackgroundTransparent},
	},
	{
		Slug:        ImageLeftTextRight,
		DisplayName: "Image left, text right",
		Description: "Image in the left column, flowing text on the right.",
		Defaults:    defaultSettings,
	},
	{
		Slug:        ImageRightTextLeft,
		DisplayName: "Image right, text left",
		Description: "Flowing text on the left, image in the right column.",
		Defaults:    defaultSettings,
	},
	{
		Slug:        TwoImages,
		DisplayName: "Two images",
		Description: "Two images side by side with equal widths.",
		Defaults:    Settings{PaddingY: 32, MarginY: 0, MaxWidth: 1200, Gutter: 16, Background: BackgroundLightGray},
	},
	{
		Slug:        ThreeImages,
		DisplayName: "Three images",
		Description: "A three-image strip, equal widths.",
		Defaults:    defaultSettings,
	},
}

// BySlug returns the archetype for a slug, or nil if the slug is unknown.
func BySlug(slug string) *Archetype {
	for i := range Registry {
		if Registry[i].Slug == slug {
			return &Registry[i]
		}
	}
	return nil
}

// Slugs returns the registry slugs in display order.
func Slugs() []string {
	out := make([]string, len(Registry))
	for i, a := range Registry {
		out[i] = a.Slug
	}
	return out
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import "testing"

func TestRegistryHasFiveArchetypes(t *testing.T) {
	if len(Registry) != 5 {
		t.Fatalf("registry size: got %d, want 5", len(Registry))
	}

	want := map[string]bool{
		FullWidthImage:     true,
		ImageLeftTextRight: true,
		ImageRightTextLeft: true,
		TwoImages:          true,
		ThreeImages:        true,
	}
	for _, a := range Registry {
		if !want[a.Slug] {
			t.Errorf("unexpected archetype slug %q", a.Slug)
		}
		delete(want, a.Slug)
	}
	for slug := range want {
		t.Errorf("missing archetype %q", slug)
	}
}

func TestRegistryDefaultsValidate(t *testing.T) {
	for _, a := range Registry {
		if err := a.Defaults.Validate(); err != nil {
			t.Errorf("%s defaults: %v", a.Slug, err)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{"valid", Settings{PaddingY: 40, MaxWidth: 1200, Gutter: 16, Background: BackgroundWhite}, false},
		{"zero values", Settings{Background: BackgroundTransparent}, false},
		{"negative padding", Settings{PaddingY: -1, Background: BackgroundWhite}, true},
		{"negative gutter", Settings{Gutter: -8, Background: BackgroundWhite}, true},
		{"bad background", Settings{Background: "plaid"}, true},
		{"empty background", Settings{}, true},
	}

	for _, tc := range cases {
		err := tc.s.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestBySlug(t *testing.T) {
	if a := BySlug(TwoImages); a == nil || a.DisplayName != "Two images" {
		t.Errorf("BySlug(two-images): got %+v", a)
	}
	if a := BySlug("four-images"); a != nil {
		t.Errorf("expected nil for unknown slug, got %+v", a)
	}
}

func TestPresetsValidateAreas(t *testing.T) {
	if len(Presets) != len(Registry) {
		t.Fatalf("presets: got %d, want %d", len(Presets), len(Registry))
	}
	for slug, def := range Presets {
		if err := ValidateAreas(def); err != nil {
			t.Errorf("%s: %v", slug, err)
		}
	}
}

func TestValidateAreasRejectsMissingArea(t *testing.T) {
	def := Presets[ImageLeftTextRight]

	// Rebind the text block to an area that exists nowhere.
	blocks := make([]Block, len(def.Blocks))
	copy(blocks, def.Blocks)
	blocks[1] = Block{Text: &TextSlot{Area: "caption", TargetWords: 50, MinWords: 30, MaxWords: 70}}
	def.Blocks = blocks

	if err := ValidateAreas(def); err == nil {
		t.Error("expected error for unreferenced area")
	}
}

func TestValidateAreasRejectsMissingBreakpoint(t *testing.T) {
	def := Presets[TwoImages]

	grids := make(map[Breakpoint]Grid)
	for bp, g := range def.Grids {
		if bp != BreakpointMobile {
			grids[bp] = g
		}
	}
	def.Grids = grids

	if err := ValidateAreas(def); err == nil {
		t.Error("expected error for missing mobile grid")
	}
}

func TestValidateAreasMultiRowGrid(t *testing.T) {
	// An area present only in one row of a multi-row grid still counts.
	def := SectionDef{
		Archetype: "custom",
		Grids: map[Breakpoint]Grid{
			BreakpointDesktop: {GridTemplateColumns: "1fr 1fr", GridTemplateAreas: []string{"img text", "img meta"}},
			BreakpointTablet:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"img", "text", "meta"}},
			BreakpointMobile:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"img", "text", "meta"}},
		},
		Blocks: []Block{
			{Image: &ImageSlot{Area: "img"}},
			{Text: &TextSlot{Area: "text", TargetWords: 80, MinWords: 40, MaxWords: 120}},
			{Text: &TextSlot{Area: "meta", TargetWords: 20, MinWords: 10, MaxWords: 30}},
		},
	}
	if err := ValidateAreas(def); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTextSlotWordBounds(t *testing.T) {
	for slug, def := range Presets {
		for _, blk := range def.Blocks {
			if blk.Text == nil {
				continue
			}
			ts := blk.Text
			if ts.MinWords > ts.TargetWords || ts.TargetWords > ts.MaxWords {
				t.Errorf("%s/%s: word bounds not ordered: min=%d target=%d max=%d",
					slug, ts.Area, ts.MinWords, ts.TargetWords, ts.MaxWords)
			}
		}
	}
}

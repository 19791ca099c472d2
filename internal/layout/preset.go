// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import "fmt"

// Breakpoint names one of the three responsive tiers.
type Breakpoint string

const (
	BreakpointDesktop Breakpoint = "desktop"
	BreakpointTablet  Breakpoint = "tablet"
	BreakpointMobile  Breakpoint = "mobile"
)

// Breakpoints lists all tiers a SectionDef must define geometry for.
var Breakpoints = []Breakpoint{BreakpointDesktop, BreakpointTablet, BreakpointMobile}

// HeightPolicy controls how a section sizes vertically.
type HeightPolicy string

const (
	HeightAuto  HeightPolicy = "auto"  // grow with content
	HeightFixed HeightPolicy = "fixed" // clamp to the tallest image slot
)

// Grid describes the CSS grid geometry for one breakpoint.
// GridTemplateAreas is an ordered list of area-row strings, e.g.
// {"img text", "img text"}.
type Grid struct {
	GridTemplateColumns string
	GridTemplateAreas   []string
	Gap                 int
	HeightPolicy        HeightPolicy
}

// ImageSlot places an image in a named grid area.
type ImageSlot struct {
	Area        string
	AspectRatio string // e.g. "3:2"; empty means natural
	MaxHeight   int    // pixels; 0 means unconstrained
}

// TextSlot places flowing text in a named grid area with a word-count
// policy. The renderer fills the slot aiming for TargetWords and never
// leaves [MinWords, MaxWords]; SnapToSentence trims to a sentence boundary.
type TextSlot struct {
	Area           string
	TargetWords    int
	MinWords       int
	MaxWords       int
	SnapToSentence bool
}

// Block is either an image slot or a text slot (exactly one is set).
type Block struct {
	Image *ImageSlot
	Text  *TextSlot
}

// Area returns the grid area the block is bound to.
func (b Block) Area() string {
	if b.Image != nil {
		return b.Image.Area
	}
	if b.Text != nil {
		return b.Text.Area
	}
	return ""
}

// SectionDef is the design-time preset for one archetype: per-breakpoint
// grid geometry plus the ordered content blocks.
type SectionDef struct {
	Archetype string
	Grids     map[Breakpoint]Grid
	Blocks    []Block
}

// TemplateDef is a design-time stack of section presets.
type TemplateDef struct {
	Name     string
	Sections []SectionDef
}

// ValidateAreas verifies the preset invariant: every area referenced by a
// block appears in every breakpoint's grid areas, and every breakpoint is
// present.
func ValidateAreas(def SectionDef) error {
	for _, bp := range Breakpoints {
		grid, ok := def.Grids[bp]
		if !ok {
			return fmt.Errorf("layout: %s: missing %s grid", def.Archetype, bp)
		}
		areas := areaSet(grid.GridTemplateAreas)
		for _, blk := range def.Blocks {
			a := blk.Area()
			if a == "" {
				return fmt.Errorf("layout: %s: block with empty area", def.Archetype)
			}
			if !areas[a] {
				return fmt.Errorf("layout: %s: area %q not in %s grid areas", def.Archetype, a, bp)
			}
		}
	}
	return nil
}

// areaSet splits area-row strings into a membership set.
func areaSet(rows []string) map[string]bool {
	set := make(map[string]bool)
	for _, row := range rows {
		field := ""
		for _, r := range row + " " {
			if r == ' ' || r == '\t' {
				if field != "" && field != "." {
					set[field] = true
				}
				field = ""
				continue
			}
			field += string(r)
		}
	}
	return set
}

// Presets maps each archetype slug to its flow-layout preset. These are
// static data consumed by the renderer; there is no layout solver here.
var Presets = map[string]SectionDef{
	FullWidthImage: {
		Archetype: FullWidthImage,
		Grids: map[Breakpoint]Grid{
			BreakpointDesktop: {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"img"}, Gap: 0, HeightPolicy: HeightAuto},
			BreakpointTablet:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"img"}, Gap: 0, HeightPolicy: HeightAuto},
			BreakpointMobile:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"img"}, Gap: 0, HeightPolicy: HeightAuto},
		},
		Blocks: []Block{
			{Image: &ImageSlot{Area: "img", AspectRatio: "21:9", MaxHeight: 720}},
		},
	},
	ImageLeftTextRight: {
		Archetype: ImageLeftTextRight,
		Grids: map[Breakpoint]Grid{
			BreakpointDesktop: {GridTemplateColumns: "1fr 1fr", GridTemplateAreas: []string{"img text"}, Gap: 24, HeightPolicy: HeightFixed},
			BreakpointTablet:  {GridTemplateColumns: "1fr 1fr", GridTemplateAreas: []string{"img text"}, Gap: 16, HeightPolicy: HeightFixed},
			BreakpointMobile:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"img", "text"}, Gap: 12, HeightPolicy: HeightAuto},
		},
		Blocks: []Block{
			{Image: &ImageSlot{Area: "img", AspectRatio: "3:2", MaxHeight: 560}},
			{Text: &TextSlot{Area: "text", TargetWords: 120, MinWords: 80, MaxWords: 160, SnapToSentence: true}},
		},
	},
	ImageRightTextLeft: {
		Archetype: ImageRightTextLeft,
		Grids: map[Breakpoint]Grid{
			BreakpointDesktop: {GridTemplateColumns: "1fr 1fr", GridTemplateAreas: []string{"text img"}, Gap: 24, HeightPolicy: HeightFixed},
			BreakpointTablet:  {GridTemplateColumns: "1fr 1fr", GridTemplateAreas: []string{"text img"}, Gap: 16, HeightPolicy: HeightFixed},
			BreakpointMobile:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"img", "text"}, Gap: 12, HeightPolicy: HeightAuto},
		},
		Blocks: []Block{
			{Text: &TextSlot{Area: "text", TargetWords: 120, MinWords: 80, MaxWords: 160, SnapToSentence: true}},
			{Image: &ImageSlot{Area: "img", AspectRatio: "3:2", MaxHeight: 560}},
		},
	},
	TwoImages: {
		Archetype: TwoImages,
		Grids: map[Breakpoint]Grid{
			BreakpointDesktop: {GridTemplateColumns: "1fr 1fr", GridTemplateAreas: []string{"a b"}, Gap: 16, HeightPolicy: HeightFixed},
			BreakpointTablet:  {GridTemplateColumns: "1fr 1fr", GridTemplateAreas: []string{"a b"}, Gap: 12, HeightPolicy: HeightFixed},
			BreakpointMobile:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"a", "b"}, Gap: 12, HeightPolicy: HeightAuto},
		},
		Blocks: []Block{
			{Image: &ImageSlot{Area: "a", AspectRatio: "4:3", MaxHeight: 480}},
			{Image: &ImageSlot{Area: "b", AspectRatio: "4:3", MaxHeight: 480}},
		},
	},
	ThreeImages: {
		Archetype: ThreeImages,
		Grids: map[Breakpoint]Grid{
			BreakpointDesktop: {GridTemplateColumns: "1fr 1fr 1fr", GridTemplateAreas: []string{"a b c"}, Gap: 16, HeightPolicy: HeightFixed},
			BreakpointTablet:  {GridTemplateColumns: "1fr 1fr 1fr", GridTemplateAreas: []string{"a b c"}, Gap: 12, HeightPolicy: HeightFixed},
			BreakpointMobile:  {GridTemplateColumns: "1fr", GridTemplateAreas: []string{"a", "b", "c"}, Gap: 12, HeightPolicy: HeightAuto},
		},
		Blocks: []Block{
			{Image: &ImageSlot{Area: "a", AspectRatio: "1:1", MaxHeight: 400}},
			{Image: &ImageSlot{Area: "b", AspectRatio: "1:1", MaxHeight: 400}},
			{Image: &ImageSlot{Area: "c", AspectRatio: "1:1", MaxHeight: 400}},
		},
	},
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestMediaIsImage(t *testing.T) {
	img := &Media{ContentType: "image/webp"}
	if !img.IsImage() {
		t.Error("image/webp should be an image")
	}

	pdf := &Media{ContentType: "application/pdf"}
	if pdf.IsImage() {
		t.Error("application/pdf should not be an image")
	}
}

func TestMediaNeedsBackfill(t *testing.T) {
	w, h := 1200, 800
	hash := "LEHV6nWB2yk8pyo0adR*.7kCMdnj"

	complete := &Media{ContentType: "image/webp", Width: &w, Height: &h, BlurHash: &hash}
	if complete.NeedsBackfill() {
		t.Error("row with dimensions and blurhash should not need backfill")
	}

	missing := &Media{ContentType: "image/webp", Width: &w, Height: &h}
	if !missing.NeedsBackfill() {
		t.Error("row without blurhash should need backfill")
	}

	pdf := &Media{ContentType: "application/pdf"}
	if pdf.NeedsBackfill() {
		t.Error("non-images are never backfilled")
	}
}

func TestMediaHumanSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tc := range cases {
		m := &Media{SizeBytes: tc.bytes}
		if got := m.HumanSize(); got != tc.want {
			t.Errorf("HumanSize(%d): got %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

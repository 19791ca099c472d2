// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imaging

import (
	"errors"
	"testing"
)

// fakeEncoder simulates an encoder whose output grows linearly with quality
// and counts how many times it is called.
type fakeEncoder struct {
	bytesPerQuality int
	calls           int
	qualities       []int
	err             error
}

func (f *fakeEncoder) encode(q int) ([]byte, error) {
	f.calls++
	f.qualities = append(f.qualities, q)
	if f.err != nil {
		return nil, f.err
	}
	return make([]byte, q*f.bytesPerQuality), nil
}

func TestSearchUnderBudgetFindsBestFit(t *testing.T) {
	// 1000 bytes per quality point, budget 60000 -> quality 60 fits, 61 doesn't.
	enc := &fakeEncoder{bytesPerQuality: 1000}
	data, q, err := searchUnderBudget(enc.encode, 60_000)
	if err != nil {
		t.Fatalf("searchUnderBudget: %v", err)
	}
	if len(data) > 60_000 {
		t.Errorf("result over budget: %d bytes", len(data))
	}
	if q < 55 || q > 60 {
		t.Errorf("quality %d outside expected convergence range [55,60]", q)
	}
	if enc.calls > searchSteps {
		t.Errorf("encoder called %d times, want at most %d", enc.calls, searchSteps)
	}
}

func TestSearchUnderBudgetNeverReturnsOversizeWhenAProbeFit(t *testing.T) {
	for _, budget := range []int{15_000, 40_000, 80_000, 95_000} {
		enc := &fakeEncoder{bytesPerQuality: 1000}
		data, _, err := searchUnderBudget(enc.encode, budget)
		if err != nil {
			t.Fatalf("budget %d: %v", budget, err)
		}
		if len(data) > budget {
			t.Errorf("budget %d: got %d bytes over budget", budget, len(data))
		}
	}
}

func TestSearchUnderBudgetFallsBackWhenNothingFits(t *testing.T) {
	// Even the minimum quality output exceeds the budget.
	enc := &fakeEncoder{bytesPerQuality: 1000}
	data, q, err := searchUnderBudget(enc.encode, 5_000)
	if err != nil {
		t.Fatalf("searchUnderBudget: %v", err)
	}
	if q != fallbackQuality {
		t.Errorf("quality: got %d, want fallback %d", q, fallbackQuality)
	}
	if len(data) != fallbackQuality*1000 {
		t.Errorf("fallback blob: got %d bytes, want %d", len(data), fallbackQuality*1000)
	}
	// searchSteps probes plus the one fallback encode.
	if enc.calls > searchSteps+1 {
		t.Errorf("encoder called %d times, want at most %d", enc.calls, searchSteps+1)
	}
}

func TestSearchUnderBudgetBoundsProbeCount(t *testing.T) {
	// A huge budget: every probe fits and the search walks up the range.
	enc := &fakeEncoder{bytesPerQuality: 1}
	_, q, err := searchUnderBudget(enc.encode, 1_000_000)
	if err != nil {
		t.Fatalf("searchUnderBudget: %v", err)
	}
	if enc.calls > searchSteps {
		t.Errorf("encoder called %d times, want at most %d", enc.calls, searchSteps)
	}
	if q < 90 || q > maxQuality {
		t.Errorf("quality %d, expected near the top of the range", q)
	}
}

func TestSearchUnderBudgetPropagatesEncoderError(t *testing.T) {
	wantErr := errors.New("encoder exploded")
	enc := &fakeEncoder{bytesPerQuality: 1000, err: wantErr}
	_, _, err := searchUnderBudget(enc.encode, 60_000)
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want encoder error", err)
	}
}

func TestSearchUnderBudgetProbesMidpointFirst(t *testing.T) {
	enc := &fakeEncoder{bytesPerQuality: 1000}
	searchUnderBudget(enc.encode, 60_000)
	if len(enc.qualities) == 0 {
		t.Fatal("no probes recorded")
	}
	if first := enc.qualities[0]; first != (minQuality+maxQuality)/2 {
		t.Errorf("first probe at %d, want midpoint %d", first, (minQuality+maxQuality)/2)
	}
}

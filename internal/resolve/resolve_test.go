// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FilenameBeatsOCR(t *testing.T) {
	r := NewResolver()
	r.AddValue("date", "2024-10-17", SourceFilename, 1.0, "filename", "", nil)
	r.AddValue("date", "2024-10-18", SourceOCR, 0.95, "roi", "DATE 2024-10-18", nil)

	resolved, ok := r.Resolve("date")
	require.True(t, ok)
	assert.Equal(t, "2024-10-17", resolved.Value)
	assert.Equal(t, SourceFilename, resolved.Source)
	assert.Equal(t, LevelFilename, resolved.Precedence)
	require.Len(t, resolved.Alternatives, 1)
	assert.Equal(t, "2024-10-18", resolved.Alternatives[0].Value)
}

func TestResolve_ManualNeverDisplaced(t *testing.T) {
	r := NewResolver()
	r.AddValue("date", "2024-10-15", SourceManual, 1.0, "manual", "", nil)
	r.AddValue("date", "2024-10-17", SourceFilename, 1.0, "filename", "", nil)
	r.AddValue("date", "2024-10-18", SourceOCR, 0.99, "roi", "", nil)

	resolved, ok := r.Resolve("date")
	require.True(t, ok)
	assert.Equal(t, "2024-10-15", resolved.Value)
	assert.Equal(t, SourceManual, resolved.Source)
	assert.Equal(t, LevelManual, resolved.Precedence)
	assert.Len(t, resolved.Alternatives, 2)
}

func TestResolve_TieBreaksByInsertionOrder(t *testing.T) {
	r := NewResolver()
	r.AddValue("material", "Concrete", SourceOCR, 0.95, "roi", "", nil)
	r.AddValue("material", "Asphalt", SourceOCR, 0.99, "below_label", "", nil)

	// Both are OCR_HIGH; the first inserted wins regardless of raw score.
	resolved, ok := r.Resolve("material")
	require.True(t, ok)
	assert.Equal(t, "Concrete", resolved.Value)
}

func TestResolve_EmptyValuesDropped(t *testing.T) {
	r := NewResolver()
	r.AddValue("vendor_name", "", SourceFilename, 1.0, "filename", "", nil)

	_, ok := r.Resolve("vendor_name")
	assert.False(t, ok, "empty value must never enter resolution")
	assert.Empty(t, r.FieldNames())
}

func TestResolve_OCRConfidenceBands(t *testing.T) {
	cases := []struct {
		confidence float64
		level      Level
	}{
		{0.95, LevelOCRHigh},
		{0.90, LevelOCRHigh},
		{0.89, LevelOCRMedium},
		{0.70, LevelOCRMedium},
		{0.69, LevelOCRLow},
		{0.10, LevelOCRLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelFor(SourceOCR, tc.confidence),
			"confidence %.2f", tc.confidence)
	}
}

func TestLevelFor_UnknownSource(t *testing.T) {
	assert.Equal(t, LevelOCRLow, LevelFor(Source("carrier-pigeon"), 1.0))
}

func TestResolve_OCRHighBeatsDefault(t *testing.T) {
	r := NewResolver()
	r.AddValue("material", "Mixed C&D", SourceDefault, 1.0, "default", "", nil)
	r.AddValue("material", "Concrete", SourceOCR, 0.95, "roi", "", nil)

	resolved, ok := r.Resolve("material")
	require.True(t, ok)
	assert.Equal(t, "Concrete", resolved.Value)
	assert.Equal(t, LevelOCRHigh, resolved.Precedence)
}

func TestResolveAll_Deterministic(t *testing.T) {
	build := func() *Resolver {
		r := NewResolver()
		r.AddValue("date", "2024-10-17", SourceFilename, 1.0, "filename", "", nil)
		r.AddValue("date", "2024-10-18", SourceOCR, 0.95, "roi", "", nil)
		r.AddValue("ticket_number", "LDI102345", SourceOCR, 0.8, "roi", "", nil)
		r.AddValue("quantity", "12.5", SourceOCR, 0.5, "proximity", "", nil)
		return r
	}

	first := build().ResolveAll()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, build().ResolveAll())
	}
	require.Len(t, first, 3)
	assert.Equal(t, "2024-10-17", first["date"].Value)
}

func TestResolve_AlternativesSortedHighestFirst(t *testing.T) {
	r := NewResolver()
	r.AddValue("date", "a", SourceDefault, 1.0, "default", "", nil)
	r.AddValue("date", "b", SourceFilename, 1.0, "filename", "", nil)
	r.AddValue("date", "c", SourceOCR, 0.95, "roi", "", nil)

	resolved, ok := r.Resolve("date")
	require.True(t, ok)
	assert.Equal(t, "b", resolved.Value)
	require.Len(t, resolved.Alternatives, 2)
	assert.Equal(t, "c", resolved.Alternatives[0].Value, "OCR_HIGH before DEFAULT")
	assert.Equal(t, "a", resolved.Alternatives[1].Value)
}

func TestNeedsReview(t *testing.T) {
	low := ResolvedField{Precedence: LevelOCRLow, Confidence: 0.3}
	assert.True(t, low.NeedsReview())

	ok := ResolvedField{Precedence: LevelOCRHigh, Confidence: 0.95}
	assert.False(t, ok.NeedsReview())
}

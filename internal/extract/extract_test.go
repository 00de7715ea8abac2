// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line builds a TextLine occupying a thin horizontal band at the given
// row, where each row is 0.05 page heights tall.
func line(text string, row int) Line {
	top := float64(row) * 0.05
	return TextLine{
		Content: text,
		Bounds: BBox{
			Min: Point{X: 0.1, Y: top},
			Max: Point{X: 0.1 + 0.02*float64(len(text)), Y: top + 0.04},
		},
	}
}

func page(texts ...string) Page {
	lines := make([]Line, len(texts))
	for i, t := range texts {
		lines[i] = line(t, i)
	}
	return NewSimplePage(lines)
}

func TestROIRule_FiltersLabelAndMatches(t *testing.T) {
	// The first ROI line is the label itself and must be discarded; the
	// second carries the value.
	p := page("TICKET# 12345", "A12345")
	rule := ROIRule{
		FieldName: "ticket_number",
		Region:    BBox{Min: Point{0, 0}, Max: Point{1, 1}},
		Labels:    []string{"TICKET#"},
		Pattern:   regexp.MustCompile(`[A-Z]?(\d{5})`),
	}

	c, ok := rule.Extract(p)
	require.True(t, ok)
	assert.Equal(t, "12345", c.Value)
	assert.Equal(t, MethodROI, c.Method)
	assert.Equal(t, "A12345", c.SourceText)
	require.NotNil(t, c.Geometry)
}

func TestROIRule_RegionExcludes(t *testing.T) {
	p := page("A12345")
	rule := ROIRule{
		FieldName: "ticket_number",
		// Region covering only the bottom half; row 0 sits at the top.
		Region:  BBox{Min: Point{0, 0.5}, Max: Point{1, 1}},
		Pattern: regexp.MustCompile(`\d{5}`),
	}

	_, ok := rule.Extract(p)
	assert.False(t, ok)
}

func TestROIRule_NoPatternLowConfidence(t *testing.T) {
	p := page("Lindamood Demolition")
	rule := ROIRule{
		FieldName: "vendor_name",
		Region:    BBox{Min: Point{0, 0}, Max: Point{1, 1}},
	}

	c, ok := rule.Extract(p)
	require.True(t, ok)
	assert.Equal(t, "Lindamood Demolition", c.Value)
	assert.InDelta(t, 0.3, c.Confidence, 1e-9)
}

func TestMatchConfidence(t *testing.T) {
	// Full coverage, no validation pattern: the 0.8 base survives intact.
	assert.InDelta(t, 0.8, matchConfidence("12345", "12345", nil), 1e-9)

	// Validation confirms: base rises to 0.95.
	val := regexp.MustCompile(`^\d{5}$`)
	assert.InDelta(t, 0.95, matchConfidence("12345", "12345", val), 1e-9)

	// Validation contradicts: base drops to 0.4.
	assert.InDelta(t, 0.4, matchConfidence("123", "123", val), 1e-9)

	// Coverage scaling: value half the length of its source text.
	got := matchConfidence("12345", "1234567890", nil)
	assert.InDelta(t, 0.8*(0.5+0.5*0.5), got, 1e-9)
}

func TestBelowLabelRule(t *testing.T) {
	p := page("Manifest Number", "14-22871", "some footer")
	rule := BelowLabelRule{
		FieldName: "manifest_number",
		Labels:    []string{"MANIFEST NUMBER"},
		Pattern:   regexp.MustCompile(`[\d-]{6,}`),
	}

	c, ok := rule.Extract(p)
	require.True(t, ok)
	assert.Equal(t, "14-22871", c.Value)
	assert.Equal(t, MethodBelowLabel, c.Method)
}

func TestBelowLabelRule_BestScoringLineWins(t *testing.T) {
	// Two label-ish lines; the later one matches better and its successor
	// must be chosen.
	p := page("Manifest (see reverse)", "WRONG-1", "Manifest Number", "14-22871")
	rule := BelowLabelRule{
		FieldName: "manifest_number",
		Labels:    []string{"Manifest Number"},
	}

	c, ok := rule.Extract(p)
	require.True(t, ok)
	assert.Equal(t, "14-22871", c.Value)
}

func TestBelowLabelRule_NoLabel(t *testing.T) {
	p := page("totally unrelated", "content")
	rule := BelowLabelRule{FieldName: "manifest_number", Labels: []string{"Manifest Number"}}

	_, ok := rule.Extract(p)
	assert.False(t, ok)
}

func TestLabelRightRule(t *testing.T) {
	p := page("Material: Concrete Debris")
	rule := LabelRightRule{
		FieldName: "material",
		Labels:    []string{"Material"},
	}

	c, ok := rule.Extract(p)
	require.True(t, ok)
	assert.Equal(t, "Concrete Debris", c.Value)
	assert.Equal(t, MethodLabelRight, c.Method)
}

func TestLabelRightRule_FuzzyLabel(t *testing.T) {
	// OCR mangled the label; the sliding window still finds it.
	p := page("Materlal: Concrete Debris")
	rule := LabelRightRule{
		FieldName: "material",
		Labels:    []string{"Material"},
	}

	c, ok := rule.Extract(p)
	require.True(t, ok)
	assert.Equal(t, "Concrete Debris", c.Value)
}

func TestLabelRightRule_WithPattern(t *testing.T) {
	p := page("Qty: 12.5 tons")
	rule := LabelRightRule{
		FieldName: "quantity",
		Labels:    []string{"Qty"},
		Pattern:   regexp.MustCompile(`(\d+(?:\.\d+)?)`),
	}

	c, ok := rule.Extract(p)
	require.True(t, ok)
	assert.Equal(t, "12.5", c.Value)
}

func TestProximityRule(t *testing.T) {
	lines := []Line{
		TextLine{Content: "Ticket No", Bounds: BBox{Min: Point{0.1, 0.1}, Max: Point{0.2, 0.12}}},
		TextLine{Content: "LDI102345", Bounds: BBox{Min: Point{0.22, 0.1}, Max: Point{0.32, 0.12}}},
		TextLine{Content: "999999", Bounds: BBox{Min: Point{0.8, 0.9}, Max: Point{0.9, 0.92}}},
	}
	rule := ProximityRule{
		FieldName: "ticket_number",
		Labels:    []string{"Ticket No"},
		Pattern:   regexp.MustCompile(`[A-Z]{3}\d{6}|\d{6}`),
	}

	c, ok := rule.Extract(NewSimplePage(lines))
	require.True(t, ok)
	assert.Equal(t, "LDI102345", c.Value, "nearest element should win over the distant one")
	assert.Equal(t, MethodProximity, c.Method)
	assert.Less(t, c.Confidence, 0.8, "distance penalty must apply")
}

func TestProximityRule_NothingInRange(t *testing.T) {
	lines := []Line{
		TextLine{Content: "Ticket No", Bounds: BBox{Min: Point{0.1, 0.1}, Max: Point{0.2, 0.12}}},
		TextLine{Content: "123456", Bounds: BBox{Min: Point{0.9, 0.95}, Max: Point{0.99, 0.97}}},
	}
	rule := ProximityRule{
		FieldName:   "ticket_number",
		Labels:      []string{"Ticket No"},
		Pattern:     regexp.MustCompile(`\d{6}`),
		MaxDistance: 0.1,
	}

	_, ok := rule.Extract(NewSimplePage(lines))
	assert.False(t, ok)
}

func TestExtractor_FallbackAnnotatesMethod(t *testing.T) {
	// ROI misses entirely (wrong region); below-label succeeds.
	p := page("Manifest Number", "14-22871")
	rule := FieldRule{
		Primary: ROIRule{
			FieldName: "manifest_number",
			Region:    BBox{Min: Point{0.9, 0.9}, Max: Point{1, 1}},
			Pattern:   regexp.MustCompile(`[\d-]{6,}`),
		},
		Fallback: BelowLabelRule{
			FieldName: "manifest_number",
			Labels:    []string{"Manifest Number"},
			Pattern:   regexp.MustCompile(`[\d-]{6,}`),
		},
	}

	e := NewExtractor(nil)
	c, ok := e.ExtractField(p, rule, "t1.pdf")
	require.True(t, ok)
	assert.Equal(t, "14-22871", c.Value)
	assert.Equal(t, "roi_fallback_to_below_label", c.Method)
}

func TestExtractor_NoFallbackAboveThreshold(t *testing.T) {
	p := page("A12345")
	rule := FieldRule{
		Primary: ROIRule{
			FieldName:  "ticket_number",
			Region:     BBox{Min: Point{0, 0}, Max: Point{1, 1}},
			Pattern:    regexp.MustCompile(`[A-Z]\d{5}`),
			Validation: regexp.MustCompile(`^[A-Z]\d{5}$`),
		},
		Fallback: BelowLabelRule{
			FieldName: "ticket_number",
			Labels:    []string{"Ticket"},
		},
	}

	e := NewExtractor(nil)
	c, ok := e.ExtractField(p, rule, "t1.pdf")
	require.True(t, ok)
	assert.Equal(t, MethodROI, c.Method, "confident primary must not fall back")
	assert.GreaterOrEqual(t, c.Confidence, 0.9)
}

func TestExtractAll(t *testing.T) {
	p := page("TICKET# 12345", "A12345", "Material: Concrete")
	rules := []FieldRule{
		{Primary: ROIRule{
			FieldName: "ticket_number",
			Region:    BBox{Min: Point{0, 0}, Max: Point{1, 1}},
			Labels:    []string{"TICKET#"},
			Pattern:   regexp.MustCompile(`[A-Z]?(\d{5})`),
		}},
		{Primary: LabelRightRule{
			FieldName: "material",
			Labels:    []string{"Material"},
		}},
		{Primary: BelowLabelRule{
			FieldName: "manifest_number",
			Labels:    []string{"Manifest"},
		}},
	}

	e := NewExtractor(nil)
	got := e.ExtractAll(p, rules, "t1.pdf")
	require.Len(t, got, 2, "the manifest rule finds nothing and is absent")

	values := map[string]string{}
	for _, c := range got {
		values[c.FieldName] = c.Value
	}
	assert.Equal(t, "12345", values["ticket_number"])
	assert.Equal(t, "Concrete", values["material"])
}

func TestPageLines_ReadingOrder(t *testing.T) {
	p := SimplePage{Content: []Block{
		TextBlock{Items: []Line{line("first", 0), line("second", 1)}},
		TextBlock{Items: []Line{line("third", 2)}},
	}}

	var got []string
	for _, l := range PageLines(p) {
		got = append(got, l.Text())
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)
	assert.True(t, strings.HasPrefix(got[0], "f"))
}

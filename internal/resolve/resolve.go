// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolve reconciles candidate field values from multiple
// provenance sources into one canonical value per field.
package resolve

import (
	"fmt"
	"os"
	"sort"
)

// Source identifies where a candidate value came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceFilename Source = "filename"
	SourceFolder   Source = "folder"
	SourceOCR      Source = "ocr"
	SourceDefault  Source = "default"
)

// Level ranks candidate provenance. Higher wins. OCR splits into three
// bands by confidence so a clean OCR read beats a configured default but
// never beats path metadata or a human.
type Level int

const (
	LevelManual    Level = 100
	LevelFilename  Level = 90
	LevelFolder    Level = 80
	LevelOCRHigh   Level = 70
	LevelOCRMedium Level = 60
	LevelOCRLow    Level = 50
	LevelDefault   Level = 10
)

// String returns the display name of a level.
func (l Level) String() string {
	switch l {
	case LevelManual:
		return "MANUAL"
	case LevelFilename:
		return "FILENAME"
	case LevelFolder:
		return "FOLDER"
	case LevelOCRHigh:
		return "OCR_HIGH"
	case LevelOCRMedium:
		return "OCR_MEDIUM"
	case LevelOCRLow:
		return "OCR_LOW"
	case LevelDefault:
		return "DEFAULT"
	}
	return fmt.Sprintf("LEVEL_%d", int(l))
}

// LevelFor derives the precedence level from (source, confidence).
// Unrecognized sources rank as OCR_LOW with a warning rather than failing
// the document.
func LevelFor(source Source, confidence float64) Level {
	switch source {
	case SourceManual:
		return LevelManual
	case SourceFilename:
		return LevelFilename
	case SourceFolder:
		return LevelFolder
	case SourceOCR:
		switch {
		case confidence >= 0.90:
			return LevelOCRHigh
		case confidence >= 0.70:
			return LevelOCRMedium
		default:
			return LevelOCRLow
		}
	case SourceDefault:
		return LevelDefault
	}

	fmt.Fprintf(os.Stderr, "Warning: unrecognized candidate source %q, ranking as OCR_LOW\n", source)
	return LevelOCRLow
}

// Geometry is a bounding box in normalized [0,1] page coordinates:
// left, top, right, bottom.
type Geometry [4]float64

// Candidate is one proposed value for a field from one extraction attempt.
// Immutable once created.
type Candidate struct {
	FieldName  string
	Value      string
	Source     Source
	Confidence float64
	Method     string
	SourceText string
	Geometry   *Geometry
}

// Level returns the candidate's precedence level.
func (c Candidate) Level() Level {
	return LevelFor(c.Source, c.Confidence)
}

// ResolvedField is the externally visible result for one field: the
// winning value plus the losing candidates, retained for audit.
type ResolvedField struct {
	FieldName    string
	Value        string
	Source       Source
	Confidence   float64
	Precedence   Level
	Alternatives []Candidate
}

// ReviewConfidence is the floor under which a resolved OCR value should be
// routed to human review rather than trusted.
const ReviewConfidence = 0.4

// NeedsReview reports whether the resolution is weak enough that a human
// should look at it.
func (r ResolvedField) NeedsReview() bool {
	return r.Precedence <= LevelOCRLow && r.Confidence < ReviewConfidence
}

// Resolver collects candidates per field and picks winners. One instance
// per document; not safe for concurrent use.
type Resolver struct {
	candidates map[string][]Candidate
	manual     map[string]Candidate
	order      []string
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		candidates: make(map[string][]Candidate),
		manual:     make(map[string]Candidate),
	}
}

// AddValue records a candidate value for a field. Empty values are dropped
// so absence never competes with presence. A manual source becomes the
// field's override: once set, no later candidate of any precedence can
// displace it.
func (r *Resolver) AddValue(fieldName, value string, source Source, confidence float64, method, sourceText string, geometry *Geometry) {
	if value == "" {
		return
	}

	c := Candidate{
		FieldName:  fieldName,
		Value:      value,
		Source:     source,
		Confidence: confidence,
		Method:     method,
		SourceText: sourceText,
		Geometry:   geometry,
	}

	if source == SourceManual {
		if _, exists := r.manual[fieldName]; !exists {
			r.trackField(fieldName)
			r.manual[fieldName] = c
		}
		return
	}

	r.trackField(fieldName)
	r.candidates[fieldName] = append(r.candidates[fieldName], c)
}

// AddCandidate records a fully built candidate.
func (r *Resolver) AddCandidate(c Candidate) {
	r.AddValue(c.FieldName, c.Value, c.Source, c.Confidence, c.Method, c.SourceText, c.Geometry)
}

func (r *Resolver) trackField(fieldName string) {
	if _, seen := r.candidates[fieldName]; seen {
		return
	}
	if _, seen := r.manual[fieldName]; seen {
		return
	}
	r.order = append(r.order, fieldName)
}

// Resolve picks the winning candidate for a field. A manual override wins
// unconditionally. Otherwise the highest precedence level wins, with ties
// broken by insertion order (first added wins) so resolution is
// reproducible for identical candidate sets. Returns false when the field
// has no candidates.
func (r *Resolver) Resolve(fieldName string) (ResolvedField, bool) {
	if m, ok := r.manual[fieldName]; ok {
		return ResolvedField{
			FieldName:    fieldName,
			Value:        m.Value,
			Source:       SourceManual,
			Confidence:   m.Confidence,
			Precedence:   LevelManual,
			Alternatives: sortedByLevel(r.candidates[fieldName]),
		}, true
	}

	cands := r.candidates[fieldName]
	if len(cands) == 0 {
		return ResolvedField{}, false
	}

	winner := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Level() > cands[winner].Level() {
			winner = i
		}
	}

	alternatives := make([]Candidate, 0, len(cands)-1)
	for i, c := range cands {
		if i != winner {
			alternatives = append(alternatives, c)
		}
	}

	w := cands[winner]
	return ResolvedField{
		FieldName:    fieldName,
		Value:        w.Value,
		Source:       w.Source,
		Confidence:   w.Confidence,
		Precedence:   w.Level(),
		Alternatives: sortedByLevel(alternatives),
	}, true
}

// ResolveAll resolves every field seen across all recorded candidates and
// manual overrides, in first-seen order.
func (r *Resolver) ResolveAll() map[string]ResolvedField {
	out := make(map[string]ResolvedField, len(r.order))
	for _, field := range r.order {
		if resolved, ok := r.Resolve(field); ok {
			out[field] = resolved
		}
	}
	return out
}

// FieldNames returns the fields seen, in first-seen order.
func (r *Resolver) FieldNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// sortedByLevel orders alternatives highest precedence first, preserving
// insertion order within a level.
func sortedByLevel(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Level() > out[j].Level()
	})
	return out
}

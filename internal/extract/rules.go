// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"regexp"
	"strings"

	"ticket-resolve/internal/fuzzy"
	"ticket-resolve/internal/resolve"
)

// Extraction method tags.
const (
	MethodROI        = "roi"
	MethodBelowLabel = "below_label"
	MethodLabelRight = "label_right"
	MethodProximity  = "proximity"
)

// Label similarity thresholds per method.
const (
	roiLabelCutoff       = 80 // discard ROI lines this similar to a label
	labelMatchCutoff     = 70 // below-label / label-right line match
	proximityLabelCutoff = 60 // proximity label-like elements
)

// noRegexConfidence is the confidence assigned when a rule has no pattern
// and returns the first surviving line as-is.
const noRegexConfidence = 0.3

// DefaultMaxDistance bounds proximity search in normalized coordinates.
const DefaultMaxDistance = 0.25

// Rule is one extraction method bound to one field. Each variant returns
// a candidate and true on success, or false when the page yields nothing.
type Rule interface {
	Method() string
	Extract(p Page) (resolve.Candidate, bool)
}

// ROIRule collects text inside a fixed region of interest.
type ROIRule struct {
	FieldName  string
	Region     BBox
	Labels     []string
	Pattern    *regexp.Regexp
	Validation *regexp.Regexp
}

func (r ROIRule) Method() string { return MethodROI }

// Extract gathers lines fully contained in the region, discards lines that
// look like the configured labels, and applies the pattern to the rest in
// document order. Without a pattern the first surviving line is returned
// at low confidence.
func (r ROIRule) Extract(p Page) (resolve.Candidate, bool) {
	var survivors []Line
	for _, line := range PageLines(p) {
		if !r.Region.Contains(line.Box()) {
			continue
		}
		if matchesAnyLabel(line.Text(), r.Labels, roiLabelCutoff) {
			continue
		}
		survivors = append(survivors, line)
	}

	if r.Pattern == nil {
		for _, line := range survivors {
			text := strings.TrimSpace(line.Text())
			if text == "" {
				continue
			}
			return r.candidate(text, line.Text(), noRegexConfidence, line.Box()), true
		}
		return resolve.Candidate{}, false
	}

	for _, line := range survivors {
		if value, ok := applyPattern(r.Pattern, line.Text()); ok {
			conf := matchConfidence(value, line.Text(), r.Validation)
			return r.candidate(value, line.Text(), conf, line.Box()), true
		}
	}
	return resolve.Candidate{}, false
}

func (r ROIRule) candidate(value, sourceText string, conf float64, box BBox) resolve.Candidate {
	return buildCandidate(r.FieldName, MethodROI, value, sourceText, conf, box)
}

// BelowLabelRule returns the line directly below the best label match.
type BelowLabelRule struct {
	FieldName  string
	Labels     []string
	Pattern    *regexp.Regexp
	Validation *regexp.Regexp
}

func (r BelowLabelRule) Method() string { return MethodBelowLabel }

// Extract finds the line that best matches a label (best score wins, not
// first over threshold) and extracts from the following line. Confidence
// scales with label-match quality.
func (r BelowLabelRule) Extract(p Page) (resolve.Candidate, bool) {
	lines := PageLines(p)

	bestIdx := -1
	bestScore := labelMatchCutoff // strictly greater required
	for i, line := range lines {
		score := labelScore(line.Text(), r.Labels)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestIdx+1 >= len(lines) {
		return resolve.Candidate{}, false
	}

	target := lines[bestIdx+1]
	value, conf, ok := valueFromText(target.Text(), r.Pattern, r.Validation)
	if !ok {
		return resolve.Candidate{}, false
	}
	conf *= float64(bestScore) / 100
	return buildCandidate(r.FieldName, MethodBelowLabel, value, target.Text(), conf, target.Box()), true
}

// LabelRightRule returns the text to the right of the label on the same
// line.
type LabelRightRule struct {
	FieldName  string
	Labels     []string
	Pattern    *regexp.Regexp
	Validation *regexp.Regexp
}

func (r LabelRightRule) Method() string { return MethodLabelRight }

// Extract finds a line matching a label, splits it at the best-matching
// substring position (exact match preferred, else a sliding fuzzy window),
// and extracts from the remainder.
func (r LabelRightRule) Extract(p Page) (resolve.Candidate, bool) {
	for _, line := range PageLines(p) {
		text := line.Text()

		var after string
		found := false
		for _, label := range r.Labels {
			m := fuzzy.BestWindow(label, text)
			if m.Start < 0 || m.Score < labelMatchCutoff {
				continue
			}
			runes := []rune(text)
			end := m.Start + m.Length
			if end > len(runes) {
				end = len(runes)
			}
			after = strings.TrimSpace(strings.TrimLeft(string(runes[end:]), ":#- \t"))
			found = true
			break
		}
		if !found || after == "" {
			continue
		}

		value, conf, ok := valueFromText(after, r.Pattern, r.Validation)
		if !ok {
			continue
		}
		return buildCandidate(r.FieldName, MethodLabelRight, value, text, conf, line.Box()), true
	}
	return resolve.Candidate{}, false
}

// ProximityRule searches text elements nearest to any label occurrence.
type ProximityRule struct {
	FieldName  string
	Labels     []string
	Pattern    *regexp.Regexp
	Validation *regexp.Regexp
	// MaxDistance bounds the search radius in normalized coordinates;
	// zero selects DefaultMaxDistance.
	MaxDistance float64
}

func (r ProximityRule) Method() string { return MethodProximity }

// Extract locates label-like elements, measures the distance from every
// other element to its nearest label, and applies the pattern
// nearest-first. Confidence is penalized proportionally to distance.
func (r ProximityRule) Extract(p Page) (resolve.Candidate, bool) {
	maxDist := r.MaxDistance
	if maxDist <= 0 {
		maxDist = DefaultMaxDistance
	}

	lines := PageLines(p)

	var labelCenters []Point
	labelIdx := make(map[int]bool)
	for i, line := range lines {
		if isLabelLike(line.Text(), r.Labels) {
			labelCenters = append(labelCenters, line.Box().Center())
			labelIdx[i] = true
		}
	}
	if len(labelCenters) == 0 {
		return resolve.Candidate{}, false
	}

	type scored struct {
		line Line
		dist float64
	}
	var near []scored
	for i, line := range lines {
		if labelIdx[i] {
			continue
		}
		d := nearestDistance(line.Box().Center(), labelCenters)
		if d <= maxDist {
			near = append(near, scored{line, d})
		}
	}
	// Nearest-first, stable for equal distances.
	for i := 1; i < len(near); i++ {
		for j := i; j > 0 && near[j].dist < near[j-1].dist; j-- {
			near[j], near[j-1] = near[j-1], near[j]
		}
	}

	for _, s := range near {
		value, conf, ok := valueFromText(s.line.Text(), r.Pattern, r.Validation)
		if !ok {
			continue
		}
		conf *= 1 - s.dist/maxDist
		return buildCandidate(r.FieldName, MethodProximity, value, s.line.Text(), conf, s.line.Box()), true
	}
	return resolve.Candidate{}, false
}

// matchConfidence is the confidence for a pattern-extracted value:
// base 0.8, raised to 0.95 when the validation pattern confirms the value
// and dropped to 0.4 when it contradicts it, then scaled toward tight
// matches that cover most of their source text.
func matchConfidence(value, sourceText string, validation *regexp.Regexp) float64 {
	conf := 0.8
	if validation != nil {
		if validation.MatchString(value) {
			conf = 0.95
		} else {
			conf = 0.4
		}
	}

	coverage := 1.0
	if len(sourceText) > 0 {
		coverage = float64(len(value)) / float64(len(sourceText))
		if coverage > 1 {
			coverage = 1
		}
	}
	return conf * (0.5 + 0.5*coverage)
}

// valueFromText extracts a value from free text: pattern capture when a
// pattern is configured, the trimmed text at low confidence otherwise.
func valueFromText(text string, pattern, validation *regexp.Regexp) (string, float64, bool) {
	if pattern == nil {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return "", 0, false
		}
		return trimmed, noRegexConfidence, true
	}

	value, ok := applyPattern(pattern, text)
	if !ok {
		return "", 0, false
	}
	return value, matchConfidence(value, text, validation), true
}

// applyPattern returns the first capture group of the first match, or the
// whole match when the pattern has no groups.
func applyPattern(pattern *regexp.Regexp, text string) (string, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if len(m) > 1 && m[1] != "" {
		return m[1], true
	}
	return m[0], true
}

// labelScore is the best similarity of text to any label, taking the
// stronger of whole-string similarity and substring-window similarity so
// both bare labels and labels embedded in longer lines score well.
func labelScore(text string, labels []string) int {
	best := 0
	for _, label := range labels {
		if s := fuzzy.Similarity(text, label); s > best {
			best = s
		}
		if w := fuzzy.BestWindow(label, text); w.Score > best {
			best = w.Score
		}
	}
	return best
}

func matchesAnyLabel(text string, labels []string, cutoff int) bool {
	return len(labels) > 0 && labelScore(text, labels) >= cutoff
}

// isLabelLike applies the looser proximity test: exact substring, fuzzy
// window above the proximity cutoff, or any whole label token present.
func isLabelLike(text string, labels []string) bool {
	upper := strings.ToUpper(text)
	for _, label := range labels {
		ul := strings.ToUpper(label)
		if strings.Contains(upper, ul) {
			return true
		}
		if m := fuzzy.BestWindow(label, text); m.Score >= proximityLabelCutoff {
			return true
		}
		for _, tok := range strings.Fields(ul) {
			if containsToken(upper, tok) {
				return true
			}
		}
	}
	return false
}

func containsToken(text, token string) bool {
	for _, t := range strings.Fields(text) {
		if t == token {
			return true
		}
	}
	return false
}

func nearestDistance(p Point, centers []Point) float64 {
	best := -1.0
	for _, c := range centers {
		d := Distance(p, c)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func buildCandidate(field, method, value, sourceText string, conf float64, box BBox) resolve.Candidate {
	geom := resolve.Geometry{box.Min.X, box.Min.Y, box.Max.X, box.Max.Y}
	return resolve.Candidate{
		FieldName:  field,
		Value:      value,
		Source:     resolve.SourceOCR,
		Confidence: conf,
		Method:     method,
		SourceText: sourceText,
		Geometry:   &geom,
	}
}

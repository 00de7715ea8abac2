// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"fmt"

	"ticket-resolve/internal/observability"
	"ticket-resolve/internal/resolve"
)

// DefaultFallbackThreshold is the primary-confidence floor below which a
// configured fallback method is tried.
const DefaultFallbackThreshold = 0.6

// FieldRule pairs a primary extraction method with an optional fallback.
type FieldRule struct {
	Primary  Rule
	Fallback Rule
	// Threshold overrides DefaultFallbackThreshold when positive.
	Threshold float64
}

// Extractor runs field rules over pages. Stateless apart from the
// observer; safe to share across documents.
type Extractor struct {
	observer *observability.StandardObserver
}

// NewExtractor creates an extractor. observer may be nil.
func NewExtractor(observer *observability.StandardObserver) *Extractor {
	return &Extractor{observer: observer}
}

// ExtractField runs one field rule against a page. When the primary method
// produces nothing or lands under the threshold and a fallback is
// configured, the fallback runs; a successful fallback result replaces the
// primary and carries an annotated method tag (e.g.
// "roi_fallback_to_below_label"). Returns false only when no method
// produced a candidate.
func (e *Extractor) ExtractField(p Page, rule FieldRule, document string) (resolve.Candidate, bool) {
	if rule.Primary == nil {
		return resolve.Candidate{}, false
	}

	var finish func(bool, map[string]interface{})
	if e.observer != nil {
		finish = e.observer.StartTiming("extractor", "extract_"+rule.Primary.Method(), document)
	}

	threshold := rule.Threshold
	if threshold <= 0 {
		threshold = DefaultFallbackThreshold
	}

	primary, primaryOK := rule.Primary.Extract(p)

	result, ok := primary, primaryOK
	if rule.Fallback != nil && (!primaryOK || primary.Confidence < threshold) {
		if fb, fbOK := rule.Fallback.Extract(p); fbOK {
			fb.Method = fmt.Sprintf("%s_fallback_to_%s", rule.Primary.Method(), rule.Fallback.Method())
			result, ok = fb, true
		}
	}

	if finish != nil {
		meta := map[string]interface{}{"method": "", "found": ok}
		if ok {
			meta["method"] = result.Method
			meta["confidence"] = result.Confidence
		}
		finish(ok, meta)
	}

	return result, ok
}

// ExtractAll runs every field rule and returns the produced candidates in
// rule order. Fields that yield nothing are simply absent; extraction
// never fails a document.
func (e *Extractor) ExtractAll(p Page, rules []FieldRule, document string) []resolve.Candidate {
	var out []resolve.Candidate
	for _, rule := range rules {
		if c, ok := e.ExtractField(p, rule, document); ok {
			out = append(out, c)
		}
	}
	return out
}

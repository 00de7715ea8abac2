// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package correct cleans extracted field values: remembered corrections
// first, then field validators, then fuzzy dictionary snapping, optionally
// gated by a human-approval callback.
package correct

import (
	"sort"
	"strconv"

	"ticket-resolve/internal/confusion"
	"ticket-resolve/internal/corrections"
	"ticket-resolve/internal/fuzzy"
	"ticket-resolve/internal/observability"
)

// ValidateFunc is a field validator: returns the normalized value and
// whether the input was (or could be repaired into) a valid value.
type ValidateFunc func(raw string) (string, bool)

// ApproveFunc decides whether a proposed correction may be applied. meta
// carries the proposing step and any scoring detail. A nil ApproveFunc
// means auto-approve.
type ApproveFunc func(field, old, new string, meta map[string]string) bool

// snapOverride is the similarity at which a dictionary snap is accepted
// even without a confusable character in the query.
const snapOverride = 95

// Corrector runs the per-record correction pipeline. Stateless apart from
// the shared corrections memory; safe to reuse across records.
type Corrector struct {
	memory       *corrections.Memory
	validators   map[string]ValidateFunc
	dictionaries map[string]*fuzzy.Dictionary
	observer     *observability.StandardObserver
	dryRun       bool
}

// NewCorrector creates a corrector over the given corrections memory.
func NewCorrector(memory *corrections.Memory) *Corrector {
	return &Corrector{
		memory:       memory,
		validators:   make(map[string]ValidateFunc),
		dictionaries: make(map[string]*fuzzy.Dictionary),
	}
}

// WithValidator registers a validator for a field.
func (c *Corrector) WithValidator(field string, fn ValidateFunc) *Corrector {
	c.validators[field] = fn
	return c
}

// WithDictionary registers a closed vocabulary for a field.
func (c *Corrector) WithDictionary(field string, d *fuzzy.Dictionary) *Corrector {
	c.dictionaries[field] = d
	return c
}

// WithObserver attaches observability. observer may be nil.
func (c *Corrector) WithObserver(observer *observability.StandardObserver) *Corrector {
	c.observer = observer
	return c
}

// SetDryRun disables persisting newly approved corrections; substitutions
// still happen in the returned record.
func (c *Corrector) SetDryRun(dryRun bool) {
	c.dryRun = dryRun
}

// CorrectRecord cleans every field of record and returns a corrected copy.
// Per field, in order: exact corrections-memory lookup (short-circuits the
// rest), field validator, fuzzy dictionary snap. New corrections from the
// validator or dictionary steps are persisted to memory once approved, so
// running CorrectRecord twice over the same record is a no-op the second
// time.
func (c *Corrector) CorrectRecord(record map[string]string, ctx map[string]string, approve ApproveFunc) map[string]string {
	out := make(map[string]string, len(record))
	for k, v := range record {
		out[k] = v
	}

	fields := make([]string, 0, len(record))
	for k := range record {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	for _, field := range fields {
		out[field] = c.correctField(field, out[field], ctx, approve)
	}
	return out
}

func (c *Corrector) correctField(field, value string, ctx map[string]string, approve ApproveFunc) string {
	if value == "" {
		return value
	}

	// Step 1: a human already fixed this exact value once.
	if c.memory != nil {
		if right, ok := c.memory.Lookup(field, value); ok {
			c.logDetail(field, "memory hit: "+value+" -> "+right)
			return right
		}
	}

	// Step 2: field validator.
	if validate, ok := c.validators[field]; ok {
		if norm, valid := validate(value); valid && norm != value {
			meta := map[string]string{"step": "validator"}
			if c.approved(field, value, norm, meta, approve) {
				c.persist(field, value, norm, ctx)
				return norm
			}
			return value
		} else if valid {
			// Already canonical; nothing further to do for this field.
			return norm
		}
	}

	// Step 3: fuzzy dictionary snap for closed-vocabulary fields.
	if dict, ok := c.dictionaries[field]; ok {
		best, score := dict.Best(value)
		if best != "" && best != value && snapAcceptable(value, score) {
			meta := map[string]string{
				"step":  "dictionary",
				"score": strconv.Itoa(score),
			}
			if c.approved(field, value, best, meta, approve) {
				c.persist(field, value, best, ctx)
				return best
			}
		}
	}

	return value
}

// snapAcceptable guards against over-aggressive snapping of legitimately
// different but similar-looking values: beyond the dictionary cutoff, the
// query must carry at least one OCR-confusable character unless the match
// is near-exact.
func snapAcceptable(value string, score int) bool {
	return confusion.ContainsConfusable(value) || score >= snapOverride
}

func (c *Corrector) approved(field, old, proposed string, meta map[string]string, approve ApproveFunc) bool {
	if approve == nil {
		return true
	}
	return approve(field, old, proposed, meta)
}

func (c *Corrector) persist(field, wrong, right string, ctx map[string]string) {
	if c.dryRun || c.memory == nil {
		return
	}
	if err := c.memory.Add(field, wrong, right, ctx); err != nil {
		// Memory unavailable is a degradation, not a failure: the
		// substitution already happened for this run.
		c.logDetail(field, "ledger append failed: "+err.Error())
	}
}

func (c *Corrector) logDetail(field, detail string) {
	if c.observer != nil {
		c.observer.LogDetail("corrector", field+": "+detail)
	}
}

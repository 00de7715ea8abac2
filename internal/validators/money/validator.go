// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package money validates and normalizes currency amounts.
package money

import (
	"regexp"
	"strings"

	"ticket-resolve/internal/confusion"
)

// allowedChars restricts confusion repair to the characters that can
// legitimately appear in an amount.
const allowedChars = "0-9.$,"

var (
	// Grouped form: optional dollar sign, thousands commas, cents.
	grouped = regexp.MustCompile(`^\$?\s*\d{1,3}(,\d{3})*(\.\d{2})?$`)
	// Plain numeric form after sanitization.
	plain = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// Validate normalizes a currency amount: currency symbols, commas, and
// whitespace are stripped and the decimal part is padded to two places.
// On failure it applies OCR confusion repair restricted to digits and
// money punctuation and retests. Fails soft: returns the original value
// and false when the result is not a recognizable amount.
func Validate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw, false
	}

	if norm, ok := normalize(trimmed); ok {
		return norm, true
	}

	repaired := confusion.ApplyConfusionMap(trimmed, allowedChars)
	if repaired != trimmed {
		if norm, ok := normalize(repaired); ok {
			return norm, true
		}
	}

	return raw, false
}

// normalize strips money punctuation and canonicalizes the decimal part.
func normalize(s string) (string, bool) {
	if !grouped.MatchString(s) {
		// Strip symbols and retry the plain numeric form; this accepts
		// inputs like "$ 1234.5" whose grouping is already lost.
		stripped := sanitize(s)
		if !plain.MatchString(stripped) {
			return "", false
		}
		return pad(stripped), true
	}

	return pad(sanitize(s)), true
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// pad canonicalizes the fractional part to two digits when a decimal
// point is present; integer amounts stay integers.
func pad(s string) string {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return s
	}
	frac := s[i+1:]
	for len(frac) < 2 {
		frac += "0"
	}
	return s[:i+1] + frac
}

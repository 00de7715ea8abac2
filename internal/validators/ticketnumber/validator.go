// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ticketnumber validates and normalizes haul ticket numbers.
package ticketnumber

import (
	"regexp"
	"strings"

	"ticket-resolve/internal/confusion"
)

// allowedChars restricts confusion repair to the ticket number alphabet.
const allowedChars = "A-Z0-9-"

// patterns are tried in order; the project-specific LDI format first, then
// the generic letter-prefix and alphanumeric forms.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^LDI-?\d{6}$`),
	regexp.MustCompile(`^[A-Z]{1,3}\d{5,7}$`),
	regexp.MustCompile(`^[A-Z0-9]{6,10}$`),
}

// Validate normalizes raw (trim, uppercase) and tests it against the known
// ticket number formats. On failure it applies OCR confusion repair
// restricted to [A-Z0-9-] and retests. Fails soft: returns the original
// value and false when no format matches.
func Validate(raw string) (string, bool) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	if norm == "" {
		return raw, false
	}

	if matchesAny(norm) {
		return norm, true
	}

	repaired := confusion.ApplyConfusionMap(norm, allowedChars)
	if repaired != norm && matchesAny(repaired) {
		return repaired, true
	}

	return raw, false
}

// Matches reports whether s (already normalized) is a valid ticket number.
func Matches(s string) bool {
	return matchesAny(strings.ToUpper(strings.TrimSpace(s)))
}

func matchesAny(s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

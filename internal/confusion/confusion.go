// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package confusion repairs character-level OCR misreads. It is the
// foundation the field validators and the fuzzy dictionary build on.
package confusion

import (
	"strings"
	"unicode"
)

// letterToDigit maps letters commonly misread for digits.
var letterToDigit = map[rune]rune{
	'O': '0',
	'I': '1',
	'l': '1',
	'S': '5',
	'B': '8',
	'Z': '2',
	'G': '6',
	'Q': '0',
	'D': '0',
}

// digitToLetter maps digits commonly misread for letters. Q and D map to
// digits but not back: 0 in a letter context reads as O, never Q or D.
var digitToLetter = map[rune]rune{
	'0': 'O',
	'1': 'I',
	'5': 'S',
	'8': 'B',
	'2': 'Z',
	'6': 'G',
}

// IsConfusable reports whether c participates in a known OCR confusion pair.
func IsConfusable(c rune) bool {
	if _, ok := letterToDigit[c]; ok {
		return true
	}
	_, ok := digitToLetter[c]
	return ok
}

// ContainsConfusable reports whether any character of s participates in a
// known OCR confusion pair.
func ContainsConfusable(s string) bool {
	for _, c := range s {
		if IsConfusable(c) {
			return true
		}
	}
	return false
}

// ApplyConfusionMap substitutes OCR-confusable characters in text using the
// surrounding characters to decide direction: a letter becomes its paired
// digit only when it sits against digits and no letter, and a digit becomes
// its paired letter only when it sits against letters and no digit. This
// keeps legitimate letter runs ("LDI" in "LDI102345") and digit runs intact
// and makes the repair idempotent: a substitution always flips the
// character's digit/letter class, so re-applying the map to repaired text
// changes nothing further.
//
// allowed restricts which replacement characters may be produced. It is a
// character set with "A-Z" / "a-z" / "0-9" range shorthand (e.g.
// "A-Z0-9-"); empty means unrestricted.
//
// Pure function; never fails.
func ApplyConfusionMap(text string, allowed string) string {
	if text == "" {
		return text
	}

	permit := parseAllowed(allowed)
	runes := []rune(text)

	// Letters first. Repairing O->0 in "1O2" before the digit pass means
	// the digit pass sees the corrected neighborhood and leaves "102" alone.
	pass(runes, letterToDigit, permit, digitContext)
	pass(runes, digitToLetter, permit, letterContext)

	return string(runes)
}

type contextFunc func(left, right rune, hasLeft, hasRight bool) bool

// digitContext: at least one adjacent digit and no adjacent letter.
func digitContext(left, right rune, hasLeft, hasRight bool) bool {
	if hasLeft && unicode.IsLetter(left) {
		return false
	}
	if hasRight && unicode.IsLetter(right) {
		return false
	}
	return (hasLeft && unicode.IsDigit(left)) || (hasRight && unicode.IsDigit(right))
}

// letterContext: at least one adjacent letter and no adjacent digit.
func letterContext(left, right rune, hasLeft, hasRight bool) bool {
	if hasLeft && unicode.IsDigit(left) {
		return false
	}
	if hasRight && unicode.IsDigit(right) {
		return false
	}
	return (hasLeft && unicode.IsLetter(left)) || (hasRight && unicode.IsLetter(right))
}

func pass(runes []rune, table map[rune]rune, permit map[rune]bool, ctx contextFunc) {
	for i, c := range runes {
		repl, ok := table[c]
		if !ok {
			continue
		}
		if permit != nil && !permit[repl] {
			continue
		}

		var left, right rune
		hasLeft := i > 0
		hasRight := i < len(runes)-1
		if hasLeft {
			left = runes[i-1]
		}
		if hasRight {
			right = runes[i+1]
		}

		if ctx(left, right, hasLeft, hasRight) {
			runes[i] = repl
		}
	}
}

// parseAllowed expands a character set with range shorthand into a lookup
// map. Returns nil for the empty (unrestricted) set.
func parseAllowed(allowed string) map[rune]bool {
	if allowed == "" {
		return nil
	}

	permit := make(map[rune]bool, len(allowed))
	runes := []rune(strings.TrimPrefix(strings.TrimSuffix(allowed, "]"), "["))

	for i := 0; i < len(runes); i++ {
		// Range like A-Z: a dash with a character on both sides.
		if i+2 < len(runes) && runes[i+1] == '-' && runes[i+2] >= runes[i] {
			for c := runes[i]; c <= runes[i+2]; c++ {
				permit[c] = true
			}
			i += 2
			continue
		}
		permit[runes[i]] = true
	}

	return permit
}

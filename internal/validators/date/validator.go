// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package date validates free-form date strings and normalizes them to
// YYYY-MM-DD.
package date

import (
	"regexp"
	"strings"
	"time"

	"ticket-resolve/internal/confusion"
)

// allowedChars restricts confusion repair to digits and date separators.
const allowedChars = "0-9-/."

// ISO is the canonical output layout.
const ISO = "2006-01-02"

// layouts is the parse ladder, most specific first. Tickets in this domain
// are US-formatted, so month-day order wins for ambiguous numeric forms.
var layouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"1/2/2006",
	"1-2-2006",
	"01/02/06",
	"01-02-06",
	"1/2/06",
	"01.02.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"20060102",
}

// hint locates a date-shaped substring inside free text, e.g. the date
// buried in "Delivered 10/17/2024 by driver".
var hint = regexp.MustCompile(`\d{1,4}[-/.]\d{1,2}[-/.]\d{2,4}|\d{8}|[A-Za-z]{3,9}\.? \d{1,2},? \d{4}`)

// Validate parses raw as a date and normalizes it to YYYY-MM-DD. The
// attempt order is: the string as given, OCR confusion repair restricted
// to digits and separators, then a date-shaped substring located by a hint
// pattern. Fails soft: returns the original value and false when nothing
// parses.
func Validate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw, false
	}

	if iso, ok := parse(trimmed); ok {
		return iso, true
	}

	repaired := confusion.ApplyConfusionMap(trimmed, allowedChars)
	if repaired != trimmed {
		if iso, ok := parse(repaired); ok {
			return iso, true
		}
	}

	// Search for a date-shaped substring and retry on just that.
	for _, candidate := range []string{trimmed, repaired} {
		if sub := hint.FindString(candidate); sub != "" && sub != candidate {
			if iso, ok := parse(sub); ok {
				return iso, true
			}
		}
	}

	return raw, false
}

func parse(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Two-digit-year layouts can land in implausible centuries;
			// reject anything outside the working range of scanned tickets.
			if t.Year() < 1990 || t.Year() > 2099 {
				continue
			}
			return t.Format(ISO), true
		}
	}
	return "", false
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fuzzy provides approximate string matching: a normalized
// similarity score in [0,100] combining edit distance with token-set
// overlap, a sliding-window substring matcher, and a closed-dictionary
// nearest-match lookup.
package fuzzy

import (
	"strings"
)

// Similarity returns a score in [0,100] for how closely a and b match.
// It combines a character-level edit-distance ratio with a token-set
// ratio and returns the higher of the two, so both transposed words
// ("Demolition Lindamood") and character-level OCR noise score well.
// Comparison is case-insensitive with whitespace collapsed.
func Similarity(a, b string) int {
	na := Normalize(a)
	nb := Normalize(b)

	if na == "" && nb == "" {
		return 100
	}
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	char := ratio(na, nb)
	token := tokenSetRatio(na, nb)
	if token > char {
		return token
	}
	return char
}

// Normalize uppercases s and collapses internal whitespace runs.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// ratio converts Levenshtein distance into a [0,100] similarity score
// against the longer input.
func ratio(a, b string) int {
	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	if longer == 0 {
		return 100
	}
	d := editDistance(a, b)
	return (longer - d) * 100 / longer
}

// tokenSetRatio scores the overlap of the word sets of a and b,
// insensitive to word order and duplication.
func tokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	common := 0
	for tok := range ta {
		if tb[tok] {
			common++
		}
	}

	union := len(ta) + len(tb) - common
	if union == 0 {
		return 100
	}
	return common * 100 / union
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// editDistance calculates the Levenshtein distance between two strings
// using a two-row dynamic programming table.
func editDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// WindowMatch is the result of a sliding-window substring search.
type WindowMatch struct {
	// Start is the rune offset of the best window in the haystack.
	Start int
	// Length is the window length in runes.
	Length int
	// Score is the similarity of the window to the needle.
	Score int
}

// BestWindow slides a needle-sized window across haystack and returns the
// highest-scoring position. An exact (case-insensitive) substring match is
// preferred and short-circuits with score 100.
func BestWindow(needle, haystack string) WindowMatch {
	best := WindowMatch{Start: -1}

	n := []rune(strings.ToUpper(needle))
	h := []rune(strings.ToUpper(haystack))
	if len(n) == 0 || len(h) == 0 {
		return best
	}

	if idx := strings.Index(string(h), string(n)); idx >= 0 {
		// Index returns a byte offset on the uppercased string; recover
		// the rune offset.
		runeStart := len([]rune(string(h)[:idx]))
		return WindowMatch{Start: runeStart, Length: len(n), Score: 100}
	}

	if len(n) > len(h) {
		score := ratio(string(n), string(h))
		return WindowMatch{Start: 0, Length: len(h), Score: score}
	}

	for i := 0; i+len(n) <= len(h); i++ {
		window := string(h[i : i+len(n)])
		score := ratio(string(n), window)
		if score > best.Score {
			best = WindowMatch{Start: i, Length: len(n), Score: score}
		}
	}

	return best
}

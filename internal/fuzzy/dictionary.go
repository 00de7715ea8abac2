// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCutoff is the minimum similarity score a dictionary match must
// reach to be returned.
const DefaultCutoff = 90

// Dictionary is a closed vocabulary of canonical values (vendor names,
// materials, cost codes) that free-text candidates can be snapped to.
// Immutable after construction.
type Dictionary struct {
	values []string
	cutoff int
}

// NewDictionary builds a dictionary over the given canonical values.
// A cutoff <= 0 selects DefaultCutoff.
func NewDictionary(values []string, cutoff int) *Dictionary {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}

	kept := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, strings.TrimSpace(v))
		}
	}

	return &Dictionary{values: kept, cutoff: cutoff}
}

// Cutoff returns the configured acceptance cutoff.
func (d *Dictionary) Cutoff() int {
	return d.cutoff
}

// Len returns the number of canonical values.
func (d *Dictionary) Len() int {
	return len(d.values)
}

// Best returns the single canonical value most similar to query, with its
// similarity score. It returns ("", 0) when the dictionary or the query is
// empty or when nothing clears the cutoff; a score exactly at the cutoff
// is accepted.
func (d *Dictionary) Best(query string) (string, int) {
	if d == nil || len(d.values) == 0 || strings.TrimSpace(query) == "" {
		return "", 0
	}

	bestValue := ""
	bestScore := 0
	for _, v := range d.values {
		score := Similarity(query, v)
		if score > bestScore {
			bestValue = v
			bestScore = score
		}
	}

	if bestScore < d.cutoff {
		return "", 0
	}
	return bestValue, bestScore
}

// LoadDictionaryCSV builds a dictionary from a single-column CSV file with
// a header row, e.g. an exported vendor list. Rows with extra columns use
// the first column; blank rows are skipped.
func LoadDictionaryCSV(path string, cutoff int) (*Dictionary, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var values []string
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dictionary file %s: %w", filepath.Base(path), err)
		}
		if header {
			header = false
			continue
		}
		if len(record) > 0 {
			values = append(values, record[0])
		}
	}

	return NewDictionary(values, cutoff), nil
}

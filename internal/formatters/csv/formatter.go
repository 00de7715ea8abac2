// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"ticket-resolve/internal/formatters"
)

// Formatter implements CSV output formatting, one row per resolved field
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "CSV output for spreadsheet import, one row per field"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(results []formatters.DocumentResult, options formatters.FormatterOptions) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"document", "field", "value", "source", "precedence", "confidence", "needs_review"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, result := range results {
		if result.Error != "" {
			row := []string{result.Document, "", "", "", "", "", ""}
			row[2] = "ERROR: " + result.Error
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
			continue
		}
		for _, field := range result.Fields {
			row := []string{
				result.Document,
				field.FieldName,
				field.Value,
				string(field.Source),
				field.Precedence.String(),
				strconv.FormatFloat(field.Confidence, 'f', 2, 64),
				strconv.FormatBool(field.NeedsReview()),
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV: %w", err)
	}
	return sb.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

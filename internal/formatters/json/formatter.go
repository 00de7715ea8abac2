// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"ticket-resolve/internal/formatters"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

type jsonAlternative struct {
	Value      string  `json:"value"`
	Source     string  `json:"source"`
	Precedence string  `json:"precedence"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method,omitempty"`
}

type jsonField struct {
	Value        string            `json:"value"`
	Source       string            `json:"source"`
	Precedence   string            `json:"precedence"`
	Confidence   float64           `json:"confidence"`
	NeedsReview  bool              `json:"needs_review"`
	Alternatives []jsonAlternative `json:"alternatives,omitempty"`
}

type jsonDocument struct {
	Document string               `json:"document"`
	Fields   map[string]jsonField `json:"fields,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func (f *Formatter) Format(results []formatters.DocumentResult, options formatters.FormatterOptions) (string, error) {
	docs := make([]jsonDocument, 0, len(results))

	for _, result := range results {
		doc := jsonDocument{Document: result.Document, Error: result.Error}
		if len(result.Fields) > 0 {
			doc.Fields = make(map[string]jsonField, len(result.Fields))
		}
		for _, field := range result.Fields {
			jf := jsonField{
				Value:       field.Value,
				Source:      string(field.Source),
				Precedence:  field.Precedence.String(),
				Confidence:  field.Confidence,
				NeedsReview: field.NeedsReview(),
			}
			if options.Verbose {
				for _, alt := range field.Alternatives {
					jf.Alternatives = append(jf.Alternatives, jsonAlternative{
						Value:      alt.Value,
						Source:     string(alt.Source),
						Precedence: alt.Level().String(),
						Confidence: alt.Confidence,
						Method:     alt.Method,
					})
				}
			}
			doc.Fields[field.FieldName] = jf
		}
		docs = append(docs, doc)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return string(data), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

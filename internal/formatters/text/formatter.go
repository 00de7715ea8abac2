// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"ticket-resolve/internal/formatters"
)

// Formatter implements human-readable text output
type Formatter struct{}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with confidence coloring"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(results []formatters.DocumentResult, options formatters.FormatterOptions) (string, error) {
	// color.NoColor is process-global; honor the option but restore the
	// previous setting so other formatters are unaffected.
	prev := color.NoColor
	if options.NoColor {
		color.NoColor = true
	}
	defer func() { color.NoColor = prev }()

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	var sb strings.Builder
	reviewCount := 0

	for i, result := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s\n", bold(result.Document)))

		if result.Error != "" {
			sb.WriteString(fmt.Sprintf("  %s %s\n", red("ERROR:"), result.Error))
			continue
		}

		for _, field := range result.Fields {
			conf := fmt.Sprintf("%.2f", field.Confidence)
			switch {
			case field.Confidence >= 0.9:
				conf = green(conf)
			case field.Confidence >= 0.7:
				conf = yellow(conf)
			default:
				conf = red(conf)
			}

			line := fmt.Sprintf("  %-16s %-24s [%s, %s]", field.FieldName+":", field.Value, field.Precedence, conf)
			if field.NeedsReview() {
				line += " " + red("NEEDS REVIEW")
				reviewCount++
			}
			sb.WriteString(line + "\n")

			if options.Verbose {
				for _, alt := range field.Alternatives {
					sb.WriteString(fmt.Sprintf("      alt: %-24s [%s, %.2f, %s]\n",
						alt.Value, alt.Level(), alt.Confidence, alt.Method))
				}
			}
		}
	}

	sb.WriteString(fmt.Sprintf("\n%s %d document(s)", bold("Processed:"), len(results)))
	if reviewCount > 0 {
		sb.WriteString(fmt.Sprintf(", %s", red(fmt.Sprintf("%d field(s) need review", reviewCount))))
	}
	sb.WriteString("\n")

	return sb.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

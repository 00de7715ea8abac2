// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfpage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ticket-resolve/internal/extract"
)

// OCR dump wire format: one document, pages of blocks of lines, bounding
// boxes as [x0, y0, x1, y1] in normalized top-down coordinates.
type ocrDocument struct {
	Pages []ocrPage `json:"pages"`
}

type ocrPage struct {
	Blocks []ocrBlock `json:"blocks"`
}

type ocrBlock struct {
	Lines []ocrLine `json:"lines"`
}

type ocrLine struct {
	Text string     `json:"text"`
	BBox [4]float64 `json:"bbox"`
}

// FromJSON decodes an OCR dump into extraction pages. Lines with empty
// text are dropped; boxes are clamped to [0,1] so a slightly out-of-range
// OCR coordinate cannot break region containment.
func FromJSON(r io.Reader) ([]extract.Page, error) {
	var doc ocrDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode OCR dump: %w", err)
	}

	var pages []extract.Page
	for _, p := range doc.Pages {
		var blocks []extract.Block
		for _, b := range p.Blocks {
			var lines []extract.Line
			for _, l := range b.Lines {
				if l.Text == "" {
					continue
				}
				lines = append(lines, extract.TextLine{
					Content: l.Text,
					Bounds: extract.BBox{
						Min: extract.Point{X: clamp01(l.BBox[0]), Y: clamp01(l.BBox[1])},
						Max: extract.Point{X: clamp01(l.BBox[2]), Y: clamp01(l.BBox[3])},
					},
				})
			}
			if len(lines) > 0 {
				blocks = append(blocks, extract.TextBlock{Items: lines})
			}
		}
		pages = append(pages, extract.SimplePage{Content: blocks})
	}
	return pages, nil
}

// FromJSONFile is FromJSON over a file path.
func FromJSONFile(filePath string) ([]extract.Page, error) {
	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open OCR dump: %w", err)
	}
	defer f.Close()
	return FromJSON(f)
}

// Load dispatches on file extension: .json is treated as an OCR dump,
// anything else as a PDF.
func Load(filePath string) ([]extract.Page, error) {
	if filepath.Ext(filePath) == ".json" {
		return FromJSONFile(filePath)
	}
	return FromPDF(filePath)
}

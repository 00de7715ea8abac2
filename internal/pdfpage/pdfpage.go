// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdfpage adapts document sources to extraction pages: the text
// layer of born-digital PDFs, and JSON dumps produced by an external OCR
// engine for scanned ones.
package pdfpage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"ticket-resolve/internal/extract"
)

// US Letter in PDF points, assumed when page dimensions are unavailable.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// maxPages caps per-document processing time; haul tickets are one or two
// pages, anything longer is a misfiled document.
const maxPages = 20

type pageDim struct {
	width  float64
	height float64
}

// FromPDF reads the text layer of a PDF and returns one extraction page
// per document page, with line geometry normalized to [0,1] top-down
// coordinates. Pages whose text layer cannot be read are skipped; an error
// is returned only when the document itself cannot be opened.
func FromPDF(filePath string) ([]extract.Page, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	dims := pageDimensions(filePath, r.NumPage())

	count := r.NumPage()
	if count > maxPages {
		count = maxPages
	}

	var pages []extract.Page
	for i := 1; i <= count; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		dim := pageDim{defaultPageWidth, defaultPageHeight}
		if i-1 < len(dims) {
			dim = dims[i-1]
		}
		if page, ok := readPage(p, dim); ok {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

// pageDimensions reads per-page media box sizes in PDF points. Falls back
// to US Letter for every page when the document context cannot be read;
// geometry is then approximate but extraction still works.
func pageDimensions(filePath string, count int) []pageDim {
	dims := make([]pageDim, count)
	for i := range dims {
		dims[i] = pageDim{defaultPageWidth, defaultPageHeight}
	}

	ctx, err := api.ReadContextFile(filePath)
	if err != nil {
		return dims
	}
	boxes, err := ctx.PageDims()
	if err != nil {
		return dims
	}
	for i, d := range boxes {
		if i >= len(dims) {
			break
		}
		if d.Width > 0 && d.Height > 0 {
			dims[i] = pageDim{d.Width, d.Height}
		}
	}
	return dims
}

// readPage converts one PDF page to an extraction page via row-based text
// positioning. Returns false when the page has no usable text.
func readPage(p pdf.Page, dim pageDim) (extract.Page, bool) {
	rows, err := p.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return nil, false
	}

	// PDF Y grows bottom-up; sort descending so reading order is top-down.
	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var lines []extract.Line
	for _, row := range sorted {
		if line, ok := rowToLine(row.Content, dim); ok {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, false
	}
	return extract.NewSimplePage(lines), true
}

func averageY(elements []pdf.Text) float64 {
	if len(elements) == 0 {
		return 0
	}
	var total float64
	for _, e := range elements {
		total += e.Y
	}
	return total / float64(len(elements))
}

// rowToLine joins the row's text elements left-to-right, inserting a space
// wherever the horizontal gap exceeds 20% of the font size, and computes
// the row's bounding box in normalized top-down coordinates.
func rowToLine(elements []pdf.Text, dim pageDim) (extract.Line, bool) {
	sorted := make([]pdf.Text, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf strings.Builder
	minX, maxX := sorted[0].X, sorted[0].X
	minY, maxY := sorted[0].Y, sorted[0].Y

	for i, e := range sorted {
		buf.WriteString(e.S)

		fontSize := e.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if e.X < minX {
			minX = e.X
		}
		if right := e.X + e.W; right > maxX {
			maxX = right
		}
		if e.Y < minY {
			minY = e.Y
		}
		if top := e.Y + fontSize; top > maxY {
			maxY = top
		}

		if i < len(sorted)-1 {
			gap := sorted[i+1].X - (e.X + e.W)
			if gap > fontSize*0.2 {
				buf.WriteString(" ")
			}
		}
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return nil, false
	}

	// Y inverts: PDF measures from the bottom edge, pages read from the top.
	box := extract.BBox{
		Min: extract.Point{X: clamp01(minX / dim.width), Y: clamp01(1 - maxY/dim.height)},
		Max: extract.Point{X: clamp01(maxX / dim.width), Y: clamp01(1 - minY/dim.height)},
	}
	return extract.TextLine{Content: text, Bounds: box}, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ValidatePDF reports whether the file parses as a structurally valid PDF.
func ValidatePDF(filePath string) error {
	if err := api.ValidateFile(filePath, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	return nil
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract turns OCR page geometry into typed field candidates with
// confidence scores. It consumes pages, it does not produce them: adapters
// over an OCR engine or a PDF text layer implement the Page interface.
package extract

import "math"

// Point is a position in normalized [0,1] page coordinates. X grows
// rightward, Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BBox is an axis-aligned bounding box given as two corner points.
type BBox struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Contains reports whether other lies fully inside b.
func (b BBox) Contains(other BBox) bool {
	return other.Min.X >= b.Min.X && other.Min.Y >= b.Min.Y &&
		other.Max.X <= b.Max.X && other.Max.Y <= b.Max.Y
}

// Center returns the box midpoint.
func (b BBox) Center() Point {
	return Point{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
	}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Line is one text line on a page: concatenated text plus bounding
// geometry.
type Line interface {
	Text() string
	Box() BBox
}

// Block is a group of lines, typically a paragraph or table cell.
type Block interface {
	Lines() []Line
}

// Page is an abstract OCR'd page. Blocks and lines appear in reading
// order.
type Page interface {
	Blocks() []Block
}

// PageLines flattens a page into its lines in reading order.
func PageLines(p Page) []Line {
	var lines []Line
	for _, b := range p.Blocks() {
		lines = append(lines, b.Lines()...)
	}
	return lines
}

// TextLine is a concrete Line for adapters and tests.
type TextLine struct {
	Content string
	Bounds  BBox
}

func (l TextLine) Text() string { return l.Content }
func (l TextLine) Box() BBox    { return l.Bounds }

// TextBlock is a concrete Block for adapters and tests.
type TextBlock struct {
	Items []Line
}

func (b TextBlock) Lines() []Line { return b.Items }

// SimplePage is a concrete Page for adapters and tests.
type SimplePage struct {
	Content []Block
}

func (p SimplePage) Blocks() []Block { return p.Content }

// NewSimplePage builds a single-block page from lines, a convenience for
// adapters whose source has no block structure.
func NewSimplePage(lines []Line) SimplePage {
	return SimplePage{Content: []Block{TextBlock{Items: lines}}}
}

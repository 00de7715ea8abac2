// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metadata produces field candidates from everything around the
// page image: the file name, the folder path, and embedded EXIF data.
// Scanning crews encode the ticket number and date in file names and sort
// scans into per-vendor folders, so these candidates are often more
// trustworthy than OCR.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"ticket-resolve/internal/fuzzy"
	"ticket-resolve/internal/resolve"
	"ticket-resolve/internal/validators/date"
	"ticket-resolve/internal/validators/ticketnumber"
)

// Candidate confidences by origin. Precedence already ranks these sources
// above OCR; confidence only breaks ties and feeds review flagging.
const (
	filenameConfidence = 0.85
	folderConfidence   = 0.75
	exifConfidence     = 0.5
)

var (
	// Ticket-number-shaped tokens in a file name, e.g. "LDI102345_20241017".
	ticketToken = regexp.MustCompile(`(?i)\b(LDI-?\d{6}|[A-Z]{2,3}\d{5,7})\b`)

	// Date-shaped tokens, tried in order of decreasing specificity.
	dateTokens = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{8}\b`),
		regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`),
	}
)

// Extractor derives candidates from file paths. The vendor dictionary is
// optional; without it folder names never produce vendor candidates.
type Extractor struct {
	vendors *fuzzy.Dictionary
}

// NewExtractor creates a path metadata extractor. vendors may be nil.
func NewExtractor(vendors *fuzzy.Dictionary) *Extractor {
	return &Extractor{vendors: vendors}
}

// FromPath parses the file name and folder components of path into field
// candidates. The file name yields ticket_number and date at filename
// precedence; folder components yield date and vendor_name at folder
// precedence. Never fails: an unparseable path just yields nothing.
func (e *Extractor) FromPath(path string) []resolve.Candidate {
	var out []resolve.Candidate

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := tokenize(base)

	if m := ticketToken.FindString(name); m != "" {
		if norm, ok := ticketnumber.Validate(m); ok {
			out = append(out, candidate("ticket_number", norm, resolve.SourceFilename, filenameConfidence, "filename", base))
		}
	}
	if iso, ok := findDate(name); ok {
		out = append(out, candidate("date", iso, resolve.SourceFilename, filenameConfidence, "filename", base))
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == string(filepath.Separator) {
		return out
	}
	for _, segment := range strings.Split(dir, string(filepath.Separator)) {
		if segment == "" || segment == "." {
			continue
		}
		seg := tokenize(segment)
		if iso, ok := findDate(seg); ok {
			out = append(out, candidate("date", iso, resolve.SourceFolder, folderConfidence, "folder", segment))
			continue
		}
		if e.vendors != nil {
			if best, _ := e.vendors.Best(seg); best != "" {
				out = append(out, candidate("vendor_name", best, resolve.SourceFolder, folderConfidence, "folder", segment))
			}
		}
	}
	return out
}

// tokenize turns path punctuation into spaces so token-boundary patterns
// match names like "LDI102345_2024-10-17.pdf".
func tokenize(s string) string {
	return strings.NewReplacer("_", " ", ".", " ", ",", " ").Replace(s)
}

// findDate locates the first date-shaped token that actually parses.
func findDate(s string) (string, bool) {
	for _, re := range dateTokens {
		for _, m := range re.FindAllString(s, -1) {
			if iso, ok := date.Validate(m); ok {
				return iso, true
			}
		}
	}
	return "", false
}

// ExifDate reads the capture timestamp from an image's EXIF block and
// returns it as a default-precedence date candidate: it is when the photo
// of the ticket was taken, not necessarily the ticket date, so anything
// parsed from the document or its path outranks it.
func ExifDate(path string) (resolve.Candidate, bool) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return resolve.Candidate{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return resolve.Candidate{}, false
	}
	t, err := x.DateTime()
	if err != nil {
		return resolve.Candidate{}, false
	}

	iso := t.Format("2006-01-02")
	src := fmt.Sprintf("EXIF %s", t.Format("2006:01:02 15:04:05"))
	return candidate("date", iso, resolve.SourceDefault, exifConfidence, "exif", src), true
}

func candidate(field, value string, source resolve.Source, conf float64, method, sourceText string) resolve.Candidate {
	return resolve.Candidate{
		FieldName:  field,
		Value:      value,
		Source:     source,
		Confidence: conf,
		Method:     method,
		SourceText: sourceText,
	}
}

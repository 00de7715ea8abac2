// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// StandardObserver implements observability for the extraction, correction,
// and resolution components.
type StandardObserver struct {
	level  Level
	writer io.Writer
	indent int
}

type Level int

const (
	LevelOff     Level = 0
	LevelMetrics Level = 1
	LevelDebug   Level = 2
)

// NewStandardObserver creates an observability component.
func NewStandardObserver(level Level, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
	}
}

// OperationData is the JSON record emitted per operation.
type OperationData struct {
	Component      string                 `json:"component"`
	Operation      string                 `json:"operation"`
	Document       string                 `json:"document,omitempty"`
	Field          string                 `json:"field,omitempty"`
	DurationMs     int64                  `json:"duration_ms,omitempty"`
	Success        bool                   `json:"success"`
	Error          string                 `json:"error,omitempty"`
	CandidateCount int                    `json:"candidate_count,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// StartTiming returns a function to complete timing for one operation on
// one document.
func (o *StandardObserver) StartTiming(component, operation, document string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		if o == nil {
			return
		}
		o.LogOperation(OperationData{
			Component:  component,
			Operation:  operation,
			Document:   document,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data. Records are only encoded in debug mode;
// metrics mode keeps timing without output so callers can aggregate later.
func (o *StandardObserver) LogOperation(data OperationData) {
	if o == nil || o.level != LevelDebug {
		return
	}
	json.NewEncoder(o.writer).Encode(data)
}

// StartStep begins an indented processing step in debug output.
func (o *StandardObserver) StartStep(component, step, document string) func(success bool, details string) {
	if o == nil || o.level != LevelDebug {
		return func(bool, string) {}
	}

	start := time.Now()
	fmt.Fprintf(o.writer, "%s-> %s: %s (%s)\n", strings.Repeat("  ", o.indent), component, step, document)
	o.indent++

	return func(success bool, details string) {
		o.indent--
		status := "done"
		if !success {
			status = "failed"
		}
		fmt.Fprintf(o.writer, "%s<- %s: %s %s (%dms) %s\n",
			strings.Repeat("  ", o.indent), component, step, status,
			time.Since(start).Milliseconds(), details)
	}
}

// LogDetail logs a detail line within the current step.
func (o *StandardObserver) LogDetail(component, detail string) {
	if o == nil || o.level != LevelDebug {
		return
	}
	fmt.Fprintf(o.writer, "%s   %s: %s\n", strings.Repeat("  ", o.indent), component, detail)
}

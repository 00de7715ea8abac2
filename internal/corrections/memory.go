// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package corrections persists human-approved value corrections in an
// append-only ledger so a mistake is fixed once and remembered forever.
package corrections

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ticket-resolve/internal/paths"
)

// Record is one correction: for a given field, wrong was seen and right is
// what a human said it should be. Records are append-only; prior ledger
// lines are never rewritten.
type Record struct {
	Field   string            `json:"field"`
	Wrong   string            `json:"wrong"`
	Right   string            `json:"right"`
	Context map[string]string `json:"context,omitempty"`
	TS      int64             `json:"ts"`
}

type key struct {
	field string
	wrong string
}

// Memory is the in-process view of the corrections ledger. The ledger file
// is loaded lazily on first lookup and grows monotonically via Add.
//
// One Memory instance should be shared by all workers in a process; a
// mutex serializes the map-update-then-append sequence so concurrent Add
// calls cannot interleave a ledger line. Appends open the file with
// O_APPEND and write each record in a single Write call, so lines from a
// second process writing the same ledger stay intact even though their
// ordering is unspecified.
type Memory struct {
	mu         sync.Mutex
	ledgerPath string
	entries    map[key]string
	loaded     bool
	loadErr    error
}

// NewMemory creates a corrections memory over the given ledger file. An
// empty path selects the default ledger location.
func NewMemory(ledgerPath string) *Memory {
	if ledgerPath == "" {
		ledgerPath = paths.GetLedgerFile()
	}
	return &Memory{ledgerPath: ledgerPath}
}

// LedgerPath returns the path of the backing ledger file.
func (m *Memory) LedgerPath() string {
	return m.ledgerPath
}

// Load reads the ledger into memory. It is idempotent; subsequent calls
// are no-ops. A missing ledger file is not an error (the memory starts
// empty); a read failure leaves the memory empty and is reported so the
// caller can log it and proceed without the fast-path.
func (m *Memory) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *Memory) loadLocked() error {
	if m.loaded {
		return m.loadErr
	}
	m.loaded = true
	m.entries = make(map[key]string)

	f, err := os.Open(filepath.Clean(m.ledgerPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		m.loadErr = fmt.Errorf("failed to open corrections ledger: %w", err)
		return m.loadErr
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			// Malformed lines are skipped, not fatal: a torn write from
			// another process must not take the whole memory down.
			continue
		}
		if rec.Field == "" || rec.Wrong == "" {
			continue
		}
		m.entries[key{rec.Field, rec.Wrong}] = rec.Right
	}
	if err := scanner.Err(); err != nil {
		m.loadErr = fmt.Errorf("failed to read corrections ledger: %w", err)
		return m.loadErr
	}

	return nil
}

// Lookup returns the recorded right value for (field, wrong). Exact match
// only, O(1). The ledger is loaded on first use; if loading failed the
// lookup simply misses.
func (m *Memory) Lookup(field, wrong string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return "", false
	}
	right, ok := m.entries[key{field, wrong}]
	return right, ok
}

// Add records a correction in memory and appends one line to the ledger.
// The in-memory map is updated even when the disk append fails, so the
// correction holds for the rest of the run; the error is returned for
// logging.
func (m *Memory) Add(field, wrong, right string, context map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadLocked()
	if m.entries == nil {
		m.entries = make(map[key]string)
	}
	m.entries[key{field, wrong}] = right

	rec := Record{
		Field:   field,
		Wrong:   wrong,
		Right:   right,
		Context: context,
		TS:      time.Now().Unix(),
	}
	return m.appendLocked(rec)
}

// Len returns the number of distinct (field, wrong) corrections known.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked()
	return len(m.entries)
}

func (m *Memory) appendLocked(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode correction record: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(m.ledgerPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(m.ledgerPath), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open corrections ledger for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append correction record: %w", err)
	}
	return nil
}

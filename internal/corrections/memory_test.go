// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package corrections

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func ledgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "corrections.jsonl")
}

func TestAddAndLookup(t *testing.T) {
	m := NewMemory(ledgerPath(t))

	if err := m.Add("ticket_number", "LDI1O2345", "LDI102345", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	right, ok := m.Lookup("ticket_number", "LDI1O2345")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if right != "LDI102345" {
		t.Errorf("expected LDI102345, got %q", right)
	}
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	m := NewMemory(ledgerPath(t))
	if err := m.Add("vendor_name", "LINDAMOOD", "Lindamood Demolition", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, ok := m.Lookup("vendor_name", "lindamood"); ok {
		t.Error("lookup must be exact, not case-folded")
	}
	if _, ok := m.Lookup("material", "LINDAMOOD"); ok {
		t.Error("lookup must be scoped to the field")
	}
}

func TestPersistence(t *testing.T) {
	path := ledgerPath(t)

	m1 := NewMemory(path)
	if err := m1.Add("date", "O7-1O-25", "2025-07-10", map[string]string{"file": "t1.pdf"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	m2 := NewMemory(path)
	right, ok := m2.Lookup("date", "O7-1O-25")
	if !ok {
		t.Fatal("correction should persist across instances")
	}
	if right != "2025-07-10" {
		t.Errorf("expected 2025-07-10, got %q", right)
	}
}

func TestAppendOnly(t *testing.T) {
	path := ledgerPath(t)
	m := NewMemory(path)

	if err := m.Add("date", "bad1", "2025-01-01", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Add("date", "bad2", "2025-01-02", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 ledger lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "bad1") {
		t.Error("first line should still hold the first record")
	}
}

func TestMalformedLinesSkipped(t *testing.T) {
	path := ledgerPath(t)
	content := `{"field":"date","wrong":"x","right":"2025-01-01","ts":1}
this is not json
{"field":"date","wrong":"y","right":"2025-01-02","ts":2}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	m := NewMemory(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 records (malformed line skipped), got %d", m.Len())
	}
	if _, ok := m.Lookup("date", "y"); !ok {
		t.Error("record after the malformed line should still load")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	m := NewMemory(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err := m.Load(); err != nil {
		t.Errorf("missing ledger should not be an error, got %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty memory, got %d records", m.Len())
	}
}

func TestConcurrentAdd(t *testing.T) {
	path := ledgerPath(t)
	m := NewMemory(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			wrong := strings.Repeat("x", n+1)
			if err := m.Add("ticket_number", wrong, "LDI100000", nil); err != nil {
				t.Errorf("Add failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if m.Len() != 20 {
		t.Errorf("expected 20 records, got %d", m.Len())
	}

	// Every ledger line must be intact JSON.
	m2 := NewMemory(path)
	if err := m2.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m2.Len() != 20 {
		t.Errorf("expected 20 records on reload, got %d", m2.Len())
	}
}

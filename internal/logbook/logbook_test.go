package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentEntriesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".tfgen", "history.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := book.Info("entry-%d", i); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	entries, total, err := book.Tail(3)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if total != 5 {
		t.Fatalf("total entries = %d, want 5", total)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if entries[idx].Message != want {
			t.Fatalf("entry %d = %q, want %s", idx, entries[idx].Message, want)
		}
	}
}

func TestAppendFlattensMessageAndKeepsLevel(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "history.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	book.now = func() time.Time { return fixed }
	if err := book.Error("failed:\n  %s", "definition.yml"); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, _, err := book.Tail(1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("tail: %v %v", entries, err)
	}
	entry := entries[0]
	if entry.Level != LevelError || entry.Message != "failed: definition.yml" || !entry.Time.Equal(fixed) {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if !strings.HasPrefix(entry.String(), "2024-03-01T12:00:00Z ERROR") {
		t.Fatalf("unexpected formatting: %s", entry.String())
	}
}

func TestTailMissingFileIsEmpty(t *testing.T) {
	entries, total, err := Open(filepath.Join(t.TempDir(), "missing.log")).Tail(10)
	if err != nil || total != 0 || entries != nil {
		t.Fatalf("expected empty tail, got %v %d %v", entries, total, err)
	}
}

// Package logbook keeps a plain-text history of generator runs next to the
// generated output, one line per run.
package logbook

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the outcome of a recorded run.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one parsed logbook line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %-5s %s", e.Time.UTC().Format(time.RFC3339), e.Level, e.Message)
}

// Logbook appends run records to a text file. It is safe for concurrent use
// within one process.
type Logbook struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a logbook that writes to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure dir: %w", err)
	}
	return &Logbook{path: path, now: time.Now}, nil
}

// Open returns a logbook for an existing path without creating directories.
func Open(path string) *Logbook {
	return &Logbook{path: path, now: time.Now}
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry. Newlines in message are flattened so every
// entry stays on one line.
func (l *Logbook) Append(level Level, message string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := Entry{
		Time:    l.now(),
		Level:   level,
		Message: strings.Join(strings.Fields(message), " "),
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()
	if _, err := file.WriteString(entry.String() + "\n"); err != nil {
		return fmt.Errorf("logbook: write %s: %w", l.path, err)
	}
	return nil
}

// Tail returns up to maxEntries of the most recent entries and the total
// number of entries in the logbook. A missing file is an empty logbook.
func (l *Logbook) Tail(maxEntries int) ([]Entry, int, error) {
	if l == nil || maxEntries <= 0 {
		return nil, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if entry, ok := parseEntry(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("logbook: read %s: %w", l.path, err)
	}
	total := len(entries)
	if total > maxEntries {
		entries = entries[total-maxEntries:]
	}
	return entries, total, nil
}

// Info records a successful run.
func (l *Logbook) Info(format string, args ...any) error {
	return l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn records a run that completed with warnings.
func (l *Logbook) Warn(format string, args ...any) error {
	return l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error records a failed run.
func (l *Logbook) Error(format string, args ...any) error {
	return l.Append(LevelError, fmt.Sprintf(format, args...))
}

func parseEntry(line string) (Entry, bool) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) != 2 {
		return Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return Entry{}, false
	}
	rest := strings.TrimLeft(fields[1], " ")
	level, message, _ := strings.Cut(rest, " ")
	return Entry{Time: ts, Level: Level(level), Message: strings.TrimSpace(message)}, true
}

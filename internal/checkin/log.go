package checkin

import (
	"fmt"
	"strings"
	"sync"
)

// Log is the append-only check-in log. Duplicate checking and appending
// happen under one lock so two racing check-ins for the same (name, type)
// cannot both slip in.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an entry unless an entry with the same case-insensitive
// (name, type) pair already exists.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.entries {
		if strings.EqualFold(existing.Name, e.Name) && strings.EqualFold(existing.Type, e.Type) {
			return fmt.Errorf("%s %w", e.Name, ErrDuplicate)
		}
	}
	l.entries = append(l.entries, e)
	return nil
}

// List returns a snapshot of the log in insertion order.
func (l *Log) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// RemoveAt deletes the entry at the given position. Racing deletes resolve
// against the positions held at lock acquisition; index stability across
// calls is the caller's problem.
func (l *Log) RemoveAt(index int) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.entries) {
		return Entry{}, fmt.Errorf("record index %d %w", index, ErrNotFound)
	}
	removed := l.entries[index]
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	return removed, nil
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len reports the current number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

package audit

import (
	"context"
	"sync"
)

// MemoryLogger keeps the most recent audit entries in memory.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

// NewMemoryLogger constructs a logger that retains up to limit entries.
func NewMemoryLogger(limit int) *MemoryLogger {
	if limit <= 0 {
		limit = 1000
	}
	return &MemoryLogger{limit: limit}
}

// Log appends an entry, dropping the oldest past the retention limit.
func (l *MemoryLogger) Log(ctx context.Context, entry Entry) error {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
	return nil
}

// Entries returns a snapshot of retained entries.
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

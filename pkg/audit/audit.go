// Package audit records one immutable entry per tool-execution attempt.
package audit

import (
	"context"
	"sync"
	"time"
)

// Entry describes one tool-execution attempt and its outcome. Exactly one
// entry is written per execution attempt regardless of where it failed.
type Entry struct {
	ToolID    string                 `json:"tool_id"`
	Tool      string                 `json:"tool"`
	Params    map[string]interface{} `json:"params,omitempty"`
	Result    interface{}            `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Duration  time.Duration          `json:"duration"`
	UserID    string                 `json:"user_id"`
	Timestamp time.Time              `json:"timestamp"`
}

// Sink persists audit entries. Implementations must be safe for concurrent
// use. A Record failure is the one path allowed to surface an error out of
// a tool execution.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// MemorySink collects entries in memory. Used in tests and as a harmless
// default when no durable sink is configured.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// Record appends the entry.
func (s *MemorySink) Record(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Package history keeps the agent's recent searches for the lifetime of
// the process.
package history

import "time"

// maxEntries bounds the store; the oldest entry is dropped first
const maxEntries = 10

// Entry records one search the agent performed
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	FormURL   string    `json:"form_url,omitempty"`
}

// Store is an append-only, bounded history. The agent runs single
// threaded, so the store does no locking.
type Store struct {
	entries []Entry
}

// NewStore creates an empty history store
func NewStore() *Store {
	return &Store{}
}

// Add appends an entry, trimming the oldest when the cap is exceeded
func (s *Store) Add(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.entries = append(s.entries, e)
	if len(s.entries) > maxEntries {
		s.entries = s.entries[len(s.entries)-maxEntries:]
	}
}

// Entries returns a copy of the history, oldest first
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	return len(s.entries)
}

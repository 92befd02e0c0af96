// Package state holds the one value the keyboard view is drawn from.
//
// Updates replace the value wholesale and recompute the keyboard; nothing
// is patched in place. Queries are ticketed so that when several analyses
// overlap only the most recently started one can land.
package state

import (
	"sync"

	"github.com/google/uuid"

	"theory-keys/analysis"
	"theory-keys/debug"
	"theory-keys/keyboard"
)

// Source says where the current notes came from
type Source int

const (
	SourceNone Source = iota
	SourceQuery
	SourceMIDI
)

func (s Source) String() string {
	switch s {
	case SourceQuery:
		return "query"
	case SourceMIDI:
		return "midi"
	}
	return "none"
}

// Ticket identifies one in-flight query
type Ticket struct {
	ID    uuid.UUID
	Query string
}

// Snapshot is an immutable view of the store
type Snapshot struct {
	Source  Source
	Query   string
	Result  *analysis.Result // nil unless a query succeeded
	Notes   []string
	Err     error
	Pending bool // a query is in flight
	Keys    []keyboard.Key
}

type Store struct {
	mu      sync.Mutex
	current Snapshot
	latest  uuid.UUID
	updates chan Snapshot
}

func NewStore() *Store {
	s := &Store{updates: make(chan Snapshot, 1)}
	s.current = Snapshot{Keys: keyboard.Compute(nil)}
	return s
}

// Current returns the latest snapshot
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Updates delivers snapshots as they are replaced. The channel holds only
// the newest one; a slow reader skips intermediate states.
func (s *Store) Updates() <-chan Snapshot {
	return s.updates
}

// Begin marks query as the latest request; any earlier ticket is now stale
func (s *Store) Begin(query string) Ticket {
	t := Ticket{ID: uuid.New(), Query: query}

	s.mu.Lock()
	s.latest = t.ID
	next := s.current
	next.Pending = true
	s.replace(next)
	s.mu.Unlock()

	debug.Log("state", "begin %s %q", t.ID, query)
	return t
}

// Apply stores the outcome of t. It returns false and changes nothing if a
// newer query has begun since. A failed query leaves an empty keyboard.
func (s *Store) Apply(t Ticket, result *analysis.Result, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID != s.latest {
		debug.Log("state", "drop stale %s %q", t.ID, t.Query)
		return false
	}
	s.latest = uuid.Nil

	next := Snapshot{Source: SourceQuery, Query: t.Query}
	if err != nil || result == nil {
		next.Err = err
	} else {
		next.Result = result
		next.Notes = append([]string(nil), result.Notes...)
	}
	next.Keys = keyboard.Compute(next.Notes)
	s.replace(next)
	return true
}

// SetNotes replaces the note set directly (live MIDI input). It also
// supersedes any in-flight query.
func (s *Store) SetNotes(notes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = uuid.Nil
	next := Snapshot{
		Source: SourceMIDI,
		Notes:  append([]string(nil), notes...),
	}
	next.Keys = keyboard.Compute(next.Notes)
	s.replace(next)
}

// Reset returns to a neutral keyboard
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = uuid.Nil
	s.replace(Snapshot{Keys: keyboard.Compute(nil)})
}

// replace must be called with mu held
func (s *Store) replace(next Snapshot) {
	s.current = next
	select {
	case <-s.updates:
	default:
	}
	s.updates <- next
}

package feature

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fetcher retrieves the whole record list for a module.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Matcher reports whether an item satisfies a free-text query.
type Matcher[T any] func(item T, query string) bool

// Snapshot is a consistent copy of a store.
type Snapshot[T any] struct {
	State    State
	All      []T
	Filtered []T
	Query    string
	Scope    string
	Err      error
	LoadedAt time.Time
}

// Store keeps a module's records. Filtered is always built from elements of
// All, never from anything else.
type Store[T any] struct {
	mu       sync.RWMutex
	state    State
	all      []T
	filtered []T
	query    string
	scope    string
	err      error
	loadedAt time.Time
	match    Matcher[T]
	now      func() time.Time
}

// NewStore returns an idle store. A nil matcher accepts everything.
func NewStore[T any](match Matcher[T]) *Store[T] {
	return &Store[T]{match: match, now: time.Now}
}

// Load fetches records for scope. On failure the previous lists are kept and
// the store enters StateError.
func (s *Store[T]) Load(ctx context.Context, scope string, fetch Fetcher[T]) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	items, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.err = err
		return err
	}
	s.all = items
	s.scope = scope
	s.err = nil
	s.state = StateLoaded
	s.loadedAt = s.now()
	s.applyFilter()
	return nil
}

// Filter narrows the filtered list without refetching.
func (s *Store[T]) Filter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = strings.TrimSpace(query)
	s.applyFilter()
}

// Loaded reports whether the store holds a successful load for scope.
func (s *Store[T]) Loaded(scope string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateLoaded && s.scope == scope
}

// Snapshot copies the current state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{
		State:    s.state,
		All:      append([]T(nil), s.all...),
		Filtered: append([]T(nil), s.filtered...),
		Query:    s.query,
		Scope:    s.scope,
		Err:      s.err,
		LoadedAt: s.loadedAt,
	}
}

func (s *Store[T]) applyFilter() {
	if s.query == "" || s.match == nil {
		s.filtered = s.all
		return
	}
	filtered := make([]T, 0, len(s.all))
	for _, item := range s.all {
		if s.match(item, s.query) {
			filtered = append(filtered, item)
		}
	}
	s.filtered = filtered
}

// ContainsFold is the usual matcher building block: case and accent
// insensitive substring search over any of the given fields.
func ContainsFold(query string, fields ...string) bool {
	q := fold(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(fold(f), q) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

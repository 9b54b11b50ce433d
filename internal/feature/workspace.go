package feature

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Workspace holds the module stores of one browser session.
type Workspace struct {
	mu      sync.Mutex
	stores  map[string]any
	touched time.Time
	group   singleflight.Group
}

// Do runs fn once per key at a time; concurrent callers share the result.
func (ws *Workspace) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	resultChan := ws.group.DoChan(key, func() (interface{}, error) {
		return nil, fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		return res.Err
	}
}

// StoreFor returns the workspace store registered under key, creating it on
// first use.
func StoreFor[T any](ws *Workspace, key string, match Matcher[T]) *Store[T] {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.stores == nil {
		ws.stores = make(map[string]any)
	}
	if existing, ok := ws.stores[key].(*Store[T]); ok {
		return existing
	}
	store := NewStore(match)
	ws.stores[key] = store
	return store
}

// Workspaces tracks one Workspace per session id and evicts idle ones.
type Workspaces struct {
	mu   sync.Mutex
	byID map[string]*Workspace
	ttl  time.Duration
	now  func() time.Time
}

// NewWorkspaces constructs the registry. ttl is the idle lifetime.
func NewWorkspaces(ttl time.Duration) *Workspaces {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Workspaces{byID: make(map[string]*Workspace), ttl: ttl, now: time.Now}
}

// For returns the workspace of sessionID, marking it as used.
func (w *Workspaces) For(sessionID string) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	ws, ok := w.byID[sessionID]
	if !ok || now.Sub(ws.touched) > w.ttl {
		ws = &Workspace{stores: make(map[string]any)}
		w.byID[sessionID] = ws
	}
	ws.touched = now
	return ws
}

// Drop discards the workspace of sessionID.
func (w *Workspaces) Drop(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.byID, sessionID)
}

// Sweep evicts idle workspaces and returns how many were removed.
func (w *Workspaces) Sweep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	removed := 0
	for id, ws := range w.byID {
		if now.Sub(ws.touched) > w.ttl {
			delete(w.byID, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live workspaces.
func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byID)
}

// Run sweeps on every tick until ctx is cancelled.
func (w *Workspaces) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

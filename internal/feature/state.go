// Package feature holds the machinery shared by every clinical module: the
// per-module record store and its load state machine, declarative form
// schemas, CSV export and the generic list/form HTTP handler.
package feature

// State is the load state of a module store.
type State int

// Store states. Idle -> Loading -> Loaded | Error.
const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

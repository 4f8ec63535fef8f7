// Package presence tracks which users currently hold a live, addressable
// connection. It is the single source of truth for "is this user online".
//
// The registry is process-wide state with process lifetime: entries are
// created when a connection identifies itself and removed only by the
// disconnect of that same connection. A restart loses all presence — clients
// are expected to re-identify on reconnect.
package presence

import "sync"

// Handle is an addressable live connection. Implementations are compared by
// identity (pointer equality), so the same connection object always resolves
// to the same handle.
type Handle interface {
	// Emit sends a named event with a JSON-serialisable payload to the peer.
	Emit(event string, payload any) error
}

// Registry maps a user ID to at most one active Handle.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Handle
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Handle)}
}

// Register stores h for userID only if no handle is registered yet
// (insert-if-absent: the first connection wins, duplicate identify events do
// not clobber an existing live handle). It reports whether h was stored.
func (r *Registry) Register(userID string, h Handle) bool {
	if userID == "" || h == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[userID]; exists {
		return false
	}
	r.sessions[userID] = h
	return true
}

// Unregister removes every entry whose handle is h, regardless of user ID.
// Removing by handle rather than by user means a stale disconnect for an
// already-reconnected user cannot evict the new connection; removing all
// matches means a handle that ended up bound under several IDs cannot leave
// a dangling "online forever" entry behind. No-op when h is not registered.
func (r *Registry) Unregister(h Handle) {
	if h == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, existing := range r.sessions {
		if existing == h {
			delete(r.sessions, userID)
		}
	}
}

// Lookup returns the active handle for userID, if any.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.sessions[userID]
	return h, ok
}

// Count returns the number of users currently online.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

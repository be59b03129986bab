package realtime

import (
	"sync"

	"wtrfll/server/internal/session/domain"
)

// ConnectionContext is what the hub remembers about an authenticated
// connection: which session it belongs to and as which role.
type ConnectionContext struct {
	SessionID string
	Role      domain.Role
}

// GroupName is the broadcast group shared by every connection in the session.
func (c ConnectionContext) GroupName() string {
	return "session:" + c.SessionID
}

// IsController reports whether the connection holds the controller seat.
func (c ConnectionContext) IsController() bool {
	return c.Role == domain.RoleController
}

// Registry maps live connection ids to their session context. A connection id
// registers exactly once; a second register under the same id is refused so a
// stale entry can never be silently overwritten.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]ConnectionContext
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]ConnectionContext)}
}

// TryRegister records the context for a connection id. It reports false when
// the id is already registered, leaving the existing entry untouched.
func (r *Registry) TryRegister(connID string, ctx ConnectionContext) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.conns[connID]; exists {
		return false
	}
	r.conns[connID] = ctx
	return true
}

// TryGet returns the context for a connection id.
func (r *Registry) TryGet(connID string) (ConnectionContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctx, ok := r.conns[connID]
	return ctx, ok
}

// TryRemove deletes and returns the context for a connection id.
func (r *Registry) TryRemove(connID string) (ConnectionContext, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
	}
	return ctx, ok
}

// Len reports the number of live registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

package realtime

import (
	"sort"
	"sync"
)

// Registry tracks which transport connections currently belong to which user,
// independent of conversation grouping. This is presence, not membership: a user
// is online iff it has at least one live connection, on any device or view.
//
// State is entirely transient and rebuilt from zero on process restart.
type Registry struct {
	mu    sync.RWMutex
	users map[int64]map[string]EventSink // userID -> connectionID -> sink
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[int64]map[string]EventSink)}
}

// Connect adds a connection for the user. It is idempotent for a given
// (userID, connectionID) pair and reports whether the user transitioned
// offline to online.
func (r *Registry) Connect(userID int64, connectionID string, sink EventSink) (online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.users[userID]
	if conns == nil {
		conns = make(map[string]EventSink)
		r.users[userID] = conns
	}
	wasOffline := len(conns) == 0
	conns[connectionID] = sink
	return wasOffline
}

// Disconnect removes a connection for the user. It reports whether the user
// transitioned online to offline. Removing an unknown connection is a no-op.
func (r *Registry) Disconnect(userID int64, connectionID string) (offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.users[userID]
	if conns == nil {
		return false
	}
	if _, ok := conns[connectionID]; !ok {
		return false
	}
	delete(conns, connectionID)
	if len(conns) == 0 {
		delete(r.users, userID)
		return true
	}
	return false
}

// ConnectionsFor returns the live sinks of the user. The result is a snapshot
// and may be empty; it never fails.
func (r *Registry) ConnectionsFor(userID int64) []EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.users[userID]
	if len(conns) == 0 {
		return nil
	}
	sinks := make([]EventSink, 0, len(conns))
	for _, s := range conns {
		sinks = append(sinks, s)
	}
	return sinks
}

// IsOnline reports whether the user has any live connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// OnlineUsers returns the identities of all users with at least one live
// connection, in ascending order.
func (r *Registry) OnlineUsers() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllConnections returns every live sink except those belonging to exceptUserID.
// Pass a negative id to include everyone.
func (r *Registry) AllConnections(exceptUserID int64) []EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []EventSink
	for userID, conns := range r.users {
		if userID == exceptUserID {
			continue
		}
		for _, s := range conns {
			sinks = append(sinks, s)
		}
	}
	return sinks
}

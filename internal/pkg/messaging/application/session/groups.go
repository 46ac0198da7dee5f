package session

import (
	"sync"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
)

// member is one transport connection subscribed to a conversation.
type member struct {
	connID string
	userID int64
	sink   realtime.EventSink
}

// liveGroup holds the live connections of one conversation. Its mutex
// serializes joins, sends and read-marking for that conversation, which keeps
// broadcast order identical to persistence order and makes history replay
// exactly-once from the joining connection's point of view.
type liveGroup struct {
	name    string
	mu      sync.Mutex
	members map[string]member
}

// The methods below assume the caller holds g.mu.

func (g *liveGroup) add(m member) {
	g.members[m.connID] = m
}

func (g *liveGroup) remove(connID string) {
	delete(g.members, connID)
}

func (g *liveGroup) hasUser(userID int64) bool {
	for _, m := range g.members {
		if m.userID == userID {
			return true
		}
	}
	return false
}

// broadcast hands the frame to every member except exceptConnID (empty means
// everyone). Send errors are the sink's concern; a slow client is closed by its
// own backpressure handling.
func (g *liveGroup) broadcast(frame []byte, exceptConnID string) {
	for _, m := range g.members {
		if exceptConnID != "" && m.connID == exceptConnID {
			continue
		}
		_ = m.sink.Send(frame)
	}
}

// groupTable maps conversation keys to live groups and connection ids to their
// group, so disconnects never rely on cached state.
type groupTable struct {
	mu     sync.Mutex
	groups map[string]*liveGroup
	byConn map[string]*liveGroup
}

func newGroupTable() *groupTable {
	return &groupTable{
		groups: make(map[string]*liveGroup),
		byConn: make(map[string]*liveGroup),
	}
}

// acquire returns the live group for the key, creating it if absent. Creation
// is serialized on the table mutex, so two participants joining a brand-new
// conversation concurrently converge on one group.
func (t *groupTable) acquire(name string) *liveGroup {
	t.mu.Lock()
	defer t.mu.Unlock()

	g := t.groups[name]
	if g == nil {
		g = &liveGroup{name: name, members: make(map[string]member)}
		t.groups[name] = g
	}
	return g
}

func (t *groupTable) bind(connID string, g *liveGroup) {
	t.mu.Lock()
	t.byConn[connID] = g
	t.mu.Unlock()
}

func (t *groupTable) unbind(connID string) {
	t.mu.Lock()
	delete(t.byConn, connID)
	t.mu.Unlock()
}

func (t *groupTable) groupFor(connID string) *liveGroup {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byConn[connID]
}

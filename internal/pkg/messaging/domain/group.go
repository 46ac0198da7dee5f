package messaging

import "time"

// Group is the persisted record of a two-party conversation channel. Its name is
// the deterministic conversation key; connections are the transport sessions
// currently subscribed to it. Groups are created lazily and never deleted, so
// reconnecting peers always resolve the same grouping key.
type Group struct {
	Name        string       `db:"name"`
	Connections []Connection `db:"-"`
}

// HasUser reports whether any live connection in the group belongs to userID.
func (g *Group) HasUser(userID int64) bool {
	if g == nil {
		return false
	}
	for _, c := range g.Connections {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// Connection is a transport session subscribed to a group. The ID is the
// transport-assigned token; rows are ephemeral even though they are persisted,
// and must be cleaned up on disconnect.
type Connection struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	GroupName string    `db:"group_name"`
	CreatedAt time.Time `db:"created_at"`
}

package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	payloads [][]byte
}

func (s *recordingSink) Send(payload []byte) error {
	s.payloads = append(s.payloads, payload)
	return nil
}

func TestRegistry_Connect_FirstConnectionBringsUserOnline(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &recordingSink{}

	online := registry.Connect(5, uuid.NewString(), sink)

	req.True(online)
	req.True(registry.IsOnline(5))
	req.Len(registry.ConnectionsFor(5), 1)
}

func TestRegistry_Connect_SecondDeviceDoesNotRetransition(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	online := registry.Connect(5, "conn-a", &recordingSink{})
	req.True(online)

	online = registry.Connect(5, "conn-b", &recordingSink{})
	req.False(online)
	req.Len(registry.ConnectionsFor(5), 2)
}

func TestRegistry_Connect_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &recordingSink{}

	registry.Connect(5, "conn-a", sink)
	online := registry.Connect(5, "conn-a", sink)

	req.False(online)
	req.Len(registry.ConnectionsFor(5), 1)
}

func TestRegistry_Disconnect_LastConnectionBringsUserOffline(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Connect(5, "conn-a", &recordingSink{})
	registry.Connect(5, "conn-b", &recordingSink{})

	offline := registry.Disconnect(5, "conn-a")
	req.False(offline)
	req.True(registry.IsOnline(5))

	offline = registry.Disconnect(5, "conn-b")
	req.True(offline)
	req.False(registry.IsOnline(5))
	req.Empty(registry.ConnectionsFor(5))
}

func TestRegistry_Disconnect_UnknownConnectionIsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Connect(5, "conn-a", &recordingSink{})

	req.False(registry.Disconnect(5, "missing"))
	req.False(registry.Disconnect(9, "conn-a"))
	req.True(registry.IsOnline(5))
}

func TestRegistry_Disconnect_Twice(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Connect(5, "conn-a", &recordingSink{})

	req.True(registry.Disconnect(5, "conn-a"))
	req.False(registry.Disconnect(5, "conn-a"))
}

func TestRegistry_OnlineUsers_Sorted(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Connect(9, "conn-a", &recordingSink{})
	registry.Connect(5, "conn-b", &recordingSink{})
	registry.Connect(5, "conn-c", &recordingSink{})

	req.Equal([]int64{5, 9}, registry.OnlineUsers())
}

func TestRegistry_AllConnections_Except(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Connect(5, "conn-a", &recordingSink{})
	registry.Connect(9, "conn-b", &recordingSink{})
	registry.Connect(9, "conn-c", &recordingSink{})

	req.Len(registry.AllConnections(-1), 3)
	req.Len(registry.AllConnections(9), 1)
}

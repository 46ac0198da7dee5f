package controller

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/event"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/notify"
	userrepo "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

type recordedFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type presenceSink struct {
	mu     sync.Mutex
	frames []recordedFrame
}

func (s *presenceSink) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var f recordedFrame
	if err := json.Unmarshal(payload, &f); err != nil {
		return err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *presenceSink) count(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.frames {
		if f.Type == eventType {
			n++
		}
	}
	return n
}

func (s *presenceSink) lastRoster(t *testing.T) []int64 {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Type == event.GetOnlineUsers {
			var roster []int64
			require.NoError(t, json.Unmarshal(s.frames[i].Payload, &roster))
			return roster
		}
	}
	t.Fatal("no roster frame recorded")
	return nil
}

type stubUsers struct {
	mu      sync.Mutex
	stamped []int64
}

func (s *stubUsers) GetUserByID(_ context.Context, userID int64) (*userrepo.User, error) {
	return &userrepo.User{ID: userID}, nil
}

func (s *stubUsers) UpdateLastActive(_ context.Context, userID int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamped = append(s.stamped, userID)
	return nil
}

func TestPresence_AnnouncesOnlyOnEdges(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry()
	relay := notify.NewRelay(registry)
	users := &stubUsers{}
	ctl := NewPresenceSocketController(registry, relay, users)

	// User 9 watches from a single socket.
	watcher := &presenceSink{}
	ctl.register(9, "conn-9", watcher)

	// User 5 opens two sockets, then closes both.
	ctl.register(5, "conn-5-a", &presenceSink{})
	ctl.register(5, "conn-5-b", &presenceSink{})
	ctl.unregister(5, "conn-5-a")
	ctl.unregister(5, "conn-5-b")

	// The watcher hears one online and one offline announcement, not one per
	// socket, while the roster refresh goes out on every transition.
	req.Equal(1, watcher.count(event.UserOnline))
	req.Equal(1, watcher.count(event.UserOffline))
	req.Equal(5, watcher.count(event.GetOnlineUsers))
	req.Equal([]int64{9}, watcher.lastRoster(t))

	// Last-active is stamped once, when the final socket went away.
	users.mu.Lock()
	defer users.mu.Unlock()
	req.Equal([]int64{5}, users.stamped)
}

package notify

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/event"
)

type sink struct {
	frames [][]byte
	fail   bool
}

func (s *sink) Send(payload []byte) error {
	if s.fail {
		return errors.New("gone")
	}
	s.frames = append(s.frames, payload)
	return nil
}

func TestRelay_ToUser_DeliversToEveryDevice(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry()
	relay := NewRelay(registry)

	phone := &sink{}
	laptop := &sink{}
	registry.Connect(9, "conn-phone", phone)
	registry.Connect(9, "conn-laptop", laptop)

	delivered := relay.ToUser(9, event.UserOnline, int64(5))

	req.Equal(2, delivered)
	req.Len(phone.frames, 1)
	req.Len(laptop.frames, 1)

	var env event.Envelope
	req.NoError(json.Unmarshal(phone.frames[0], &env))
	req.Equal(event.UserOnline, env.Type)
}

func TestRelay_ToUser_OfflineRecipientIsNoop(t *testing.T) {
	req := require.New(t)
	relay := NewRelay(realtime.NewRegistry())

	req.Zero(relay.ToUser(9, event.NewMessageReceived, nil))
}

func TestRelay_SendFailureDoesNotStopFanout(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry()
	relay := NewRelay(registry)

	broken := &sink{fail: true}
	healthy := &sink{}
	registry.Connect(9, "conn-a", broken)
	registry.Connect(9, "conn-b", healthy)

	delivered := relay.ToUser(9, event.UserOffline, int64(5))

	req.Equal(1, delivered)
	req.Len(healthy.frames, 1)
}

func TestRelay_ToAllExcept(t *testing.T) {
	req := require.New(t)
	registry := realtime.NewRegistry()
	relay := NewRelay(registry)

	mine := &sink{}
	other := &sink{}
	registry.Connect(5, "conn-a", mine)
	registry.Connect(9, "conn-b", other)

	relay.ToAllExcept(5, event.UserOnline, int64(5))

	req.Empty(mine.frames)
	req.Len(other.frames, 1)
}

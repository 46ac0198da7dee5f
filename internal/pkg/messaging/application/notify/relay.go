package notify

import (
	"log"
	"os"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/event"
)

// Relay fans a named event out to live connections resolved through the
// presence registry. Delivery is best-effort: a user with zero live connections
// is the expected offline case, and individual send failures are logged and
// swallowed so they never abort the primary operation.
type Relay struct {
	registry *realtime.Registry
	logger   *log.Logger
}

func NewRelay(registry *realtime.Registry) *Relay {
	return &Relay{
		registry: registry,
		logger:   log.New(os.Stdout, "[RELAY] ", log.LstdFlags),
	}
}

// ToUser pushes the event to every live connection of the user. Returns the
// number of connections the event was handed to.
func (r *Relay) ToUser(userID int64, eventType string, payload any) int {
	return r.deliver(r.registry.ConnectionsFor(userID), eventType, payload)
}

// ToUsers pushes the event to every live connection of each listed user.
func (r *Relay) ToUsers(userIDs []int64, eventType string, payload any) {
	for _, id := range userIDs {
		r.ToUser(id, eventType, payload)
	}
}

// ToAll pushes the event to every live connection in the registry.
func (r *Relay) ToAll(eventType string, payload any) {
	r.deliver(r.registry.AllConnections(-1), eventType, payload)
}

// ToAllExcept pushes the event to everyone but the given user.
func (r *Relay) ToAllExcept(userID int64, eventType string, payload any) {
	r.deliver(r.registry.AllConnections(userID), eventType, payload)
}

func (r *Relay) deliver(sinks []realtime.EventSink, eventType string, payload any) int {
	if len(sinks) == 0 {
		return 0
	}
	frame, err := event.Marshal(eventType, payload)
	if err != nil {
		r.logger.Printf("drop %s: encode: %v", eventType, err)
		return 0
	}
	delivered := 0
	for _, sink := range sinks {
		if err := sink.Send(frame); err != nil {
			r.logger.Printf("drop %s: %v", eventType, err)
			continue
		}
		delivered++
	}
	return delivered
}

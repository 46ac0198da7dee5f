package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/auth"
	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/event"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/notify"
	userrepo "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

// PresenceSocketController handles the long-lived presence websocket. A user is
// online while at least one presence socket is open; transitions fan out
// UserOnline/UserOffline plus a refreshed online roster.
type PresenceSocketController struct {
	registry *realtime.Registry
	relay    *notify.Relay
	users    userrepo.UserRepository
}

func NewPresenceSocketController(registry *realtime.Registry, relay *notify.Relay, users userrepo.UserRepository) *PresenceSocketController {
	return &PresenceSocketController{registry: registry, relay: relay, users: users}
}

// Handle upgrades the connection and parks it until the client goes away.
// The socket carries no inbound frames; it exists to signal liveness.
func (ctl *PresenceSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()

		ctl.register(userID, conn.ID, conn)
		defer func() {
			ctl.unregister(userID, conn.ID)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		// Drain until the client closes or the read deadline fires.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// register tracks the socket and announces the user when this is their first
// open one. The roster refresh goes out on every connect so late sockets get a
// current view.
func (ctl *PresenceSocketController) register(userID int64, connID string, sink realtime.EventSink) {
	if online := ctl.registry.Connect(userID, connID, sink); online {
		ctl.relay.ToAllExcept(userID, event.UserOnline, userID)
	}
	ctl.relay.ToAll(event.GetOnlineUsers, ctl.registry.OnlineUsers())
}

// unregister is the inverse: UserOffline and the last-active stamp fire only
// when the user's final socket goes away.
func (ctl *PresenceSocketController) unregister(userID int64, connID string) {
	if offline := ctl.registry.Disconnect(userID, connID); offline {
		ctl.relay.ToAllExcept(userID, event.UserOffline, userID)
		ctl.touchLastActive(userID)
	}
	ctl.relay.ToAll(event.GetOnlineUsers, ctl.registry.OnlineUsers())
}

func (ctl *PresenceSocketController) touchLastActive(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	// Best effort: presence teardown must not fail on a slow database.
	_ = ctl.users.UpdateLastActive(ctx, userID, time.Now().UTC())
}

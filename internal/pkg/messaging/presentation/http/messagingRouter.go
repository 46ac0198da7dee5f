package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/notify"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/session"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/presentation/controller"
	userrepo "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

// RegisterRoutes registers messaging HTTP and websocket endpoints under the
// given router group. It constructs per-endpoint controllers and binds them
// directly to routes.
func RegisterRoutes(
	g *gin.RouterGroup,
	pool *pgxpool.Pool,
	coordinator *session.Coordinator,
	registry *realtime.Registry,
	relay *notify.Relay,
	users userrepo.UserRepository,
) {
	chatsCtl := controller.NewGetChatsController(pool, users)
	threadCtl := controller.NewGetThreadController(pool)
	sendCtl := controller.NewSendMessageController(coordinator)
	deleteCtl := controller.NewDeleteMessageController(coordinator)
	notifCtl := controller.NewNotificationsController(pool)
	chatSocketCtl := controller.NewChatSocketController(coordinator)
	presenceCtl := controller.NewPresenceSocketController(registry, relay, users)

	// GET /api/v1/chats -> the caller's conversation list
	g.GET("/chats", chatsCtl.Handle())

	// GET /api/v1/chats/:partnerId/messages -> full thread with one partner
	g.GET("/chats/:partnerId/messages", threadCtl.Handle())

	// POST /api/v1/messages -> send a message without a socket
	g.POST("/messages", sendCtl.Handle())

	// DELETE /api/v1/messages/:messageId -> hide (or remove) a message
	g.DELETE("/messages/:messageId", deleteCtl.Handle())

	// GET /api/v1/notifications, PUT /api/v1/notifications/:notificationId/read
	g.GET("/notifications", notifCtl.List())
	g.PUT("/notifications/:notificationId/read", notifCtl.MarkRead())

	// GET /api/v1/chat/ws?userId=<partner> -> conversation websocket
	g.GET("/chat/ws", chatSocketCtl.Handle())

	// GET /api/v1/presence/ws -> presence websocket
	g.GET("/presence/ws", presenceCtl.Handle())
}

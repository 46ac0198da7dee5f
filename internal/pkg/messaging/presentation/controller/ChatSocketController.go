package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/auth"
	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/session"
	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
)

// ChatSocketController handles the websocket endpoint for one-to-one chat
// traffic. Each socket is scoped to a single conversation: the partner is
// fixed at handshake time and every frame on the socket refers to it.
type ChatSocketController struct {
	coordinator     *session.Coordinator
	validate        *validator.Validate
	inflightTimeout time.Duration
}

func NewChatSocketController(coordinator *session.Coordinator) *ChatSocketController {
	return &ChatSocketController{
		coordinator:     coordinator,
		validate:        validator.New(),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when deployed behind a gateway.
		return true
	},
}

type inboundFrame struct {
	Type      string `json:"type" validate:"required"`
	Content   string `json:"content,omitempty"`
	MessageID int64  `json:"messageId,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket, joins the caller to the
// conversation with the partner named in the query string, and processes
// frames until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		partnerID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing else to do.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()

		joinCtx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		err = ctl.coordinator.Join(joinCtx, conn.ID, userID, partnerID, conn)
		cancel()
		if err != nil {
			ctl.replyError(conn, joinErrorCode(err), "could not join conversation")
			conn.Close(websocket.ClosePolicyViolation, "join refused")
			return
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
			ctl.coordinator.Disconnect(ctx, conn.ID, userID)
			cancel()
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}
			if err := ctl.validate.Struct(frame); err != nil {
				ctl.replyError(conn, "bad_request", "type is required")
				continue
			}

			ctl.dispatch(c, conn, userID, partnerID, frame)
		}
	}
}

func (ctl *ChatSocketController) dispatch(c *gin.Context, conn *realtime.Connection, userID, partnerID int64, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	switch frame.Type {
	case "send_message":
		if err := ctl.coordinator.Send(ctx, userID, partnerID, frame.Content); err != nil {
			ctl.handleSessionError(conn, err)
		}
	case "edit_message":
		if err := ctl.coordinator.Edit(ctx, userID, frame.MessageID, frame.Content); err != nil {
			ctl.handleSessionError(conn, err)
		}
	case "delete_message":
		if err := ctl.coordinator.Delete(ctx, userID, frame.MessageID); err != nil {
			ctl.handleSessionError(conn, err)
		}
	case "mark_read":
		if err := ctl.coordinator.MarkRead(ctx, userID, partnerID); err != nil {
			ctl.handleSessionError(conn, err)
		}
	case "typing_started":
		ctl.coordinator.Typing(conn.ID, userID, partnerID, true)
	case "typing_stopped":
		ctl.coordinator.Typing(conn.ID, userID, partnerID, false)
	default:
		ctl.replyError(conn, "unsupported_type", "unknown frame type")
	}
}

func (ctl *ChatSocketController) handleSessionError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, session.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, messaging.ErrUnauthorized):
		ctl.replyError(conn, "forbidden", "caller does not own this message")
	case errors.Is(err, messaging.ErrMessageNotFound):
		ctl.replyError(conn, "not_found", "message not found")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, messaging.ErrInvalidPartner):
		return "bad_request"
	case errors.Is(err, session.ErrPersistence):
		return "internal_error"
	default:
		return "bad_request"
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{
		Type:  "error",
		Code:  code,
		Error: message,
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

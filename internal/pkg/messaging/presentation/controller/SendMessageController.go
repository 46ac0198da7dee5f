package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/auth"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/session"
	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
)

// SendMessageController accepts a message over plain HTTP and routes it through
// the same session coordinator as the websocket path, so delivery, read state
// and notifications behave identically (one controller per endpoint).
type SendMessageController struct {
	coordinator *session.Coordinator
	validate    *validator.Validate
}

func NewSendMessageController(coordinator *session.Coordinator) *SendMessageController {
	return &SendMessageController{coordinator: coordinator, validate: validator.New()}
}

type sendMessageRequest struct {
	RecipientID int64  `json:"recipientId" validate:"required,gt=0"`
	Content     string `json:"content" validate:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if err := h.validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipientId and content are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.coordinator.Send(ctx, userID, req.RecipientID, req.Content); err != nil {
			switch {
			case errors.Is(err, session.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
			case errors.Is(err, messaging.ErrInvalidRecipient), errors.Is(err, messaging.ErrEmptyMessage):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.Status(http.StatusCreated)
	}
}

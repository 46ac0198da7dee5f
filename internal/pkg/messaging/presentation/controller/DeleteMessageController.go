package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/auth"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/session"
	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
)

// DeleteMessageController hides a message for the caller; when both sides have
// hidden it the row is removed for good (one controller per endpoint).
type DeleteMessageController struct {
	coordinator *session.Coordinator
}

func NewDeleteMessageController(coordinator *session.Coordinator) *DeleteMessageController {
	return &DeleteMessageController{coordinator: coordinator}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId must be numeric"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.coordinator.Delete(ctx, userID, messageID); err != nil {
			switch {
			case errors.Is(err, messaging.ErrMessageNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			case errors.Is(err, messaging.ErrUnauthorized):
				c.JSON(http.StatusForbidden, gin.H{"error": "caller is not a participant"})
			case errors.Is(err, session.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.Status(http.StatusNoContent)
	}
}

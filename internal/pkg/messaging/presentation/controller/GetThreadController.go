package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/auth"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/usecase"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/adapter"
)

// GetThreadController returns the caller's conversation history with one
// partner, oldest first (one controller per endpoint).
type GetThreadController struct {
	UC *usecase.GetThreadUseCase
}

func NewGetThreadController(pool *pgxpool.Pool) *GetThreadController {
	repo := adapter.NewPgMessageRepository(pool)
	return &GetThreadController{UC: usecase.NewGetThreadUseCase(repo)}
}

func (h *GetThreadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		partnerID, err := strconv.ParseInt(c.Param("partnerId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "partnerId must be numeric"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, userID, partnerID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		// Serialize explicitly; the domain struct carries db tags only.
		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":          m.ID,
				"senderId":    m.SenderID,
				"recipientId": m.RecipientID,
				"content":     m.Content,
				"sentAt":      m.SentAt,
				"readAt":      m.ReadAt,
				"isRead":      m.IsRead(),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": out,
			"count":    len(out),
		})
	}
}

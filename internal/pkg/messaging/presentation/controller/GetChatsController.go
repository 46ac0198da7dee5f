package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/auth"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/usecase"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/adapter"
	userrepo "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

// GetChatsController lists the caller's conversations, newest activity first
// (one controller per endpoint).
type GetChatsController struct {
	UC *usecase.GetUserChatsUseCase
}

func NewGetChatsController(pool *pgxpool.Pool, users userrepo.UserRepository) *GetChatsController {
	repo := adapter.NewPgMessageRepository(pool)
	return &GetChatsController{UC: usecase.NewGetUserChatsUseCase(repo, users)}
}

func (h *GetChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		chats, err := h.UC.Execute(ctx, userID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"chats": chats,
			"count": len(chats),
		})
	}
}

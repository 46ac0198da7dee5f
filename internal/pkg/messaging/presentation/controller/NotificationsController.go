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
	msgrepo "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/port"
)

// NotificationsController lists the caller's stored notifications and lets a
// single one be acknowledged (one controller per endpoint pair).
type NotificationsController struct {
	UC   *usecase.ListNotificationsUseCase
	repo msgrepo.NotificationRepository
}

func NewNotificationsController(pool *pgxpool.Pool) *NotificationsController {
	repo := adapter.NewPgNotificationRepository(pool)
	return &NotificationsController{UC: usecase.NewListNotificationsUseCase(repo), repo: repo}
}

func (h *NotificationsController) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		notifications, err := h.UC.Execute(ctx, userID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(notifications))
		for _, n := range notifications {
			out = append(out, gin.H{
				"id":          n.ID,
				"recipientId": n.RecipientID,
				"actorId":     n.ActorID,
				"type":        n.Type,
				"message":     n.Message,
				"messageId":   n.MessageID,
				"isRead":      n.IsRead,
				"createdAt":   n.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"notifications": out,
			"count":         len(out),
		})
	}
}

func (h *NotificationsController) MarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CallerID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		notificationID, err := strconv.ParseInt(c.Param("notificationId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "notificationId must be numeric"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.repo.MarkNotificationRead(ctx, notificationID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notification"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}

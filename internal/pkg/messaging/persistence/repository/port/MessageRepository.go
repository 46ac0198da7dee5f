package repository

import (
	"context"
	"time"

	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
)

// MessageRepository defines persistence operations for the messaging domain.
// Each call is assumed transactional in isolation; batch read-marking is a single
// statement so it stays all-or-nothing.
type MessageRepository interface {
	// Messages
	SaveMessage(ctx context.Context, m *messaging.Message) error
	GetMessage(ctx context.Context, messageID int64) (*messaging.Message, error)
	// GetThread returns the full conversation between the two users ordered by
	// SentAt ascending, excluding messages the calling user soft-deleted.
	GetThread(ctx context.Context, userID, partnerID int64) ([]messaging.Message, error)
	// MarkRead stamps readAt on all listed messages in one statement.
	MarkRead(ctx context.Context, messageIDs []int64, readAt time.Time) error
	UpdateContent(ctx context.Context, messageID int64, content string) error
	UpdateDeletionFlags(ctx context.Context, m *messaging.Message) error
	HardDeleteMessage(ctx context.Context, messageID int64) error
	UnreadCount(ctx context.Context, userID, partnerID int64) (int, error)
	// LatestPerPartner returns, for each conversation the user takes part in, the
	// most recent message visible to that user, newest conversation first.
	LatestPerPartner(ctx context.Context, userID int64) ([]messaging.Message, error)

	// Conversation groups
	// GetGroup returns the group and its registered connections, or nil when
	// the group does not exist yet.
	GetGroup(ctx context.Context, name string) (*messaging.Group, error)
	// AddToGroup upserts the group row and registers the connection in it.
	// Safe to call concurrently for the same name from both participants.
	AddToGroup(ctx context.Context, name string, conn messaging.Connection) error
	RemoveConnection(ctx context.Context, connectionID string) error
}

// NotificationRepository persists out-of-band notification records for users who
// were not viewing the conversation when a message arrived.
type NotificationRepository interface {
	AddNotification(ctx context.Context, n *messaging.Notification) error
	GetNotificationsForUser(ctx context.Context, userID int64) ([]messaging.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID int64) error
}

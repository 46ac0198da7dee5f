package messaging

import "time"

// NotificationType discriminates persisted notification records.
type NotificationType string

const (
	NotificationNewMessage NotificationType = "new_message"
)

// Notification is the persisted record written when a message cannot be
// delivered into the recipient's open conversation view. It backs the
// notification list the client fetches on its next visit.
type Notification struct {
	ID          int64            `db:"id"`
	RecipientID int64            `db:"recipient_id"`
	ActorID     int64            `db:"actor_id"`
	Type        NotificationType `db:"type"`
	Message     string           `db:"message"`
	MessageID   *int64           `db:"message_id"`
	IsRead      bool             `db:"is_read"`
	CreatedAt   time.Time        `db:"created_at"`
}

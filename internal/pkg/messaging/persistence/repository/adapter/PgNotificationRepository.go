package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
)

type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

func (r *PgNotificationRepository) AddNotification(ctx context.Context, n *messaging.Notification) error {
	if r == nil || r.pool == nil {
		return errors.New("PgNotificationRepository: nil pool")
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO chat.notification (recipient_id, actor_id, type, message, message_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, n.RecipientID, n.ActorID, n.Type, n.Message, n.MessageID, n.IsRead, n.CreatedAt).Scan(&n.ID)
}

func (r *PgNotificationRepository) GetNotificationsForUser(ctx context.Context, userID int64) ([]messaging.Notification, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgNotificationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, recipient_id, actor_id, type, message, message_id, is_read, created_at
		FROM chat.notification
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []messaging.Notification
	for rows.Next() {
		var n messaging.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.Message, &n.MessageID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PgNotificationRepository) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgNotificationRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.notification SET is_read = TRUE WHERE id = $1
	`, notificationID)
	return err
}

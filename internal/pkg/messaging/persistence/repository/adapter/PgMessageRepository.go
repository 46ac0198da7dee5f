package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
)

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) SaveMessage(ctx context.Context, m *messaging.Message) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (
			sender_id, recipient_id, content, sent_at, read_at, sender_deleted, recipient_deleted, group_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, m.SenderID, m.RecipientID, m.Content, m.SentAt, m.ReadAt, m.SenderDeleted, m.RecipientDeleted, m.GroupName).Scan(&m.ID)
}

func (r *PgMessageRepository) GetMessage(ctx context.Context, messageID int64) (*messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	var m messaging.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id, sender_id, recipient_id, content, sent_at, read_at, sender_deleted, recipient_deleted, group_name
		FROM chat.message
		WHERE id = $1
	`, messageID).Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.SentAt, &m.ReadAt,
		&m.SenderDeleted, &m.RecipientDeleted, &m.GroupName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, messaging.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgMessageRepository) GetThread(ctx context.Context, userID, partnerID int64) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, recipient_id, content, sent_at, read_at, sender_deleted, recipient_deleted, group_name
		FROM chat.message
		WHERE (recipient_id = $1 AND sender_id = $2 AND NOT recipient_deleted)
		   OR (recipient_id = $2 AND sender_id = $1 AND NOT sender_deleted)
		ORDER BY sent_at ASC
	`, userID, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, messageIDs []int64, readAt time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	if len(messageIDs) == 0 {
		return nil
	}
	// Single statement keeps the batch all-or-nothing; read_at is never overwritten.
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.message
		SET read_at = $2
		WHERE id = ANY($1) AND read_at IS NULL
	`, messageIDs, readAt)
	return err
}

func (r *PgMessageRepository) UpdateContent(ctx context.Context, messageID int64, content string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.message SET content = $2 WHERE id = $1
	`, messageID, content)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrMessageNotFound
	}
	return nil
}

func (r *PgMessageRepository) UpdateDeletionFlags(ctx context.Context, m *messaging.Message) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.message
		SET sender_deleted = $2, recipient_deleted = $3
		WHERE id = $1
	`, m.ID, m.SenderDeleted, m.RecipientDeleted)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrMessageNotFound
	}
	return nil
}

func (r *PgMessageRepository) HardDeleteMessage(ctx context.Context, messageID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM chat.message WHERE id = $1`, messageID)
	return err
}

func (r *PgMessageRepository) UnreadCount(ctx context.Context, userID, partnerID int64) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chat.message
		WHERE recipient_id = $1 AND sender_id = $2 AND read_at IS NULL AND NOT recipient_deleted
	`, userID, partnerID).Scan(&count)
	return count, err
}

func (r *PgMessageRepository) LatestPerPartner(ctx context.Context, userID int64) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (partner_id)
			id, sender_id, recipient_id, content, sent_at, read_at, sender_deleted, recipient_deleted, group_name
		FROM (
			SELECT *,
				CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS partner_id
			FROM chat.message
			WHERE (recipient_id = $1 AND NOT recipient_deleted)
			   OR (sender_id = $1 AND NOT sender_deleted)
		) visible
		ORDER BY partner_id, sent_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PgMessageRepository) GetGroup(ctx context.Context, name string) (*messaging.Group, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat.chat_group WHERE name = $1)`, name,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	group := &messaging.Group{Name: name}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, group_name, created_at
		FROM chat.group_connection
		WHERE group_name = $1
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c messaging.Connection
		if err := rows.Scan(&c.ID, &c.UserID, &c.GroupName, &c.CreatedAt); err != nil {
			return nil, err
		}
		group.Connections = append(group.Connections, c)
	}
	return group, rows.Err()
}

func (r *PgMessageRepository) AddToGroup(ctx context.Context, name string, conn messaging.Connection) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	// Upsert keyed by the deterministic name, so concurrent joins from both
	// participants converge on one group row.
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO chat.chat_group (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.group_connection (id, user_id, group_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET group_name = EXCLUDED.group_name
	`, conn.ID, conn.UserID, name, conn.CreatedAt)
	return err
}

func (r *PgMessageRepository) RemoveConnection(ctx context.Context, connectionID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM chat.group_connection WHERE id = $1`, connectionID)
	return err
}

func scanMessages(rows pgx.Rows) ([]messaging.Message, error) {
	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.SentAt, &m.ReadAt,
			&m.SenderDeleted, &m.RecipientDeleted, &m.GroupName); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

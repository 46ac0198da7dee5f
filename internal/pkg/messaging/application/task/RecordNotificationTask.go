package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/queue/port"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/session"
	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
	msgrepo "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/port"
)

// RegisterRecordNotificationTask binds the offline-path notification record
// handler to the worker server. The handler is idempotent from the client's
// point of view: a duplicate record is harmless, a lost one is recovered by
// asynq's retry policy.
func RegisterRecordNotificationTask(srv qport.Server, repo msgrepo.NotificationRepository) {
	srv.Register(session.RecordNotificationTaskType, func(ctx context.Context, t qport.Task) error {
		var p session.RecordNotificationPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payload: retrying will not help.
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		messageID := p.MessageID
		return repo.AddNotification(ctx, &messaging.Notification{
			RecipientID: p.RecipientID,
			ActorID:     p.ActorID,
			Type:        messaging.NotificationNewMessage,
			Message:     p.Message,
			MessageID:   &messageID,
			CreatedAt:   p.Timestamp,
		})
	})
}

package usecase

import (
	"context"
	"fmt"

	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
	msgrepo "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/port"
)

// ListNotificationsUseCase returns the persisted notification records for a
// user, newest first.
type ListNotificationsUseCase struct {
	Repo msgrepo.NotificationRepository
}

func NewListNotificationsUseCase(repo msgrepo.NotificationRepository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{Repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, userID int64) ([]messaging.Notification, error) {
	out, err := uc.Repo.GetNotificationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

package usecase

import (
	"context"
	"fmt"

	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
	msgrepo "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/port"
)

// GetThreadUseCase fetches the full conversation between the caller and a
// partner, excluding messages the caller soft-deleted.
type GetThreadUseCase struct {
	Repo msgrepo.MessageRepository
}

func NewGetThreadUseCase(repo msgrepo.MessageRepository) *GetThreadUseCase {
	return &GetThreadUseCase{Repo: repo}
}

func (uc *GetThreadUseCase) Execute(ctx context.Context, userID, partnerID int64) ([]messaging.Message, error) {
	if userID == partnerID {
		return nil, messaging.ErrInvalidRecipient
	}
	msgs, err := uc.Repo.GetThread(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}

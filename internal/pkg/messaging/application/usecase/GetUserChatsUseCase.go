package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/event"
	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
	msgrepo "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/port"
	userrepo "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

// Chat is one entry in the user's conversation list.
type Chat struct {
	GroupName    string               `json:"groupName"`
	Partner      *userrepo.User       `json:"partner"`
	LastMessage  event.MessagePayload `json:"lastMessage"`
	LastActivity time.Time            `json:"lastActivity"`
	UnreadCount  int                  `json:"unreadCount"`
}

// GetUserChatsUseCase builds the chat list: for each conversation the most
// recent visible message, partner profile and unread count, newest first.
type GetUserChatsUseCase struct {
	Repo  msgrepo.MessageRepository
	Users userrepo.UserRepository
}

func NewGetUserChatsUseCase(repo msgrepo.MessageRepository, users userrepo.UserRepository) *GetUserChatsUseCase {
	return &GetUserChatsUseCase{Repo: repo, Users: users}
}

func (uc *GetUserChatsUseCase) Execute(ctx context.Context, userID int64) ([]Chat, error) {
	latest, err := uc.Repo.LatestPerPartner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	chats := make([]Chat, 0, len(latest))
	for _, m := range latest {
		partnerID := m.PartnerOf(userID)

		partner, err := uc.Users.GetUserByID(ctx, partnerID)
		if err != nil {
			// A vanished account should not break the whole list.
			continue
		}

		sender := partner
		if m.SenderID == userID {
			if self, err := uc.Users.GetUserByID(ctx, userID); err == nil {
				sender = self
			}
		}

		unread, err := uc.Repo.UnreadCount(ctx, userID, partnerID)
		if err != nil {
			unread = 0
		}

		chats = append(chats, Chat{
			GroupName:    messaging.GroupName(userID, partnerID),
			Partner:      partner,
			LastMessage:  event.FromMessage(m, sender.DisplayName(), sender.ProfilePhotoURL),
			LastActivity: m.SentAt,
			UnreadCount:  unread,
		})
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastActivity.After(chats[j].LastActivity)
	})
	return chats, nil
}

package repository

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user repository: user not found")

// User carries the identity fields the messaging core reads for event payloads.
// Account mutation lives with the account service; this side only reads, except
// for the presence channel's last-active stamp.
type User struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	UserName        string    `json:"userName"`
	ProfilePhotoURL string    `json:"profilePhotoUrl"`
	LastActive      time.Time `json:"lastActive"`
}

// DisplayName is the "First Last" form used in message and notification payloads.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// UserRepository is the user-account collaborator contract.
type UserRepository interface {
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	UpdateLastActive(ctx context.Context, userID int64, at time.Time) error
}

package messaging

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain-level errors for messaging behaviors
var (
	ErrInvalidRecipient = errors.New("messaging: invalid recipient (self or unknown user)")
	ErrInvalidPartner   = errors.New("messaging: conversation partner does not exist")
	ErrUnauthorized     = errors.New("messaging: caller is not allowed to mutate this message")
	ErrMessageNotFound  = errors.New("messaging: message not found")
	ErrEmptyMessage     = errors.New("messaging: message content is empty")
)

// PreviewLimit caps the content preview carried by offline notifications.
const PreviewLimit = 50

// Message is a direct message between two users. ReadAt is set at most once and
// never cleared. A row is physically removed only when both participants have
// deleted their side.
type Message struct {
	ID               int64      `db:"id"`
	SenderID         int64      `db:"sender_id"`
	RecipientID      int64      `db:"recipient_id"`
	Content          string     `db:"content"`
	SentAt           time.Time  `db:"sent_at"`
	ReadAt           *time.Time `db:"read_at"`
	SenderDeleted    bool       `db:"sender_deleted"`
	RecipientDeleted bool       `db:"recipient_deleted"`
	GroupName        *string    `db:"group_name"`
}

// NewMessage validates and normalizes a message ready to persist.
func NewMessage(senderID, recipientID int64, content string) (*Message, error) {
	if senderID == recipientID || recipientID <= 0 {
		return nil, ErrInvalidRecipient
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	name := GroupName(senderID, recipientID)
	return &Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		SentAt:      time.Now().UTC(),
		GroupName:   &name,
	}, nil
}

// IsRead reports whether the message has been read by its recipient.
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// ParticipantOf reports whether userID is either side of the message.
func (m *Message) ParticipantOf(userID int64) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// PartnerOf returns the other participant relative to userID.
func (m *Message) PartnerOf(userID int64) int64 {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// GroupName derives the conversation key for a user pair. The smaller identity
// comes first, so both participants resolve the same key regardless of who
// initiated: GroupName(a, b) == GroupName(b, a).
func GroupName(a, b int64) string {
	if a < b {
		return fmt.Sprintf("chat_%d_%d", a, b)
	}
	return fmt.Sprintf("chat_%d_%d", b, a)
}

// Preview truncates content for notification payloads.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLimit {
		return content
	}
	return string(runes[:PreviewLimit]) + "..."
}

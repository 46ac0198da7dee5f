package event

import (
	"encoding/json"
	"time"

	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
)

// Event names pushed to clients. Conversation-scoped events go to the chat
// socket, user-scoped events to every live connection of the user.
const (
	ReceiveMessageThread = "ReceiveMessageThread"
	NewMessage           = "NewMessage"
	MessageEdited        = "MessageEdited"
	MessageDeleted       = "MessageDeleted"
	MessagesMarkedAsRead = "MessagesMarkedAsRead"
	UserTyping           = "UserTyping"
	ChatUpdated          = "ChatUpdated"
	ChatUnreadCount      = "ChatUnreadCountUpdated"
	NewMessageReceived   = "NewMessageReceived"
	NotificationReceived = "NotificationReceived"
	UserOnline           = "UserOnline"
	UserOffline          = "UserOffline"
	GetOnlineUsers       = "GetOnlineUsers"
)

// Envelope is the wire frame for every pushed event.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Marshal encodes an event frame. Payloads are plain structs or values; a
// marshal failure is a programming error surfaced to the caller.
func Marshal(eventType string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Type: eventType, Payload: payload})
}

// MessagePayload is the enriched message pushed with NewMessage and replayed in
// ReceiveMessageThread.
type MessagePayload struct {
	ID           int64      `json:"id"`
	SenderID     int64      `json:"senderId"`
	RecipientID  int64      `json:"recipientId"`
	SenderName   string     `json:"senderName"`
	SenderAvatar string     `json:"senderAvatar,omitempty"`
	Content      string     `json:"content"`
	SentAt       time.Time  `json:"sentAt"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
	IsRead       bool       `json:"isRead"`
}

// FromMessage maps a domain message plus sender identity onto the wire payload.
func FromMessage(m messaging.Message, senderName, senderAvatar string) MessagePayload {
	return MessagePayload{
		ID:           m.ID,
		SenderID:     m.SenderID,
		RecipientID:  m.RecipientID,
		SenderName:   senderName,
		SenderAvatar: senderAvatar,
		Content:      m.Content,
		SentAt:       m.SentAt,
		ReadAt:       m.ReadAt,
		IsRead:       m.IsRead(),
	}
}

// EditedPayload accompanies MessageEdited.
type EditedPayload struct {
	MessageID  int64  `json:"messageId"`
	NewContent string `json:"newContent"`
}

// DeletedPayload accompanies MessageDeleted.
type DeletedPayload struct {
	MessageID int64 `json:"messageId"`
}

// ReadPayload accompanies MessagesMarkedAsRead.
type ReadPayload struct {
	MessageIDs   []int64   `json:"messageIds"`
	ReadByUserID int64     `json:"readByUserId"`
	ReadAt       time.Time `json:"readAt"`
}

// TypingPayload accompanies UserTyping.
type TypingPayload struct {
	UserID   int64 `json:"userId"`
	IsTyping bool  `json:"isTyping"`
}

// ChatUpdatedPayload refreshes chat-list UIs on every device of a participant.
type ChatUpdatedPayload struct {
	ChatPartnerID int64          `json:"chatPartnerId"`
	LastMessage   MessagePayload `json:"lastMessage"`
	LastActivity  time.Time      `json:"lastActivity"`
	UnreadCount   int            `json:"unreadCount"`
}

// UnreadCountPayload accompanies ChatUnreadCountUpdated.
type UnreadCountPayload struct {
	ChatPartnerID int64 `json:"chatPartnerId"`
	UnreadCount   int   `json:"unreadCount"`
}

// NotificationPayload is the offline-path push with a truncated preview.
type NotificationPayload struct {
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	SenderID     int64     `json:"senderId"`
	SenderName   string    `json:"senderName"`
	SenderAvatar string    `json:"senderAvatar,omitempty"`
	MessageID    int64     `json:"messageId"`
	Timestamp    time.Time `json:"timestamp"`
}

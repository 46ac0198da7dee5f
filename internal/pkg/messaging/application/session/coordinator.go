package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/samber/lo"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/queue/port"
	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/event"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/notify"
	messaging "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/domain"
	msgrepo "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/port"
	userrepo "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

// RecordNotificationTaskType is the queue task persisting an offline-path
// notification record.
const RecordNotificationTaskType = "notification:record"

// RecordNotificationPayload is the JSON payload for RecordNotificationTaskType.
type RecordNotificationPayload struct {
	RecipientID int64     `json:"recipientId"`
	ActorID     int64     `json:"actorId"`
	Message     string    `json:"message"`
	MessageID   int64     `json:"messageId"`
	Timestamp   time.Time `json:"timestamp"`
}

// Config carries the coordinator's policy switches.
type Config struct {
	// MarkReadOnJoin controls whether joining a conversation automatically
	// marks the partner's messages as read ("viewing implies reading").
	MarkReadOnJoin bool
}

// Coordinator manages conversation sessions over live transport connections:
// join with history replay, sends with co-presence read fast-path, bulk
// read-marking, typing relay, edits/deletes and disconnect cleanup.
//
// A connection moves Pending -> Joined (via Join) -> Closed (via Disconnect);
// transitions are one-directional.
type Coordinator struct {
	repo     msgrepo.MessageRepository
	users    userrepo.UserRepository
	registry *realtime.Registry
	relay    *notify.Relay
	queue    port.Client // nil disables persisted notification records
	groups   *groupTable
	cfg      Config
	logger   *log.Logger
}

func NewCoordinator(
	repo msgrepo.MessageRepository,
	users userrepo.UserRepository,
	registry *realtime.Registry,
	relay *notify.Relay,
	queue port.Client,
	cfg Config,
) *Coordinator {
	return &Coordinator{
		repo:     repo,
		users:    users,
		registry: registry,
		relay:    relay,
		queue:    queue,
		groups:   newGroupTable(),
		cfg:      cfg,
		logger:   log.New(os.Stdout, "[SESSION] ", log.LstdFlags),
	}
}

// Join subscribes the connection to the conversation with partnerID: persists
// group membership, registers presence, and replays the full thread to every
// connection currently in the group. A persistence failure leaves the
// connection unregistered.
func (c *Coordinator) Join(ctx context.Context, connID string, userID, partnerID int64, sink realtime.EventSink) error {
	if partnerID == userID {
		return messaging.ErrInvalidPartner
	}
	if _, err := c.users.GetUserByID(ctx, partnerID); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return messaging.ErrInvalidPartner
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	name := messaging.GroupName(userID, partnerID)
	g := c.groups.acquire(name)
	g.mu.Lock()
	defer g.mu.Unlock()

	// Membership row first: if this fails the join fails atomically, with
	// nothing registered in memory yet.
	err := c.repo.AddToGroup(ctx, name, messaging.Connection{
		ID:        connID,
		UserID:    userID,
		GroupName: name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	c.registry.Connect(userID, connID, sink)
	g.add(member{connID: connID, userID: userID, sink: sink})
	c.groups.bind(connID, g)

	thread, err := c.repo.GetThread(ctx, userID, partnerID)
	if err != nil {
		c.rollbackJoin(ctx, g, connID, userID)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	payloads, err := c.enrichThread(ctx, thread)
	if err != nil {
		c.rollbackJoin(ctx, g, connID, userID)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The whole group gets the refreshed thread, not just the joiner, so peers
	// already present see the same view.
	if frame, err := event.Marshal(event.ReceiveMessageThread, payloads); err == nil {
		g.broadcast(frame, "")
	} else {
		c.logger.Printf("encode %s for %s: %v", event.ReceiveMessageThread, name, err)
	}

	if c.cfg.MarkReadOnJoin {
		if err := c.markReadLocked(ctx, g, userID, partnerID); err != nil {
			c.logger.Printf("auto mark-read on join failed for user %d: %v", userID, err)
		}
	}

	c.logger.Printf("user %d joined %s (conn %s)", userID, name, connID)
	return nil
}

func (c *Coordinator) rollbackJoin(ctx context.Context, g *liveGroup, connID string, userID int64) {
	g.remove(connID)
	c.groups.unbind(connID)
	c.registry.Disconnect(userID, connID)
	if err := c.repo.RemoveConnection(ctx, connID); err != nil {
		c.logger.Printf("rollback: remove connection %s: %v", connID, err)
	}
}

// Send persists and delivers a message. If the recipient has a connection in
// this conversation's group right now, the message is stamped read at save
// time; otherwise the recipient gets an out-of-band notification with a
// truncated preview on every live connection.
func (c *Coordinator) Send(ctx context.Context, senderID, recipientID int64, content string) error {
	sender, err := c.users.GetUserByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return messaging.ErrInvalidRecipient
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	recipient, err := c.users.GetUserByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return messaging.ErrInvalidRecipient
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msg, err := messaging.NewMessage(senderID, recipientID, content)
	if err != nil {
		return err
	}

	name := messaging.GroupName(senderID, recipientID)
	g := c.groups.acquire(name)

	recipientInGroup, payload, err := c.persistAndDeliver(ctx, g, name, msg, sender)
	if err != nil {
		return err
	}

	// Chat-list refresh for every device of both participants, in or out of
	// the conversation view. Best-effort from here on.
	c.pushChatUpdated(ctx, senderID, recipientID, payload)
	c.pushChatUpdated(ctx, recipientID, senderID, payload)

	if !recipientInGroup {
		c.notifyRecipient(ctx, sender, recipient, *msg)
	}

	c.logger.Printf("message %d sent from %d to %d (fast-path read: %t)", msg.ID, senderID, recipientID, recipientInGroup)
	return nil
}

// persistAndDeliver runs the conversation-locked part of Send: co-presence
// detection, persistence, and the in-group broadcast. The lock is released on
// every exit path, including an unwinding sink. Reports whether the recipient
// was co-present.
func (c *Coordinator) persistAndDeliver(ctx context.Context, g *liveGroup, name string, msg *messaging.Message, sender *userrepo.User) (bool, event.MessagePayload, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Presence inside the conversation view implies instantaneous read; no
	// separate client round trip needed. The in-memory group only sees this
	// process, so fall back to the persisted membership rows for connections
	// registered elsewhere.
	recipientInGroup := g.hasUser(msg.RecipientID)
	if !recipientInGroup {
		persisted, err := c.repo.GetGroup(ctx, name)
		if err != nil {
			c.logger.Printf("group lookup for %s: %v", name, err)
		} else if persisted.HasUser(msg.RecipientID) {
			recipientInGroup = true
		}
	}
	if recipientInGroup {
		now := time.Now().UTC()
		msg.ReadAt = &now
	}

	if err := c.repo.SaveMessage(ctx, msg); err != nil {
		return false, event.MessagePayload{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	payload := event.FromMessage(*msg, sender.DisplayName(), sender.ProfilePhotoURL)
	if frame, err := event.Marshal(event.NewMessage, payload); err == nil {
		g.broadcast(frame, "")
	} else {
		c.logger.Printf("encode %s for %s: %v", event.NewMessage, name, err)
	}
	return recipientInGroup, payload, nil
}

// MarkRead stamps every unread message from partnerID in one batch and emits a
// single MessagesMarkedAsRead event. Zero unread messages produce no event.
func (c *Coordinator) MarkRead(ctx context.Context, userID, partnerID int64) error {
	name := messaging.GroupName(userID, partnerID)
	g := c.groups.acquire(name)
	g.mu.Lock()
	defer g.mu.Unlock()
	return c.markReadLocked(ctx, g, userID, partnerID)
}

func (c *Coordinator) markReadLocked(ctx context.Context, g *liveGroup, userID, partnerID int64) error {
	thread, err := c.repo.GetThread(ctx, userID, partnerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	unread := lo.Filter(thread, func(m messaging.Message, _ int) bool {
		return m.RecipientID == userID && !m.IsRead()
	})
	if len(unread) == 0 {
		return nil
	}

	ids := lo.Map(unread, func(m messaging.Message, _ int) int64 { return m.ID })
	readAt := time.Now().UTC()

	if err := c.repo.MarkRead(ctx, ids, readAt); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if frame, err := event.Marshal(event.MessagesMarkedAsRead, event.ReadPayload{
		MessageIDs:   ids,
		ReadByUserID: userID,
		ReadAt:       readAt,
	}); err == nil {
		g.broadcast(frame, "")
	}

	c.pushUnreadCount(ctx, userID, partnerID)
	c.logger.Printf("user %d marked %d messages read in %s", userID, len(ids), g.name)
	return nil
}

// Typing relays a typing indicator to every other connection in the group.
// Fire-and-forget: no persistence, no delivery guarantee, never an error.
func (c *Coordinator) Typing(connID string, userID, partnerID int64, isTyping bool) {
	name := messaging.GroupName(userID, partnerID)
	g := c.groups.acquire(name)
	g.mu.Lock()
	defer g.mu.Unlock()

	frame, err := event.Marshal(event.UserTyping, event.TypingPayload{UserID: userID, IsTyping: isTyping})
	if err != nil {
		return
	}
	g.broadcast(frame, connID)
}

// Edit replaces a message's content. Only the sender may edit; unread counts
// are unaffected.
func (c *Coordinator) Edit(ctx context.Context, userID, messageID int64, newContent string) error {
	msg, err := c.repo.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, messaging.ErrMessageNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msg.SenderID != userID {
		return messaging.ErrUnauthorized
	}
	if newContent == "" {
		return messaging.ErrEmptyMessage
	}

	if err := c.repo.UpdateContent(ctx, messageID, newContent); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	g := c.groups.acquire(messaging.GroupName(msg.SenderID, msg.RecipientID))
	g.mu.Lock()
	defer g.mu.Unlock()
	if frame, err := event.Marshal(event.MessageEdited, event.EditedPayload{MessageID: messageID, NewContent: newContent}); err == nil {
		g.broadcast(frame, "")
	}
	return nil
}

// Delete removes the caller's side of a message. The row disappears physically
// only once both participants have deleted it.
func (c *Coordinator) Delete(ctx context.Context, userID, messageID int64) error {
	msg, err := c.repo.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, messaging.ErrMessageNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !msg.ParticipantOf(userID) {
		return messaging.ErrUnauthorized
	}

	if msg.SenderID == userID {
		msg.SenderDeleted = true
	}
	if msg.RecipientID == userID {
		msg.RecipientDeleted = true
	}

	if msg.SenderDeleted && msg.RecipientDeleted {
		err = c.repo.HardDeleteMessage(ctx, messageID)
	} else {
		err = c.repo.UpdateDeletionFlags(ctx, msg)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	g := c.groups.acquire(messaging.GroupName(msg.SenderID, msg.RecipientID))
	g.mu.Lock()
	defer g.mu.Unlock()
	if frame, err := event.Marshal(event.MessageDeleted, event.DeletedPayload{MessageID: messageID}); err == nil {
		g.broadcast(frame, "")
	}
	return nil
}

// Disconnect removes the connection from its group, from presence, and from
// the persisted membership table. Safe to call repeatedly; never fails the
// caller.
func (c *Coordinator) Disconnect(ctx context.Context, connID string, userID int64) {
	if g := c.groups.groupFor(connID); g != nil {
		g.mu.Lock()
		g.remove(connID)
		g.mu.Unlock()
		c.groups.unbind(connID)
	}

	c.registry.Disconnect(userID, connID)

	if err := c.repo.RemoveConnection(ctx, connID); err != nil {
		c.logger.Printf("disconnect cleanup for %s: %v", connID, err)
	}
}

func (c *Coordinator) enrichThread(ctx context.Context, thread []messaging.Message) ([]event.MessagePayload, error) {
	profiles := make(map[int64]*userrepo.User, 2)
	payloads := make([]event.MessagePayload, 0, len(thread))
	for _, m := range thread {
		sender := profiles[m.SenderID]
		if sender == nil {
			u, err := c.users.GetUserByID(ctx, m.SenderID)
			if err != nil {
				return nil, err
			}
			profiles[m.SenderID] = u
			sender = u
		}
		payloads = append(payloads, event.FromMessage(m, sender.DisplayName(), sender.ProfilePhotoURL))
	}
	return payloads, nil
}

func (c *Coordinator) pushChatUpdated(ctx context.Context, userID, partnerID int64, last event.MessagePayload) {
	unread, err := c.repo.UnreadCount(ctx, userID, partnerID)
	if err != nil {
		c.logger.Printf("unread count for user %d: %v", userID, err)
		unread = 0
	}
	c.relay.ToUser(userID, event.ChatUpdated, event.ChatUpdatedPayload{
		ChatPartnerID: partnerID,
		LastMessage:   last,
		LastActivity:  last.SentAt,
		UnreadCount:   unread,
	})
}

func (c *Coordinator) pushUnreadCount(ctx context.Context, userID, partnerID int64) {
	unread, err := c.repo.UnreadCount(ctx, userID, partnerID)
	if err != nil {
		c.logger.Printf("unread count for user %d: %v", userID, err)
		return
	}
	c.relay.ToUser(userID, event.ChatUnreadCount, event.UnreadCountPayload{
		ChatPartnerID: partnerID,
		UnreadCount:   unread,
	})
}

// notifyRecipient pushes the out-of-band "new message" events to the
// recipient's live connections and queues a persisted notification record.
// Everything here is best-effort; the send already succeeded.
func (c *Coordinator) notifyRecipient(ctx context.Context, sender, recipient *userrepo.User, msg messaging.Message) {
	payload := event.NotificationPayload{
		Type:         string(messaging.NotificationNewMessage),
		Title:        "New message from " + sender.DisplayName(),
		Message:      messaging.Preview(msg.Content),
		SenderID:     sender.ID,
		SenderName:   sender.DisplayName(),
		SenderAvatar: sender.ProfilePhotoURL,
		MessageID:    msg.ID,
		Timestamp:    msg.SentAt,
	}

	c.relay.ToUser(recipient.ID, event.NewMessageReceived, payload)
	c.relay.ToUser(recipient.ID, event.NotificationReceived, payload)

	if c.queue == nil {
		return
	}
	body, err := json.Marshal(RecordNotificationPayload{
		RecipientID: recipient.ID,
		ActorID:     sender.ID,
		Message:     payload.Message,
		MessageID:   msg.ID,
		Timestamp:   msg.SentAt,
	})
	if err != nil {
		return
	}
	_, err = c.queue.Enqueue(ctx, port.Task{Type: RecordNotificationTaskType, Payload: body},
		port.EnqueueOption{Queue: "notifications", MaxRetry: 10})
	if err != nil {
		c.logger.Printf("enqueue notification record for user %d: %v", recipient.ID, err)
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an append-only chat message. Seq is assigned by the store and
// breaks ties between messages created in the same instant.
type Message struct {
	ID             uuid.UUID
	Seq            int64
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	ReceiverID     *uuid.UUID // nil in group conversations
	Content        string
	CreatedAt      time.Time
	SeenAt         *time.Time
}

// IsSeen returns true once the receiver has marked the message as seen.
func (m *Message) IsSeen() bool {
	return m.SeenAt != nil
}

// Notification is a persisted, per-user notice that survives disconnects
// and is replayed in the backlog snapshot until read.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ActorID   *uuid.UUID
	Category  NotificationCategory
	Text      string
	IsRead    bool
	CreatedAt time.Time
}

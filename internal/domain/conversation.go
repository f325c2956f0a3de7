package domain

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Conversation groups messages between its participants. Direct
// conversations have exactly two participants and a DirectKey.
type Conversation struct {
	ID           uuid.UUID
	Title        string
	DirectKey    *string
	Participants []uuid.UUID
	CreatedAt    time.Time
}

// HasParticipant returns true if userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return slices.Contains(c.Participants, userID)
}

// IsDirect returns true for two-party conversations created from a chat invite.
func (c *Conversation) IsDirect() bool {
	return c.DirectKey != nil
}

// OtherParticipant returns the counterpart of userID in a two-party
// conversation. The second return value is false when the conversation does
// not have exactly two participants or userID is not one of them.
func (c *Conversation) OtherParticipant(userID uuid.UUID) (uuid.UUID, bool) {
	if len(c.Participants) != 2 || !c.HasParticipant(userID) {
		return uuid.Nil, false
	}
	if c.Participants[0] == userID {
		return c.Participants[1], true
	}
	return c.Participants[0], true
}

// DirectKey returns the order-independent identity of the direct
// conversation between a and b.
func DirectKey(a, b uuid.UUID) string {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Channel names a pub/sub group. There is exactly one channel per user and
// one per conversation.
type Channel string

const (
	userChannelPrefix         = "user:"
	conversationChannelPrefix = "conversation:"
)

// UserChannel returns the personal channel of a user.
func UserChannel(userID uuid.UUID) Channel {
	return Channel(userChannelPrefix + userID.String())
}

// ConversationChannel returns the channel of a conversation.
func ConversationChannel(conversationID uuid.UUID) Channel {
	return Channel(conversationChannelPrefix + conversationID.String())
}

func (c Channel) String() string { return string(c) }

// IsConversation returns true for conversation channels.
func (c Channel) IsConversation() bool {
	return strings.HasPrefix(string(c), conversationChannelPrefix)
}

// EventType is the wire tag of an outbound live event.
type EventType string

const (
	EventInvitationReceived EventType = "invitation_received"
	EventInvitationAccepted EventType = "invitation_accepted"
	EventInvitationDeclined EventType = "invitation_declined"
	EventNewMessage         EventType = "new_message"
	EventMessageSeen        EventType = "message_seen"
	EventNotification       EventType = "notification"
)

// Event is the closed set of live events published on the bus. Only types
// declared in this package implement it.
type Event interface {
	EventType() EventType
	sealed()
}

// InvitationReceived is delivered to the receiver of a new invitation.
type InvitationReceived struct {
	Invitation Invitation
	SenderName string
	WorkTitle  string
}

// InvitationAccepted is delivered to the sender (and the receiver's other
// connections) once the receiver accepts.
type InvitationAccepted struct {
	Invitation     Invitation
	ResponderName  string
	ConversationID *uuid.UUID // set for chat invites
}

// InvitationDeclined is delivered to the sender once the receiver declines.
type InvitationDeclined struct {
	Invitation    Invitation
	ResponderName string
}

// NewMessage carries a freshly persisted chat message.
type NewMessage struct {
	Message Message
}

// MessageSeen tells the sender that the receiver has seen a message.
type MessageSeen struct {
	MessageID      uuid.UUID
	ConversationID uuid.UUID
	SeenBy         uuid.UUID
	SeenAt         time.Time
}

// NotificationCreated carries a notification that was just persisted.
type NotificationCreated struct {
	Notification Notification
}

func (InvitationReceived) EventType() EventType  { return EventInvitationReceived }
func (InvitationAccepted) EventType() EventType  { return EventInvitationAccepted }
func (InvitationDeclined) EventType() EventType  { return EventInvitationDeclined }
func (NewMessage) EventType() EventType          { return EventNewMessage }
func (MessageSeen) EventType() EventType         { return EventMessageSeen }
func (NotificationCreated) EventType() EventType { return EventNotification }

func (InvitationReceived) sealed()  {}
func (InvitationAccepted) sealed()  {}
func (InvitationDeclined) sealed()  {}
func (NewMessage) sealed()          {}
func (MessageSeen) sealed()         {}
func (NotificationCreated) sealed() {}

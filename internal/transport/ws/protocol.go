package ws

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Action is the tag of an inbound frame.
type Action string

const (
	ActionSendInvite           Action = "send_invite"
	ActionAcceptInvite         Action = "accept_invite"
	ActionDeclineInvite        Action = "decline_invite"
	ActionGetInviteStatus      Action = "get_invite_status"
	ActionSendMessage          Action = "send_message"
	ActionMarkSeen             Action = "mark_seen"
	ActionListMessages         Action = "list_messages"
	ActionJoinConversation     Action = "join_conversation"
	ActionLeaveConversation    Action = "leave_conversation"
	ActionListConversations    Action = "list_conversations"
	ActionMarkNotificationRead Action = "mark_notification_read"
	ActionMarkAllRead          Action = "mark_all_notifications_read"

	// actionRefuseInvite is accepted as a synonym of decline_invite.
	actionRefuseInvite Action = "refuse_invite"
)

// normalize maps aliases onto their canonical action and reports whether the
// action is known at all.
func (a Action) normalize() (Action, bool) {
	switch a {
	case actionRefuseInvite:
		return ActionDeclineInvite, true
	case ActionSendInvite, ActionAcceptInvite, ActionDeclineInvite, ActionGetInviteStatus,
		ActionSendMessage, ActionMarkSeen, ActionListMessages,
		ActionJoinConversation, ActionLeaveConversation, ActionListConversations,
		ActionMarkNotificationRead, ActionMarkAllRead:
		return a, true
	}
	return a, false
}

// Outbound frame types that are not live events.
const (
	frameUnreadNotifications = "unread_notifications"
	frameUnreadInvitations   = "unread_invitations"
	frameAck                 = "ack"
	frameError               = "error"
)

// ---------------------------------------------------------------------------
// Inbound
// ---------------------------------------------------------------------------

// envelope is decoded first to route a frame; the action payload is then
// decoded from the same bytes.
type envelope struct {
	Action    Action `json:"action"`
	RequestID string `json:"request_id"`
}

type sendInviteRequest struct {
	ReceiverID uuid.UUID  `json:"receiver_id"`
	WorkID     *uuid.UUID `json:"work_id"`
	Message    string     `json:"message"`
}

type respondInviteRequest struct {
	InvitationID uuid.UUID `json:"invitation_id"`
}

type inviteStatusRequest struct {
	WorkID uuid.UUID `json:"work_id"`
}

type sendMessageRequest struct {
	ConversationID uuid.UUID  `json:"conversation_id"`
	ReceiverID     *uuid.UUID `json:"receiver_id"`
	Content        string     `json:"content"`
}

type markSeenRequest struct {
	MessageID uuid.UUID `json:"message_id"`
}

type listMessagesRequest struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Before         int64     `json:"before"`
	Limit          int       `json:"limit"`
}

type conversationRequest struct {
	ConversationID uuid.UUID `json:"conversation_id"`
}

type notificationReadRequest struct {
	NotificationID uuid.UUID `json:"notification_id"`
}

// ---------------------------------------------------------------------------
// Outbound
// ---------------------------------------------------------------------------

// header is embedded in every outbound frame.
type header struct {
	Type      string     `json:"type"`
	EventID   *uuid.UUID `json:"event_id,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

type invitationView struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	SenderID    uuid.UUID  `json:"sender_id"`
	ReceiverID  uuid.UUID  `json:"receiver_id"`
	WorkID      *uuid.UUID `json:"work_id,omitempty"`
	Message     string     `json:"message,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type messageView struct {
	ID             uuid.UUID  `json:"id"`
	Seq            int64      `json:"seq"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	ReceiverID     *uuid.UUID `json:"receiver_id,omitempty"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	SeenAt         *time.Time `json:"seen_at,omitempty"`
}

type notificationView struct {
	ID        uuid.UUID  `json:"id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Category  string     `json:"category"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	Timestamp time.Time  `json:"timestamp"`
}

type conversationView struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title,omitempty"`
	Direct       bool        `json:"direct"`
	Participants []uuid.UUID `json:"participants"`
	CreatedAt    time.Time   `json:"created_at"`
}

type receivedInvitationView struct {
	Invitation invitationView `json:"invitation"`
	SenderName string         `json:"sender_name"`
	WorkTitle  string         `json:"work_title,omitempty"`
}

type invitationReceivedFrame struct {
	header
	receivedInvitationView
}

type invitationRespondedFrame struct {
	header
	Invitation     invitationView `json:"invitation"`
	ResponderName  string         `json:"responder_name"`
	ConversationID *uuid.UUID     `json:"conversation_id,omitempty"`
}

type newMessageFrame struct {
	header
	Message messageView `json:"message"`
}

type messageSeenFrame struct {
	header
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SeenBy         uuid.UUID `json:"seen_by"`
	SeenAt         time.Time `json:"seen_at"`
}

type notificationFrame struct {
	header
	Notification notificationView `json:"notification"`
}

type unreadNotificationsFrame struct {
	header
	Notifications []notificationView `json:"notifications"`
}

type unreadInvitationsFrame struct {
	header
	Kind        string                   `json:"kind"`
	Invitations []receivedInvitationView `json:"invitations"`
}

type ackFrame struct {
	header
	Action  Action `json:"action"`
	Success string `json:"success"`
	Data    any    `json:"data,omitempty"`
}

type fieldErrorView struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorFrame struct {
	header
	Error  string           `json:"error"`
	Code   string           `json:"code"`
	Action Action           `json:"action,omitempty"`
	Fields []fieldErrorView `json:"fields,omitempty"`
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func toInvitationView(inv *domain.Invitation) invitationView {
	return invitationView{
		ID:          inv.ID,
		Kind:        inv.Kind.String(),
		SenderID:    inv.SenderID,
		ReceiverID:  inv.ReceiverID,
		WorkID:      inv.WorkID,
		Message:     inv.Message,
		Status:      inv.Status.String(),
		CreatedAt:   inv.CreatedAt,
		RespondedAt: inv.RespondedAt,
	}
}

func toReceivedInvitationView(r domain.InvitationReceived) receivedInvitationView {
	return receivedInvitationView{
		Invitation: toInvitationView(&r.Invitation),
		SenderName: r.SenderName,
		WorkTitle:  r.WorkTitle,
	}
}

func toMessageView(m *domain.Message) messageView {
	return messageView{
		ID:             m.ID,
		Seq:            m.Seq,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		SeenAt:         m.SeenAt,
	}
}

func toNotificationView(n *domain.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		ActorID:   n.ActorID,
		Category:  n.Category.String(),
		Message:   n.Text,
		IsRead:    n.IsRead,
		Timestamp: n.CreatedAt,
	}
}

func toConversationView(c *domain.Conversation) conversationView {
	participants := c.Participants
	if participants == nil {
		participants = []uuid.UUID{}
	}
	return conversationView{
		ID:           c.ID,
		Title:        c.Title,
		Direct:       c.IsDirect(),
		Participants: participants,
		CreatedAt:    c.CreatedAt,
	}
}

func mapSlice[T, V any](in []T, fn func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

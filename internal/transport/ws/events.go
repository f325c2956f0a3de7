package ws

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// encodeEvent renders a live event as an outbound frame tagged with id.
// Every channel a single publish reaches carries the same id, so a
// connection subscribed to several of them can drop repeats.
func encodeEvent(id uuid.UUID, event domain.Event) ([]byte, error) {
	h := header{Type: string(event.EventType()), EventID: &id}

	var frame any
	switch e := event.(type) {
	case domain.InvitationReceived:
		frame = invitationReceivedFrame{header: h, receivedInvitationView: toReceivedInvitationView(e)}
	case domain.InvitationAccepted:
		frame = invitationRespondedFrame{
			header:         h,
			Invitation:     toInvitationView(&e.Invitation),
			ResponderName:  e.ResponderName,
			ConversationID: e.ConversationID,
		}
	case domain.InvitationDeclined:
		frame = invitationRespondedFrame{
			header:        h,
			Invitation:    toInvitationView(&e.Invitation),
			ResponderName: e.ResponderName,
		}
	case domain.NewMessage:
		frame = newMessageFrame{header: h, Message: toMessageView(&e.Message)}
	case domain.MessageSeen:
		frame = messageSeenFrame{
			header:         h,
			MessageID:      e.MessageID,
			ConversationID: e.ConversationID,
			SeenBy:         e.SeenBy,
			SeenAt:         e.SeenAt,
		}
	case domain.NotificationCreated:
		frame = notificationFrame{header: h, Notification: toNotificationView(&e.Notification)}
	default:
		return nil, fmt.Errorf("encode event: unsupported type %T", event)
	}

	data, err := marshalFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", event.EventType(), err)
	}
	return data, nil
}

// marshalFrame encodes a frame without HTML escaping, so '<', '>' and '&'
// in user text take one byte on the wire instead of six.
func marshalFrame(frame any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(frame); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// eventID extracts the event id of a frame received from the bus. Frames
// without one yield false and are never deduplicated.
func eventID(data []byte) (uuid.UUID, bool) {
	var h struct {
		EventID uuid.UUID `json:"event_id"`
	}
	if err := json.Unmarshal(data, &h); err != nil || h.EventID == uuid.Nil {
		return uuid.Nil, false
	}
	return h.EventID, true
}

package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/notification"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

// MarkSeen records that the caller has seen a message addressed to them.
// Repeated calls keep the first seen_at but publish message_seen to the
// sender every time. The sender is notified once, on the first call.
func (s *Service) MarkSeen(ctx context.Context, input MarkSeenInput) (*domain.Message, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	msg, err := s.messages.GetByID(ctx, input.MessageID)
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}

	if msg.SenderID == userID {
		return nil, domain.ErrForbidden
	}
	if msg.ReceiverID != nil && *msg.ReceiverID != userID {
		return nil, domain.ErrForbidden
	}
	member, err := s.conversations.IsParticipant(ctx, msg.ConversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !member {
		return nil, domain.ErrForbidden
	}

	seen, changed, err := s.messages.MarkSeen(ctx, msg.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark seen: %w", err)
	}

	event := domain.MessageSeen{
		MessageID:      seen.ID,
		ConversationID: seen.ConversationID,
		SeenBy:         userID,
		SeenAt:         *seen.SeenAt,
	}
	if err := s.events.Publish(ctx, event, domain.UserChannel(seen.SenderID)); err != nil {
		s.log.WarnContext(ctx, "publish message seen failed",
			slog.String("message_id", seen.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	if changed {
		s.notifySeen(ctx, seen, userID)
	}

	return seen, nil
}

func (s *Service) notifySeen(ctx context.Context, msg *domain.Message, viewerID uuid.UUID) {
	name := "Someone"
	if viewer, err := s.users.GetByID(ctx, viewerID); err == nil {
		name = domain.TruncateRunes(viewer.Name(), domain.MaxDisplayNameRunes)
	}

	_, err := s.notifier.Notify(ctx, notification.NotifyInput{
		UserID:   msg.SenderID,
		ActorID:  &viewerID,
		Category: domain.NotificationMessageSeen,
		Text:     name + " has seen your message",
	})
	if err != nil {
		s.log.WarnContext(ctx, "message seen notification failed",
			slog.String("message_id", msg.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

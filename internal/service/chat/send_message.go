package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

// SendMessage persists a message from the caller and publishes it to the
// conversation channel and to the personal channel of every recipient.
func (s *Service) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	senderID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(s.cfg.MaxContentRunes); err != nil {
		return nil, err
	}

	conv, err := s.conversations.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if !conv.HasParticipant(senderID) {
		return nil, domain.ErrForbidden
	}

	receiverID, err := resolveReceiver(conv, senderID, input.ReceiverID)
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.Create(ctx, &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        strings.TrimSpace(input.Content),
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	channels := []domain.Channel{domain.ConversationChannel(conv.ID)}
	for _, p := range conv.Participants {
		if p != senderID {
			channels = append(channels, domain.UserChannel(p))
		}
	}
	if err := s.events.Publish(ctx, domain.NewMessage{Message: *msg}, channels...); err != nil {
		s.log.WarnContext(ctx, "publish new message failed",
			slog.String("message_id", msg.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.log.DebugContext(ctx, "message sent",
		slog.String("conversation_id", conv.ID.String()),
		slog.String("message_id", msg.ID.String()),
		slog.String("sender_id", senderID.String()),
	)

	return msg, nil
}

// resolveReceiver picks the message receiver. In a two-party conversation
// an omitted receiver is the other participant; in a group room it stays nil.
func resolveReceiver(conv *domain.Conversation, senderID uuid.UUID, requested *uuid.UUID) (*uuid.UUID, error) {
	if requested != nil {
		if *requested == senderID {
			return nil, domain.ErrSelfMessageNotAllowed
		}
		if !conv.HasParticipant(*requested) {
			return nil, domain.NewValidationError("receiver_id", "not a participant of the conversation")
		}
		id := *requested
		return &id, nil
	}

	if len(conv.Participants) != 2 {
		return nil, nil
	}
	other, ok := conv.OtherParticipant(senderID)
	if !ok {
		return nil, domain.ErrSelfMessageNotAllowed
	}
	return &other, nil
}

package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

// ListMessages returns a page of a conversation's history in ascending order.
func (s *Service) ListMessages(ctx context.Context, input ListMessagesInput) ([]*domain.Message, error) {
	if err := input.Validate(s.cfg.MaxPageSize); err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, input.ConversationID); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.DefaultPageSize
	}

	msgs, err := s.messages.List(ctx, input.ConversationID, input.Before, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// ListConversations returns the caller's conversations, newest first.
func (s *Service) ListConversations(ctx context.Context) ([]*domain.Conversation, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	list, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return list, nil
}

// Authorize returns nil if the caller takes part in the conversation and
// domain.ErrForbidden otherwise.
func (s *Service) Authorize(ctx context.Context, conversationID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if conversationID == uuid.Nil {
		return domain.NewValidationError("conversation_id", "required")
	}

	member, err := s.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !member {
		return domain.ErrForbidden
	}
	return nil
}

// GetOrCreateDirect returns the direct conversation between a and b,
// creating it on first use.
func (s *Service) GetOrCreateDirect(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error) {
	if a == b {
		return nil, domain.ErrSelfMessageNotAllowed
	}

	conv, created, err := s.conversations.GetOrCreateDirect(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("get or create direct conversation: %w", err)
	}

	if created {
		s.log.InfoContext(ctx, "direct conversation created",
			slog.String("conversation_id", conv.ID.String()),
		)
	}
	return conv, nil
}

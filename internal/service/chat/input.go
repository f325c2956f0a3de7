package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// SendMessageInput holds the parameters for sending a message. ReceiverID
// may be omitted in a two-party conversation.
type SendMessageInput struct {
	ConversationID uuid.UUID
	ReceiverID     *uuid.UUID
	Content        string
}

// Validate checks all fields and collects all errors.
func (i SendMessageInput) Validate(maxRunes int) error {
	var errs []domain.FieldError

	if i.ConversationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "conversation_id", Message: "required"})
	}

	content := strings.TrimSpace(i.Content)
	if content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if utf8.RuneCountInString(content) > maxRunes {
		errs = append(errs, domain.FieldError{Field: "content", Message: fmt.Sprintf("max %d characters", maxRunes)})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// MarkSeenInput identifies the message the caller has seen.
type MarkSeenInput struct {
	MessageID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i MarkSeenInput) Validate() error {
	if i.MessageID == uuid.Nil {
		return domain.NewValidationError("message_id", "required")
	}
	return nil
}

// ListMessagesInput selects a page of history. Before is the seq of the
// oldest message the client already has; zero starts from the newest.
type ListMessagesInput struct {
	ConversationID uuid.UUID
	Before         int64
	Limit          int
}

// Validate checks all fields and collects all errors.
func (i ListMessagesInput) Validate(maxLimit int) error {
	var errs []domain.FieldError

	if i.ConversationID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "conversation_id", Message: "required"})
	}
	if i.Before < 0 {
		errs = append(errs, domain.FieldError{Field: "before", Message: "must be non-negative"})
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > maxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("max %d", maxLimit)})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

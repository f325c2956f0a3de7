package notification

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

const maxTextRunes = 500

// NotifyInput describes a notification to store for UserID.
type NotifyInput struct {
	UserID   uuid.UUID
	ActorID  *uuid.UUID
	Category domain.NotificationCategory
	Text     string
}

// Validate checks all fields and collects all errors.
func (i NotifyInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if !i.Category.IsValid() {
		errs = append(errs, domain.FieldError{Field: "category", Message: "invalid category"})
	}

	text := strings.TrimSpace(i.Text)
	if text == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	}
	if utf8.RuneCountInString(text) > maxTextRunes {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 500 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

package invitation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// SendInput holds the parameters for sending an invitation. WorkID is
// required for collaboration invites and must be empty for chat invites.
type SendInput struct {
	Kind       domain.InvitationKind
	ReceiverID uuid.UUID
	WorkID     *uuid.UUID
	Message    string
}

// Validate checks all fields and collects all errors.
func (i SendInput) Validate(maxMessageRunes int) error {
	var errs []domain.FieldError

	if !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "must be collaboration or chat"})
	}
	if i.ReceiverID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "receiver_id", Message: "required"})
	}

	switch i.Kind {
	case domain.InvitationKindCollaboration:
		if i.WorkID == nil || *i.WorkID == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "work_id", Message: "required"})
		}
	case domain.InvitationKindChat:
		if i.WorkID != nil {
			errs = append(errs, domain.FieldError{Field: "work_id", Message: "not allowed for chat invitations"})
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(i.Message)) > maxMessageRunes {
		errs = append(errs, domain.FieldError{Field: "message", Message: fmt.Sprintf("max %d characters", maxMessageRunes)})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RespondInput identifies the invitation the caller accepts or declines.
type RespondInput struct {
	InvitationID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i RespondInput) Validate() error {
	if i.InvitationID == uuid.Nil {
		return domain.NewValidationError("invitation_id", "required")
	}
	return nil
}

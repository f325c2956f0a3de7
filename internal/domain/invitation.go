package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is a request from Sender to Receiver, either to collaborate on a
// work or to open a direct conversation.
type Invitation struct {
	ID          uuid.UUID
	Kind        InvitationKind
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	WorkID      *uuid.UUID // set only for collaboration invites
	Message     string
	Status      InvitationStatus
	CreatedAt   time.Time
	RespondedAt *time.Time
}

// IsPending returns true if the invitation is still awaiting a response.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// CheckRespond reports whether userID may accept or decline the invitation.
// Only the receiver may respond, and only while the invitation is pending.
func (i *Invitation) CheckRespond(userID uuid.UUID) error {
	if i.ReceiverID != userID {
		return ErrForbidden
	}
	if !i.IsPending() {
		return ErrInvalidState
	}
	return nil
}

// CanTransition reports whether an invitation may move from one status to
// another. Every transition leaves pending; terminal statuses never change.
func CanTransition(from, to InvitationStatus) bool {
	if from != InvitationStatusPending {
		return false
	}
	switch to {
	case InvitationStatusAccepted, InvitationStatusDeclined, InvitationStatusExpired:
		return true
	}
	return false
}

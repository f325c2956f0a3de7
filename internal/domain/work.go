package domain

import (
	"time"

	"github.com/google/uuid"
)

// Work is a draft beat owned by a single user. Collaborators are added when
// they accept a collaboration invitation.
type Work struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	CreatedAt time.Time
}

// IsOwnedBy returns true if userID owns the work.
func (w *Work) IsOwnedBy(userID uuid.UUID) bool {
	return w.OwnerID == userID
}

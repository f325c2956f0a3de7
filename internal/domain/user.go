package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a read-only view of an account in the user directory.
type User struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	IsActive    bool
	CreatedAt   time.Time
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

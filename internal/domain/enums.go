package domain

// InvitationKind distinguishes collaboration invites (bound to a work) from
// chat invites (which open a direct conversation on accept).
type InvitationKind string

const (
	InvitationKindCollaboration InvitationKind = "collaboration"
	InvitationKindChat          InvitationKind = "chat"
)

func (k InvitationKind) String() string { return string(k) }

func (k InvitationKind) IsValid() bool {
	switch k {
	case InvitationKindCollaboration, InvitationKindChat:
		return true
	}
	return false
}

// InvitationStatus is the life-cycle state of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

func (s InvitationStatus) String() string { return string(s) }

func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusDeclined, InvitationStatusExpired:
		return true
	}
	return false
}

// IsTerminal returns true for every status except pending.
func (s InvitationStatus) IsTerminal() bool {
	return s != InvitationStatusPending && s.IsValid()
}

// Surface identifies which gateway endpoint a connection was opened on.
type Surface string

const (
	SurfaceCollaboration Surface = "collaboration"
	SurfaceChat          Surface = "chat"
)

func (s Surface) String() string { return string(s) }

func (s Surface) IsValid() bool {
	switch s {
	case SurfaceCollaboration, SurfaceChat:
		return true
	}
	return false
}

// InvitationKind returns the kind of invitation handled on this surface.
func (s Surface) InvitationKind() InvitationKind {
	if s == SurfaceChat {
		return InvitationKindChat
	}
	return InvitationKindCollaboration
}

// NotificationCategory classifies a persisted notification.
type NotificationCategory string

const (
	NotificationInvitationReceived NotificationCategory = "invitation_received"
	NotificationInvitationAccepted NotificationCategory = "invitation_accepted"
	NotificationInvitationDeclined NotificationCategory = "invitation_declined"
	NotificationMessageSeen        NotificationCategory = "message_seen"
)

func (c NotificationCategory) String() string { return string(c) }

func (c NotificationCategory) IsValid() bool {
	switch c {
	case NotificationInvitationReceived, NotificationInvitationAccepted,
		NotificationInvitationDeclined, NotificationMessageSeen:
		return true
	}
	return false
}

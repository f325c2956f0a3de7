package invitation

import (
	"fmt"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Notification texts name the other party and, for collaboration invites,
// the work. Both are shortened so the text stays within the notification
// limit whatever the profile or work holds.

func receivedText(kind domain.InvitationKind, senderName, workTitle string) string {
	if kind == domain.InvitationKindCollaboration {
		return fmt.Sprintf("%s invited you to collaborate on \"%s\"", senderName, workTitle)
	}
	return fmt.Sprintf("%s wants to chat with you", senderName)
}

func acceptedText(kind domain.InvitationKind, responderName, workTitle string) string {
	if kind == domain.InvitationKindCollaboration {
		return fmt.Sprintf("%s accepted your invitation to collaborate on \"%s\"", responderName, workTitle)
	}
	return fmt.Sprintf("%s accepted your chat invitation", responderName)
}

func declinedText(kind domain.InvitationKind, responderName, workTitle string) string {
	if kind == domain.InvitationKindCollaboration {
		return fmt.Sprintf("%s declined your invitation to collaborate on \"%s\"", responderName, workTitle)
	}
	return fmt.Sprintf("%s declined your chat invitation", responderName)
}

func displayName(u *domain.User) string {
	return domain.TruncateRunes(u.Name(), domain.MaxDisplayNameRunes)
}

func workTitle(w *domain.Work) string {
	if w == nil {
		return ""
	}
	return domain.TruncateRunes(w.Title, domain.MaxWorkTitleRunes)
}

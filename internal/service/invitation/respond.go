package invitation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/notification"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

// AcceptResult is the outcome of an accepted invitation. ConversationID is
// set for chat invitations.
type AcceptResult struct {
	Invitation     *domain.Invitation
	ConversationID *uuid.UUID
}

// responseContext is what both responses need before the transition.
type responseContext struct {
	invitation *domain.Invitation
	responder  *domain.User
	work       *domain.Work
}

// Accept moves a pending invitation addressed to the caller to accepted.
// A collaboration invite adds the caller to the work's collaborators; a chat
// invite opens (or reuses) the direct conversation between both users.
func (s *Service) Accept(ctx context.Context, input RespondInput) (*AcceptResult, error) {
	rc, err := s.prepareResponse(ctx, input)
	if err != nil {
		return nil, err
	}
	inv := rc.invitation

	var (
		updated *domain.Invitation
		conv    *domain.Conversation
		note    *domain.Notification
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		updated, txErr = s.invitations.Transition(ctx, inv.ID, domain.InvitationStatusAccepted, s.now())
		if txErr != nil {
			return fmt.Errorf("accept invitation: %w", txErr)
		}

		switch updated.Kind {
		case domain.InvitationKindCollaboration:
			if _, txErr = s.works.AddCollaborator(ctx, *updated.WorkID, updated.ReceiverID); txErr != nil {
				return fmt.Errorf("add collaborator: %w", txErr)
			}
		case domain.InvitationKindChat:
			conv, txErr = s.conversations.GetOrCreateDirect(ctx, updated.SenderID, updated.ReceiverID)
			if txErr != nil {
				return fmt.Errorf("open conversation: %w", txErr)
			}
		}

		note, txErr = s.notifier.Record(ctx, notification.NotifyInput{
			UserID:   updated.SenderID,
			ActorID:  &updated.ReceiverID,
			Category: domain.NotificationInvitationAccepted,
			Text:     acceptedText(updated.Kind, displayName(rc.responder), workTitle(rc.work)),
		})
		if txErr != nil {
			return fmt.Errorf("record notification: %w", txErr)
		}
		return nil
	})
	if err != nil {
		s.logConflict(ctx, err, inv.ID)
		return nil, err
	}

	result := &AcceptResult{Invitation: updated}
	channels := []domain.Channel{domain.UserChannel(updated.SenderID)}
	if conv != nil {
		result.ConversationID = &conv.ID
		channels = append(channels, domain.UserChannel(updated.ReceiverID))
	}

	s.publish(ctx, domain.InvitationAccepted{
		Invitation:     *updated,
		ResponderName:  displayName(rc.responder),
		ConversationID: result.ConversationID,
	}, channels...)
	s.notifier.Deliver(ctx, note)

	s.log.InfoContext(ctx, "invitation accepted",
		slog.String("invitation_id", updated.ID.String()),
		slog.String("kind", updated.Kind.String()),
		slog.String("receiver_id", updated.ReceiverID.String()),
	)

	return result, nil
}

// Decline moves a pending invitation addressed to the caller to declined.
// The row is kept; nothing else changes.
func (s *Service) Decline(ctx context.Context, input RespondInput) (*domain.Invitation, error) {
	rc, err := s.prepareResponse(ctx, input)
	if err != nil {
		return nil, err
	}
	inv := rc.invitation

	var (
		updated *domain.Invitation
		note    *domain.Notification
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		updated, txErr = s.invitations.Transition(ctx, inv.ID, domain.InvitationStatusDeclined, s.now())
		if txErr != nil {
			return fmt.Errorf("decline invitation: %w", txErr)
		}

		note, txErr = s.notifier.Record(ctx, notification.NotifyInput{
			UserID:   updated.SenderID,
			ActorID:  &updated.ReceiverID,
			Category: domain.NotificationInvitationDeclined,
			Text:     declinedText(updated.Kind, displayName(rc.responder), workTitle(rc.work)),
		})
		if txErr != nil {
			return fmt.Errorf("record notification: %w", txErr)
		}
		return nil
	})
	if err != nil {
		s.logConflict(ctx, err, inv.ID)
		return nil, err
	}

	s.publish(ctx, domain.InvitationDeclined{
		Invitation:    *updated,
		ResponderName: displayName(rc.responder),
	}, domain.UserChannel(updated.SenderID))
	s.notifier.Deliver(ctx, note)

	s.log.InfoContext(ctx, "invitation declined",
		slog.String("invitation_id", updated.ID.String()),
		slog.String("kind", updated.Kind.String()),
	)

	return updated, nil
}

// prepareResponse loads the invitation and checks the caller may respond.
// The check here is advisory; the compare-and-set in Transition decides
// races with concurrent responses.
func (s *Service) prepareResponse(ctx context.Context, input RespondInput) (*responseContext, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.invitations.GetByID(ctx, input.InvitationID)
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if err := inv.CheckRespond(userID); err != nil {
		s.logConflict(ctx, err, inv.ID)
		return nil, err
	}

	responder, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get responder: %w", err)
	}

	rc := &responseContext{invitation: inv, responder: responder}
	if inv.WorkID != nil {
		rc.work, err = s.works.GetByID(ctx, *inv.WorkID)
		if err != nil {
			return nil, fmt.Errorf("get work: %w", err)
		}
	}
	return rc, nil
}

func (s *Service) logConflict(ctx context.Context, err error, invitationID uuid.UUID) {
	if domain.IsStateConflict(err) {
		s.log.DebugContext(ctx, "invitation state conflict",
			slog.String("invitation_id", invitationID.String()),
			slog.String("error", err.Error()),
		)
	}
}

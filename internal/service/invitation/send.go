package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/notification"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

// Send creates a pending invitation from the caller to input.ReceiverID and
// notifies the receiver. The invitation and its notification are stored in
// one transaction; live events are published after commit.
func (s *Service) Send(ctx context.Context, input SendInput) (*domain.Invitation, error) {
	senderID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(s.cfg.MaxMessageLen); err != nil {
		return nil, err
	}
	if input.ReceiverID == senderID {
		return nil, domain.ErrSelfInviteNotAllowed
	}

	receiver, err := s.users.GetByID(ctx, input.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("get receiver: %w", err)
	}
	if !receiver.IsActive {
		return nil, fmt.Errorf("receiver %s: %w", receiver.ID, domain.ErrNotFound)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("get sender: %w", err)
	}

	var work *domain.Work
	if input.Kind == domain.InvitationKindCollaboration {
		work, err = s.works.GetByID(ctx, *input.WorkID)
		if err != nil {
			return nil, fmt.Errorf("get work: %w", err)
		}
		if !work.IsOwnedBy(senderID) {
			return nil, domain.ErrNotOwner
		}
	}

	var (
		inv  *domain.Invitation
		note *domain.Notification
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		inv, txErr = s.invitations.Create(ctx, &domain.Invitation{
			ID:         uuid.New(),
			Kind:       input.Kind,
			SenderID:   senderID,
			ReceiverID: receiver.ID,
			WorkID:     input.WorkID,
			Message:    strings.TrimSpace(input.Message),
			Status:     domain.InvitationStatusPending,
			CreatedAt:  s.now(),
		})
		if txErr != nil {
			return fmt.Errorf("create invitation: %w", txErr)
		}

		note, txErr = s.notifier.Record(ctx, notification.NotifyInput{
			UserID:   receiver.ID,
			ActorID:  &senderID,
			Category: domain.NotificationInvitationReceived,
			Text:     receivedText(input.Kind, displayName(sender), workTitle(work)),
		})
		if txErr != nil {
			return fmt.Errorf("record notification: %w", txErr)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateInvite) {
			s.log.DebugContext(ctx, "duplicate invitation rejected",
				slog.String("sender_id", senderID.String()),
				slog.String("receiver_id", receiver.ID.String()),
			)
		}
		return nil, err
	}

	s.publish(ctx, domain.InvitationReceived{
		Invitation: *inv,
		SenderName: displayName(sender),
		WorkTitle:  workTitle(work),
	}, domain.UserChannel(receiver.ID))
	s.notifier.Deliver(ctx, note)

	s.log.InfoContext(ctx, "invitation sent",
		slog.String("invitation_id", inv.ID.String()),
		slog.String("kind", inv.Kind.String()),
		slog.String("sender_id", senderID.String()),
		slog.String("receiver_id", receiver.ID.String()),
	)

	return inv, nil
}

func (s *Service) publish(ctx context.Context, event domain.Event, channels ...domain.Channel) {
	if err := s.events.Publish(ctx, event, channels...); err != nil {
		s.log.WarnContext(ctx, "publish invitation event failed",
			slog.String("event", string(event.EventType())),
			slog.String("error", err.Error()),
		)
	}
}

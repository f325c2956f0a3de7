package invitation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/pkg/ctxutil"
)

// StatusForWork lists every invitation issued for a work, newest first.
// Only the work owner may ask.
func (s *Service) StatusForWork(ctx context.Context, workID uuid.UUID) ([]*domain.Invitation, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if workID == uuid.Nil {
		return nil, domain.NewValidationError("work_id", "required")
	}

	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("get work: %w", err)
	}
	if !work.IsOwnedBy(userID) {
		return nil, domain.ErrNotOwner
	}

	list, err := s.invitations.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("list invitations for work: %w", err)
	}
	return list, nil
}

// PendingReceived returns the caller's pending invitations of kind, oldest
// first, in the same shape as the live invitation_received event.
func (s *Service) PendingReceived(ctx context.Context, kind domain.InvitationKind) ([]domain.InvitationReceived, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	list, err := s.invitations.ListPendingForReceiver(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}

	names := make(map[uuid.UUID]string)
	titles := make(map[uuid.UUID]string)

	out := make([]domain.InvitationReceived, 0, len(list))
	for _, inv := range list {
		name, ok := names[inv.SenderID]
		if !ok {
			sender, err := s.users.GetByID(ctx, inv.SenderID)
			if err != nil {
				return nil, fmt.Errorf("get sender: %w", err)
			}
			name = displayName(sender)
			names[inv.SenderID] = name
		}

		var title string
		if inv.WorkID != nil {
			if title, ok = titles[*inv.WorkID]; !ok {
				work, err := s.works.GetByID(ctx, *inv.WorkID)
				if err != nil {
					return nil, fmt.Errorf("get work: %w", err)
				}
				title = workTitle(work)
				titles[*inv.WorkID] = title
			}
		}

		out = append(out, domain.InvitationReceived{Invitation: *inv, SenderName: name, WorkTitle: title})
	}

	return out, nil
}

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Notify stores a notification and delivers it to the user's live
// connections.
func (s *Service) Notify(ctx context.Context, input NotifyInput) (*domain.Notification, error) {
	n, err := s.Record(ctx, input)
	if err != nil {
		return nil, err
	}

	s.Deliver(ctx, n)
	return n, nil
}

// Record stores a notification without delivering it. Callers running
// inside a transaction deliver after commit.
func (s *Service) Record(ctx context.Context, input NotifyInput) (*domain.Notification, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	n, err := s.notifications.Create(ctx, &domain.Notification{
		ID:        uuid.New(),
		UserID:    input.UserID,
		ActorID:   input.ActorID,
		Category:  input.Category,
		Text:      strings.TrimSpace(input.Text),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	return n, nil
}

// Deliver publishes a stored notification to its owner's channel. Delivery
// is best effort; the notification stays in the unread backlog either way.
func (s *Service) Deliver(ctx context.Context, n *domain.Notification) {
	err := s.events.Publish(ctx, domain.NotificationCreated{Notification: *n}, domain.UserChannel(n.UserID))
	if err != nil {
		s.log.WarnContext(ctx, "notification delivery failed",
			slog.String("notification_id", n.ID.String()),
			slog.String("user_id", n.UserID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Package notification persists per-user notifications and delivers them to
// live connections.
package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// MaxBacklog caps the unread notifications replayed on connect.
const MaxBacklog = 200

//go:generate moq -out notification_repo_mock_test.go -pkg notification . notificationRepo
//go:generate moq -out event_publisher_mock_test.go -pkg notification . eventPublisher

type notificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.Event, channels ...domain.Channel) error
}

// Service provides notification operations.
type Service struct {
	log           *slog.Logger
	notifications notificationRepo
	events        eventPublisher
}

// NewService creates a new notification service.
func NewService(
	logger *slog.Logger,
	notifications notificationRepo,
	events eventPublisher,
) *Service {
	return &Service{
		log:           logger.With("service", "notification"),
		notifications: notifications,
		events:        events,
	}
}

// Package chat implements conversation membership and message exchange.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/config"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/notification"
)

//go:generate moq -out conversation_repo_mock_test.go -pkg chat . conversationRepo
//go:generate moq -out message_repo_mock_test.go -pkg chat . messageRepo
//go:generate moq -out user_repo_mock_test.go -pkg chat . userRepo
//go:generate moq -out notifier_mock_test.go -pkg chat . notifier
//go:generate moq -out event_publisher_mock_test.go -pkg chat . eventPublisher

type conversationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	GetOrCreateDirect(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
}

type messageRepo interface {
	Create(ctx context.Context, m *domain.Message) (*domain.Message, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) (*domain.Message, bool, error)
	List(ctx context.Context, conversationID uuid.UUID, before int64, limit int) ([]*domain.Message, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type notifier interface {
	Notify(ctx context.Context, input notification.NotifyInput) (*domain.Notification, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.Event, channels ...domain.Channel) error
}

// Service provides chat operations.
type Service struct {
	log           *slog.Logger
	conversations conversationRepo
	messages      messageRepo
	users         userRepo
	notifier      notifier
	events        eventPublisher
	cfg           config.ChatConfig
	now           func() time.Time
}

// NewService creates a new chat service.
func NewService(
	logger *slog.Logger,
	conversations conversationRepo,
	messages messageRepo,
	users userRepo,
	notifier notifier,
	events eventPublisher,
	cfg config.ChatConfig,
) *Service {
	return &Service{
		log:           logger.With("service", "chat"),
		conversations: conversations,
		messages:      messages,
		users:         users,
		notifier:      notifier,
		events:        events,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

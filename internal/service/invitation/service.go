// Package invitation implements the invitation state machine: sending,
// accepting, declining and expiring collaboration and chat invitations.
package invitation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/config"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/service/notification"
)

//go:generate moq -out invitation_repo_mock_test.go -pkg invitation . invitationRepo
//go:generate moq -out user_repo_mock_test.go -pkg invitation . userRepo
//go:generate moq -out work_repo_mock_test.go -pkg invitation . workRepo
//go:generate moq -out conversation_starter_mock_test.go -pkg invitation . conversationStarter
//go:generate moq -out notifier_mock_test.go -pkg invitation . notifier
//go:generate moq -out event_publisher_mock_test.go -pkg invitation . eventPublisher
//go:generate moq -out tx_manager_mock_test.go -pkg invitation . txManager

type invitationRepo interface {
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.InvitationStatus, at time.Time) (*domain.Invitation, error)
	ExpirePending(ctx context.Context, before, at time.Time) (int64, error)
	ListPendingForReceiver(ctx context.Context, receiverID uuid.UUID, kind domain.InvitationKind) ([]*domain.Invitation, error)
	ListByWork(ctx context.Context, workID uuid.UUID) ([]*domain.Invitation, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type workRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Work, error)
	AddCollaborator(ctx context.Context, workID, userID uuid.UUID) (bool, error)
}

type conversationStarter interface {
	GetOrCreateDirect(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error)
}

type notifier interface {
	Record(ctx context.Context, input notification.NotifyInput) (*domain.Notification, error)
	Deliver(ctx context.Context, n *domain.Notification)
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.Event, channels ...domain.Channel) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the invitation life cycle.
type Service struct {
	log           *slog.Logger
	invitations   invitationRepo
	users         userRepo
	works         workRepo
	conversations conversationStarter
	notifier      notifier
	events        eventPublisher
	tx            txManager
	cfg           config.InvitationConfig
	now           func() time.Time
}

// NewService creates a new invitation service.
func NewService(
	logger *slog.Logger,
	invitations invitationRepo,
	users userRepo,
	works workRepo,
	conversations conversationStarter,
	notifier notifier,
	events eventPublisher,
	tx txManager,
	cfg config.InvitationConfig,
) *Service {
	return &Service{
		log:           logger.With("service", "invitation"),
		invitations:   invitations,
		users:         users,
		works:         works,
		conversations: conversations,
		notifier:      notifier,
		events:        events,
		tx:            tx,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

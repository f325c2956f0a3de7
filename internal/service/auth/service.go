// Package auth resolves gateway credentials to active users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

//go:generate moq -out token_validator_mock_test.go -pkg auth . tokenValidator
//go:generate moq -out user_repo_mock_test.go -pkg auth . userRepo

// tokenValidator checks a bearer token and returns its subject.
type tokenValidator interface {
	ValidateAccessToken(token string) (uuid.UUID, error)
}

// userRepo is the user directory lookup needed by the verifier.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Verifier turns a presented credential into an authenticated user.
// It has no side effects.
type Verifier struct {
	log    *slog.Logger
	tokens tokenValidator
	users  userRepo
}

// NewVerifier creates a new token verifier.
func NewVerifier(logger *slog.Logger, tokens tokenValidator, users userRepo) *Verifier {
	return &Verifier{
		log:    logger.With("service", "auth"),
		tokens: tokens,
		users:  users,
	}
}

// Verify validates token and returns the active user it names.
// A malformed, expired or badly signed token yields
// domain.ErrInvalidCredential; a valid token for a missing or deactivated
// user yields domain.ErrUnknownSubject.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	userID, err := v.tokens.ValidateAccessToken(token)
	if err != nil {
		v.log.DebugContext(ctx, "token rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredential, err)
	}

	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrUnknownSubject)
		}
		return nil, fmt.Errorf("verify token: get user: %w", err)
	}

	if !user.IsActive {
		v.log.InfoContext(ctx, "token for inactive user", slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("user %s inactive: %w", userID, domain.ErrUnknownSubject)
	}

	return user, nil
}

package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates an active user with a unique username.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()

	suffix := uniqueSuffix()
	user := domain.User{
		ID:          uuid.New(),
		Username:    "user-" + suffix,
		DisplayName: "Test User " + suffix,
		IsActive:    true,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, display_name, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.DisplayName, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert: %v", err)
	}

	return user
}

// SeedInactiveUser creates a deactivated user.
func SeedInactiveUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()

	user := SeedUser(t, pool)
	if _, err := pool.Exec(context.Background(), `UPDATE users SET is_active = FALSE WHERE id = $1`, user.ID); err != nil {
		t.Fatalf("testhelper: SeedInactiveUser update: %v", err)
	}
	user.IsActive = false
	return user
}

// SeedWork creates a work owned by ownerID.
func SeedWork(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID) domain.Work {
	t.Helper()

	work := domain.Work{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     "Beat " + uniqueSuffix(),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO works (id, owner_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		work.ID, work.OwnerID, work.Title, work.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWork insert: %v", err)
	}

	return work
}

// SeedGroupConversation creates a non-direct conversation with the given participants.
func SeedGroupConversation(t *testing.T, pool *pgxpool.Pool, title string, participants ...uuid.UUID) domain.Conversation {
	t.Helper()
	ctx := context.Background()

	conv := domain.Conversation{
		ID:           uuid.New(),
		Title:        title,
		Participants: participants,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO conversations (id, title, created_at) VALUES ($1, $2, $3)`,
		conv.ID, conv.Title, conv.CreatedAt,
	); err != nil {
		t.Fatalf("testhelper: SeedGroupConversation insert: %v", err)
	}

	for _, userID := range participants {
		if _, err := pool.Exec(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2)`,
			conv.ID, userID,
		); err != nil {
			t.Fatalf("testhelper: SeedGroupConversation participant: %v", err)
		}
	}

	return conv
}

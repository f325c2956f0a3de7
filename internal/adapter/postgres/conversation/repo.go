// Package conversation implements conversation and participant persistence
// using PostgreSQL.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Repo provides conversation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const conversationSelect = `
SELECT c.id, c.title, c.direct_key, c.created_at,
       COALESCE(array_agg(p.user_id ORDER BY p.joined_at, p.user_id)
                FILTER (WHERE p.user_id IS NOT NULL), '{}')
FROM conversations c
LEFT JOIN conversation_participants p ON p.conversation_id = c.id`

const getByIDSQL = conversationSelect + `
WHERE c.id = $1
GROUP BY c.id`

// The conversation row and both participant rows are written by a single
// statement, so a concurrent reader never sees a direct conversation
// without its participants.
const createDirectSQL = `
WITH ins AS (
    INSERT INTO conversations (id, title, direct_key, created_at)
    VALUES ($1, '', $2, $3)
    ON CONFLICT (direct_key) DO NOTHING
    RETURNING id
), parts AS (
    INSERT INTO conversation_participants (conversation_id, user_id, joined_at)
    SELECT ins.id, u, $3 FROM ins, unnest($4::uuid[]) AS u
)
SELECT id FROM ins`

const getIDByDirectKeySQL = `
SELECT id FROM conversations WHERE direct_key = $1`

const listForUserSQL = conversationSelect + `
WHERE c.id IN (SELECT conversation_id FROM conversation_participants WHERE user_id = $1)
GROUP BY c.id
ORDER BY c.created_at DESC, c.id DESC`

const isParticipantSQL = `
SELECT EXISTS(SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2)`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a conversation with its participants.
// Returns domain.ErrNotFound if the conversation does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	c, err := scanConversation(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "conversation", id)
	}

	return c, nil
}

// ListForUser returns every conversation userID participates in, newest first.
func (r *Repo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listForUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations for user %s: %w", userID, err)
	}
	defer rows.Close()

	conversations := []*domain.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("list conversations for user %s: %w", userID, err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations for user %s: %w", userID, err)
	}

	return conversations, nil
}

// IsParticipant reports whether userID takes part in the conversation.
func (r *Repo) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var ok bool
	if err := querier.QueryRow(ctx, isParticipantSQL, conversationID, userID).Scan(&ok); err != nil {
		return false, postgres.MapError(err, "conversation", conversationID)
	}

	return ok, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// GetOrCreateDirect returns the direct conversation between a and b,
// creating it if it does not exist yet. Concurrent calls for the same pair
// converge on one conversation. The second return value reports whether
// this call created it.
func (r *Repo) GetOrCreateDirect(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, bool, error) {
	if a == b {
		return nil, false, fmt.Errorf("direct conversation with self: %w", domain.ErrSelfMessageNotAllowed)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	key := domain.DirectKey(a, b)
	newID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	created := true
	var id uuid.UUID
	err := querier.QueryRow(ctx, createDirectSQL, newID, key, now, []uuid.UUID{a, b}).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
		err = querier.QueryRow(ctx, getIDByDirectKeySQL, key).Scan(&id)
	}
	if err != nil {
		return nil, false, postgres.MapError(err, "conversation", newID)
	}

	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	return c, created, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := row.Scan(&c.ID, &c.Title, &c.DirectKey, &c.CreatedAt, &c.Participants); err != nil {
		return nil, err
	}
	return &c, nil
}

// Package message implements chat message persistence using PostgreSQL.
package message

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Repo provides message persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new message repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const messageColumns = `id, seq, conversation_id, sender_id, receiver_id, content, created_at, seen_at`

var messageColumnList = []string{
	"id", "seq", "conversation_id", "sender_id", "receiver_id", "content", "created_at", "seen_at",
}

const createSQL = `
INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + messageColumns

const getByIDSQL = `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

const markSeenSQL = `
UPDATE messages SET seen_at = $2
WHERE id = $1 AND seen_at IS NULL
RETURNING ` + messageColumns

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a message by its ID.
// Returns domain.ErrNotFound if the message does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	m, err := scanMessage(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "message", id)
	}

	return m, nil
}

// List returns up to limit messages of a conversation with seq below
// before, in ascending order. A zero before starts from the newest message.
// The page is read newest-first and reversed so that the cursor always walks
// backwards through history.
func (r *Repo) List(ctx context.Context, conversationID uuid.UUID, before int64, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "must be positive")
	}

	q := postgres.Builder().
		Select(messageColumnList...).
		From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("seq DESC").
		Limit(uint64(limit))
	if before > 0 {
		q = q.Where(squirrel.Lt{"seq": before})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list messages query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a message and returns it with its assigned seq.
// A zero CreatedAt is replaced with the current time.
func (r *Repo) Create(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC().Truncate(time.Microsecond)

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanMessage(querier.QueryRow(ctx, createSQL,
		m.ID, m.ConversationID, m.SenderID, m.ReceiverID, m.Content, createdAt,
	))
	if err != nil {
		return nil, postgres.MapError(err, "message", m.ID)
	}

	return created, nil
}

// MarkSeen sets seen_at on an unseen message. An already seen message is
// returned unchanged with changed=false, so repeated calls are harmless.
func (r *Repo) MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) (*domain.Message, bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	m, err := scanMessage(querier.QueryRow(ctx, markSeenSQL, id, at.UTC().Truncate(time.Microsecond)))
	if err == nil {
		return m, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, postgres.MapError(err, "message", id)
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(
		&m.ID, &m.Seq, &m.ConversationID, &m.SenderID, &m.ReceiverID,
		&m.Content, &m.CreatedAt, &m.SeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

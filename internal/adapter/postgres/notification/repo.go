// Package notification implements persisted user notifications using PostgreSQL.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Repo provides notification persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new notification repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const notificationColumns = `id, user_id, actor_id, category, text, is_read, created_at`

const createSQL = `
INSERT INTO notifications (id, user_id, actor_id, category, text, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + notificationColumns

const listUnreadSQL = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE user_id = $1 AND NOT is_read
ORDER BY seq
LIMIT $2`

const markReadSQL = `
UPDATE notifications SET is_read = TRUE
WHERE id = $1 AND user_id = $2`

const markAllReadSQL = `
UPDATE notifications SET is_read = TRUE
WHERE user_id = $1 AND NOT is_read`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Create stores a new unread notification.
func (r *Repo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanNotification(querier.QueryRow(ctx, createSQL,
		n.ID, n.UserID, n.ActorID, string(n.Category), n.Text, createdAt.UTC().Truncate(time.Microsecond),
	))
	if err != nil {
		return nil, postgres.MapError(err, "notification", n.ID)
	}

	return created, nil
}

// ListUnread returns up to limit unread notifications for userID, oldest
// first, in the order they were created.
func (r *Repo) ListUnread(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var rows []notificationRow
	if err := pgxscan.Select(ctx, querier, &rows, listUnreadSQL, userID, limit); err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}

	out := make([]*domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// MarkRead marks one of userID's notifications as read. Marking an already
// read notification succeeds. A notification owned by somebody else is
// reported as not found.
func (r *Repo) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, markReadSQL, id, userID)
	if err != nil {
		return postgres.MapError(err, "notification", id)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "notification", id)
	}

	return nil
}

// MarkAllRead marks every unread notification of userID as read and returns
// how many changed.
func (r *Repo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, markAllReadSQL, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

type notificationRow struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	ActorID   *uuid.UUID `db:"actor_id"`
	Category  string     `db:"category"`
	Text      string     `db:"text"`
	IsRead    bool       `db:"is_read"`
	CreatedAt time.Time  `db:"created_at"`
}

func (r notificationRow) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		ActorID:   r.ActorID,
		Category:  domain.NotificationCategory(r.Category),
		Text:      r.Text,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n        domain.Notification
		category string
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.ActorID, &category, &n.Text, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Category = domain.NotificationCategory(category)
	return &n, nil
}

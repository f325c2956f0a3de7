// Package work implements the draft-beat repository used by collaboration
// invitations: owner lookup and the collaborator set.
package work

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Repo provides work lookups and collaborator writes backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new work repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const workColumns = `id, owner_id, title, created_at`

const getByIDSQL = `
SELECT ` + workColumns + `
FROM works
WHERE id = $1`

const listCollaboratorsSQL = `
SELECT user_id
FROM work_collaborators
WHERE work_id = $1
ORDER BY added_at, user_id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a work by primary key.
// Returns domain.ErrNotFound if the work does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Work, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	w, err := scanWork(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "work", id)
	}

	return w, nil
}

// ListCollaborators returns the collaborator IDs of a work in the order they
// were added. The owner is not included.
func (r *Repo) ListCollaborators(ctx context.Context, workID uuid.UUID) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listCollaboratorsSQL, workID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators of work %s: %w", workID, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("list collaborators of work %s: %w", workID, err)
	}

	return ids, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// AddCollaborator adds userID to the collaborator set of workID. Adding an
// existing collaborator is a no-op; the return value reports whether a row
// was inserted.
func (r *Repo) AddCollaborator(ctx context.Context, workID, userID uuid.UUID) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query := postgres.Builder().
		Insert("work_collaborators").
		Columns("work_id", "user_id").
		Values(workID, userID).
		Suffix("ON CONFLICT (work_id, user_id) DO NOTHING")

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build add collaborator query: %w", err)
	}

	ct, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.MapError(err, "work", workID)
	}

	return ct.RowsAffected() == 1, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanWork(row pgx.Row) (*domain.Work, error) {
	var w domain.Work
	if err := row.Scan(&w.ID, &w.OwnerID, &w.Title, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

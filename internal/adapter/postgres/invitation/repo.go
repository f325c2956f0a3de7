// Package invitation implements the invitation repository using PostgreSQL.
// Status changes are compare-and-set updates guarded by status = 'pending',
// which is what serializes concurrent accept/decline across processes.
package invitation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// Constraint names declared in the invitations migration.
const (
	pendingUniqueIndex = "ux_invitations_pending"
	notSelfConstraint  = "ck_invitations_not_self"
	workKindConstraint = "ck_invitations_work_kind"
)

// Repo provides invitation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new invitation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const invitationColumns = `id, kind, sender_id, receiver_id, work_id, message, status, created_at, responded_at`

const createSQL = `
INSERT INTO invitations (id, kind, sender_id, receiver_id, work_id, message, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
RETURNING ` + invitationColumns

const getByIDSQL = `
SELECT ` + invitationColumns + `
FROM invitations
WHERE id = $1`

const transitionSQL = `
UPDATE invitations
SET status = $2, responded_at = $3
WHERE id = $1 AND status = 'pending'
RETURNING ` + invitationColumns

const existsSQL = `
SELECT EXISTS(SELECT 1 FROM invitations WHERE id = $1)`

const expirePendingSQL = `
UPDATE invitations
SET status = 'expired', responded_at = $2
WHERE status = 'pending' AND created_at < $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an invitation by primary key.
// Returns domain.ErrNotFound if the invitation does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	inv, err := scanInvitation(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "invitation", id)
	}

	return inv, nil
}

// ListFilter narrows List. Zero-valued fields are ignored.
type ListFilter struct {
	ReceiverID  *uuid.UUID
	SenderID    *uuid.UUID
	WorkID      *uuid.UUID
	Kind        domain.InvitationKind
	Status      domain.InvitationStatus
	NewestFirst bool
}

// List returns invitations matching the filter in insertion order (oldest
// first unless NewestFirst is set). Insertion order is the seq column, so
// invitations sharing a created_at keep the order they were stored in.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]*domain.Invitation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query := postgres.Builder().
		Select(invitationColumns).
		From("invitations")

	if f.ReceiverID != nil {
		query = query.Where(squirrel.Eq{"receiver_id": *f.ReceiverID})
	}
	if f.SenderID != nil {
		query = query.Where(squirrel.Eq{"sender_id": *f.SenderID})
	}
	if f.WorkID != nil {
		query = query.Where(squirrel.Eq{"work_id": *f.WorkID})
	}
	if f.Kind != "" {
		query = query.Where(squirrel.Eq{"kind": string(f.Kind)})
	}
	if f.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(f.Status)})
	}

	if f.NewestFirst {
		query = query.OrderBy("seq DESC")
	} else {
		query = query.OrderBy("seq ASC")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invitations query: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	invitations, err := scanInvitations(rows)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	return invitations, nil
}

// ListPendingForReceiver returns the pending invitations of one kind
// received by a user, oldest first.
func (r *Repo) ListPendingForReceiver(ctx context.Context, receiverID uuid.UUID, kind domain.InvitationKind) ([]*domain.Invitation, error) {
	return r.List(ctx, ListFilter{
		ReceiverID: &receiverID,
		Kind:       kind,
		Status:     domain.InvitationStatusPending,
	})
}

// ListByWork returns every invitation issued for a work, newest first.
func (r *Repo) ListByWork(ctx context.Context, workID uuid.UUID) ([]*domain.Invitation, error) {
	return r.List(ctx, ListFilter{WorkID: &workID, NewestFirst: true})
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new pending invitation.
// A second pending invitation for the same (sender, receiver, kind, work)
// returns domain.ErrDuplicateInvite; a self-invite returns
// domain.ErrSelfInviteNotAllowed; an unknown user or work returns
// domain.ErrNotFound.
func (r *Repo) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	createdAt := inv.CreatedAt.UTC().Truncate(time.Microsecond)
	if inv.CreatedAt.IsZero() {
		createdAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	row := querier.QueryRow(ctx, createSQL,
		inv.ID,
		string(inv.Kind),
		inv.SenderID,
		inv.ReceiverID,
		inv.WorkID,
		inv.Message,
		createdAt,
	)

	created, err := scanInvitation(row)
	if err != nil {
		return nil, mapCreateError(err, inv.ID)
	}

	return created, nil
}

// Transition moves a pending invitation to status `to` and stamps
// responded_at. It is a compare-and-set: if the invitation is no longer
// pending, domain.ErrInvalidState is returned and nothing changes.
func (r *Repo) Transition(ctx context.Context, id uuid.UUID, to domain.InvitationStatus, at time.Time) (*domain.Invitation, error) {
	if !domain.CanTransition(domain.InvitationStatusPending, to) {
		return nil, fmt.Errorf("invitation %s: transition to %s: %w", id, to, domain.ErrValidation)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, transitionSQL, id, string(to), at.UTC().Truncate(time.Microsecond))

	updated, err := scanInvitation(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "invitation", id)
	}

	// No pending row matched. Distinguish a lost race from a bad ID.
	var exists bool
	if err := querier.QueryRow(ctx, existsSQL, id).Scan(&exists); err != nil {
		return nil, postgres.MapError(err, "invitation", id)
	}
	if exists {
		return nil, fmt.Errorf("invitation %s: %w", id, domain.ErrInvalidState)
	}
	return nil, fmt.Errorf("invitation %s: %w", id, domain.ErrNotFound)
}

// ExpirePending moves every invitation created before `before` from
// pending to expired and returns how many were changed.
func (r *Repo) ExpirePending(ctx context.Context, before, at time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, expirePendingSQL, before.UTC(), at.UTC().Truncate(time.Microsecond))
	if err != nil {
		return 0, fmt.Errorf("expire pending invitations: %w", err)
	}

	return ct.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var (
		inv    domain.Invitation
		kind   string
		status string
	)

	if err := row.Scan(
		&inv.ID, &kind, &inv.SenderID, &inv.ReceiverID, &inv.WorkID,
		&inv.Message, &status, &inv.CreatedAt, &inv.RespondedAt,
	); err != nil {
		return nil, err
	}

	inv.Kind = domain.InvitationKind(kind)
	inv.Status = domain.InvitationStatus(status)
	return &inv, nil
}

func scanInvitations(rows pgx.Rows) ([]*domain.Invitation, error) {
	invitations := []*domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invitations, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapCreateError(err error, id uuid.UUID) error {
	switch postgres.ConstraintName(err) {
	case pendingUniqueIndex:
		return fmt.Errorf("invitation %s: %w", id, domain.ErrDuplicateInvite)
	case notSelfConstraint:
		return fmt.Errorf("invitation %s: %w", id, domain.ErrSelfInviteNotAllowed)
	case workKindConstraint:
		return fmt.Errorf("invitation %s: work_id does not match kind: %w", id, domain.ErrValidation)
	}
	return postgres.MapError(err, "invitation", id)
}

package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
)

type PgxInvitationRepository struct {
	BaseRepository
}

// newPgxInvitationRepository creates a new repository for group invitation data.
func newPgxInvitationRepository(pool *pgxpool.Pool) portsrepo.InvitationRepositoryFacade {
	return &PgxInvitationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxInvitationRepository implements portsrepo.InvitationRepositoryFacade
var _ portsrepo.InvitationRepositoryFacade = (*PgxInvitationRepository)(nil)

const invitationSelect = `
	SELECT invitation_id, group_id, code, link, created_by, expires_at,
	       max_uses, current_uses, is_active, created_at
	FROM invitations
`

func scanInvitations(rows pgx.Rows) ([]domain.Invitation, error) {
	defer rows.Close()
	invitations := []domain.Invitation{}
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(
			&inv.InvitationID,
			&inv.GroupID,
			&inv.Code,
			&inv.Link,
			&inv.CreatedBy,
			&inv.ExpiresAt,
			&inv.MaxUses,
			&inv.CurrentUses,
			&inv.IsActive,
			&inv.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invitation row", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invitation rows", err)
	}
	return invitations, nil
}

func (r *PgxInvitationRepository) SaveInvitation(ctx context.Context, invitation domain.Invitation) error {
	query := `
		INSERT INTO invitations (
			invitation_id, group_id, code, link, created_by, expires_at,
			max_uses, current_uses, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		invitation.InvitationID,
		invitation.GroupID,
		invitation.Code,
		invitation.Link,
		invitation.CreatedBy,
		invitation.ExpiresAt,
		invitation.MaxUses,
		invitation.CurrentUses,
		invitation.IsActive,
		invitation.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("invitation code " + invitation.Code + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save invitation "+invitation.InvitationID, err)
	}
	return nil
}

func (r *PgxInvitationRepository) FindInvitationByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	rows, err := r.Pool.Query(ctx, invitationSelect+` WHERE code = $1;`, code)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invitation by code", err)
	}
	invitations, err := scanInvitations(rows)
	if err != nil {
		return nil, err
	}
	if len(invitations) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &invitations[0], nil
}

func (r *PgxInvitationRepository) ListInvitationsByGroup(ctx context.Context, groupID string) ([]domain.Invitation, error) {
	rows, err := r.Pool.Query(ctx, invitationSelect+` WHERE group_id = $1 ORDER BY created_at DESC;`, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invitations for group "+groupID, err)
	}
	return scanInvitations(rows)
}

// IncrementInvitationUses bumps the use counter. The guard repeats the
// redeemability checks so a concurrent burst of joins cannot push the counter
// past max_uses.
func (r *PgxInvitationRepository) IncrementInvitationUses(ctx context.Context, invitationID string) error {
	query := `
		UPDATE invitations
		SET current_uses = current_uses + 1
		WHERE invitation_id = $1
		  AND is_active = true
		  AND (max_uses IS NULL OR current_uses < max_uses);
	`
	result, err := r.Pool.Exec(ctx, query, invitationID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to increment uses for invitation "+invitationID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewConflictError("invitation " + invitationID + " is no longer redeemable")
	}
	return nil
}

func (r *PgxInvitationRepository) DeactivateInvitation(ctx context.Context, invitationID string) error {
	result, err := r.Pool.Exec(ctx,
		`UPDATE invitations SET is_active = false WHERE invitation_id = $1;`,
		invitationID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate invitation "+invitationID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

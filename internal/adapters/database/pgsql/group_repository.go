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

type PgxGroupRepository struct {
	BaseRepository
}

// newPgxGroupRepository creates a new repository for group, membership and
// pending member data.
func newPgxGroupRepository(pool *pgxpool.Pool) portsrepo.GroupRepositoryWithTx {
	return &PgxGroupRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGroupRepository implements portsrepo.GroupRepositoryWithTx
var _ portsrepo.GroupRepositoryWithTx = (*PgxGroupRepository)(nil)

var FULL_GROUP_SELECT_QUERY = `
SELECT
	g.group_id, g.name, g.description, g.currency_code, g.total_expenses,
	g.created_at, g.created_by, g.last_updated_at, g.last_updated_by
FROM groups g
`

// getGroups runs the full group select with the given filter and collects the rows.
func (r *PgxGroupRepository) getGroups(ctx context.Context, filterQuery string, args ...any) ([]domain.Group, error) {
	query := FULL_GROUP_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query groups", err)
	}
	defer rows.Close()
	groups, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Group])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Group{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect group rows", err)
	}
	return groups, nil
}

func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	query := `
		INSERT INTO groups (
			group_id, name, description, currency_code, total_expenses,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		group.GroupID,
		group.Name,
		group.Description,
		group.CurrencyCode,
		group.TotalExpenses,
		group.CreatedAt,
		group.CreatedBy,
		group.LastUpdatedAt,
		group.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("group ID " + group.GroupID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save group "+group.GroupID, err)
	}
	return nil
}

func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	groups, err := r.getGroups(ctx, `WHERE g.group_id = $1`, groupID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &groups[0], nil
}

func (r *PgxGroupRepository) ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error) {
	filter := `
		JOIN group_members gm ON g.group_id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.name;
	`
	return r.getGroups(ctx, filter, userID)
}

func (r *PgxGroupRepository) UpdateGroup(ctx context.Context, group domain.Group) error {
	query := `
		UPDATE groups
		SET name = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE group_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query,
		group.GroupID,
		group.Name,
		group.Description,
		group.LastUpdatedAt,
		group.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update group "+group.GroupID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteGroup removes a group. Dependent rows (memberships, pending members,
// expenses, participants, invitations) are removed by ON DELETE CASCADE.
func (r *PgxGroupRepository) DeleteGroup(ctx context.Context, groupID string) error {
	result, err := r.Pool.Exec(ctx, `DELETE FROM groups WHERE group_id = $1;`, groupID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete group "+groupID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxGroupRepository) AddUserToGroup(ctx context.Context, membership domain.GroupMember) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO UPDATE SET role = EXCLUDED.role;
	` // Upsert: add the user or update their role if they are already a member
	_, err := r.Pool.Exec(ctx, query,
		membership.GroupID,
		membership.UserID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add user "+membership.UserID+" to group "+membership.GroupID, err)
	}
	return nil
}

func (r *PgxGroupRepository) RemoveUserFromGroup(ctx context.Context, groupID, userID string) error {
	result, err := r.Pool.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2;`,
		groupID, userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to remove user "+userID+" from group "+groupID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("membership not found")
	}
	return nil
}

func (r *PgxGroupRepository) FindUserGroupRole(ctx context.Context, userID, groupID string) (*domain.GroupMember, error) {
	query := `
		SELECT gm.group_id, gm.user_id, u.full_name, gm.role, gm.joined_at
		FROM group_members gm
		JOIN users u ON gm.user_id = u.user_id
		WHERE gm.user_id = $1 AND gm.group_id = $2;
	`
	var m domain.GroupMember
	err := r.Pool.QueryRow(ctx, query, userID, groupID).Scan(
		&m.GroupID,
		&m.UserID,
		&m.FullName,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("membership not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find role for user "+userID+" in group "+groupID, err)
	}
	return &m, nil
}

func (r *PgxGroupRepository) UpdateUserGroupRole(ctx context.Context, groupID, userID string, role domain.GroupRole) error {
	result, err := r.Pool.Exec(ctx,
		`UPDATE group_members SET role = $3 WHERE group_id = $1 AND user_id = $2;`,
		groupID, userID, role,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update role for user "+userID+" in group "+groupID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("membership not found")
	}
	return nil
}

func (r *PgxGroupRepository) ListGroupMembers(ctx context.Context, groupID string) ([]domain.GroupMember, error) {
	query := `
		SELECT gm.group_id, gm.user_id, u.full_name, gm.role, gm.joined_at
		FROM group_members gm
		JOIN users u ON gm.user_id = u.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query members for group "+groupID, err)
	}
	defer rows.Close()

	members := []domain.GroupMember{}
	for rows.Next() {
		var m domain.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.FullName, &m.Role, &m.JoinedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan group member row", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating group member rows", err)
	}
	return members, nil
}

func (r *PgxGroupRepository) CountGroupAdmins(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND role = $2;`,
		groupID, domain.RoleAdmin,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count admins for group "+groupID, err)
	}
	return count, nil
}

func (r *PgxGroupRepository) SavePendingMember(ctx context.Context, pending domain.PendingMember) error {
	query := `
		INSERT INTO pending_members (
			pending_id, group_id, email, display_name, phone, invited_by, status, user_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		pending.PendingID,
		pending.GroupID,
		pending.Email,
		pending.DisplayName,
		pending.Phone,
		pending.InvitedBy,
		pending.Status,
		pending.UserID,
		pending.CreatedAt,
		pending.CreatedBy,
		pending.LastUpdatedAt,
		pending.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("a pending member for " + pending.Email + " already exists in this group")
		}
		return apperrors.NewAppError(500, "failed to save pending member "+pending.PendingID, err)
	}
	return nil
}

const pendingMemberSelect = `
	SELECT pending_id, group_id, email, display_name, phone, invited_by, status, user_id,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM pending_members
`

func scanPendingMembers(rows pgx.Rows) ([]domain.PendingMember, error) {
	defer rows.Close()
	pendings := []domain.PendingMember{}
	for rows.Next() {
		var p domain.PendingMember
		if err := rows.Scan(
			&p.PendingID,
			&p.GroupID,
			&p.Email,
			&p.DisplayName,
			&p.Phone,
			&p.InvitedBy,
			&p.Status,
			&p.UserID,
			&p.CreatedAt,
			&p.CreatedBy,
			&p.LastUpdatedAt,
			&p.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan pending member row", err)
		}
		pendings = append(pendings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating pending member rows", err)
	}
	return pendings, nil
}

func (r *PgxGroupRepository) FindPendingMemberByID(ctx context.Context, pendingID string) (*domain.PendingMember, error) {
	rows, err := r.Pool.Query(ctx, pendingMemberSelect+` WHERE pending_id = $1;`, pendingID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending member "+pendingID, err)
	}
	pendings, err := scanPendingMembers(rows)
	if err != nil {
		return nil, err
	}
	if len(pendings) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &pendings[0], nil
}

func (r *PgxGroupRepository) FindPendingMembersByEmail(ctx context.Context, email string) ([]domain.PendingMember, error) {
	rows, err := r.Pool.Query(ctx, pendingMemberSelect+` WHERE lower(email) = lower($1) ORDER BY created_at;`, email)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending members for email", err)
	}
	return scanPendingMembers(rows)
}

func (r *PgxGroupRepository) ListPendingMembers(ctx context.Context, groupID string, status *domain.PendingMemberStatus) ([]domain.PendingMember, error) {
	var rows pgx.Rows
	var err error
	if status != nil {
		rows, err = r.Pool.Query(ctx, pendingMemberSelect+` WHERE group_id = $1 AND status = $2 ORDER BY created_at;`, groupID, *status)
	} else {
		rows, err = r.Pool.Query(ctx, pendingMemberSelect+` WHERE group_id = $1 ORDER BY created_at;`, groupID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending members for group "+groupID, err)
	}
	return scanPendingMembers(rows)
}

// ReconcilePendingMember attaches a registered user to a pending membership:
// every expense participation and paid_by reference held by the placeholder is
// repointed to the user id, the group membership is created and the pending
// row is marked registered. All of it happens in one transaction so a crash
// can never leave history half repointed.
func (r *PgxGroupRepository) ReconcilePendingMember(ctx context.Context, pendingID string, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock the pending row so concurrent reconciliations serialize
	var groupID string
	var status domain.PendingMemberStatus
	err = tx.QueryRow(ctx,
		`SELECT group_id, status FROM pending_members WHERE pending_id = $1 FOR UPDATE;`,
		pendingID,
	).Scan(&groupID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock pending member "+pendingID, err)
	}
	if status != domain.PendingStatusPending {
		// Already reconciled; nothing to repoint
		return r.Commit(ctx, tx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE expense_participants
		SET member_id = $2, member_kind = $3
		WHERE member_id = $1 AND member_kind = $4;
	`, pendingID, userID, domain.MemberRegistered, domain.MemberPending)
	if err != nil {
		return apperrors.NewAppError(500, "failed to repoint participations for pending member "+pendingID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE expenses
		SET paid_by_id = $2, paid_by_kind = $3
		WHERE paid_by_id = $1 AND paid_by_kind = $4;
	`, pendingID, userID, domain.MemberRegistered, domain.MemberPending)
	if err != nil {
		return apperrors.NewAppError(500, "failed to repoint payer references for pending member "+pendingID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (group_id, user_id) DO NOTHING;
	`, groupID, userID, domain.RoleMember)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add reconciled member to group "+groupID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE pending_members
		SET status = $2, user_id = $3, last_updated_at = NOW(), last_updated_by = $3
		WHERE pending_id = $1;
	`, pendingID, domain.PendingStatusRegistered, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark pending member "+pendingID+" registered", err)
	}

	return r.Commit(ctx, tx)
}

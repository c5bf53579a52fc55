package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	"github.com/splitnest/splitnest_backend/internal/utils/pagination"
)

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense and participant data.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryWithTx {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryWithTx
var _ portsrepo.ExpenseRepositoryWithTx = (*PgxExpenseRepository)(nil)

const expenseSelect = `
	SELECT expense_id, group_id, description, amount, currency_code, category,
	       expense_date, split_type, paid_by_id, paid_by_kind, is_settled,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM expenses
`

func scanExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	defer rows.Close()
	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(
			&e.ExpenseID,
			&e.GroupID,
			&e.Description,
			&e.Amount,
			&e.CurrencyCode,
			&e.Category,
			&e.ExpenseDate,
			&e.SplitType,
			&e.PaidBy.ID,
			&e.PaidBy.Kind,
			&e.IsSettled,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense row", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating expense rows", err)
	}
	return expenses, nil
}

// loadParticipants fetches the participants of the given expenses in one round
// trip and attaches them in expense order.
func (r *PgxExpenseRepository) loadParticipants(ctx context.Context, expenses []domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	ids := make([]string, len(expenses))
	index := make(map[string]*domain.Expense, len(expenses))
	for i := range expenses {
		ids[i] = expenses[i].ExpenseID
		index[expenses[i].ExpenseID] = &expenses[i]
	}

	query := `
		SELECT participant_id, expense_id, member_id, member_kind, amount_owed, is_paid, created_at
		FROM expense_participants
		WHERE expense_id = ANY($1)
		ORDER BY created_at, participant_id;
	`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query expense participants", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ExpenseParticipant
		if err := rows.Scan(
			&p.ParticipantID,
			&p.ExpenseID,
			&p.Member.ID,
			&p.Member.Kind,
			&p.AmountOwed,
			&p.IsPaid,
			&p.CreatedAt,
		); err != nil {
			return apperrors.NewAppError(500, "failed to scan expense participant row", err)
		}
		if e, ok := index[p.ExpenseID]; ok {
			e.Participants = append(e.Participants, p)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating expense participant rows", err)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	rows, err := r.Pool.Query(ctx, expenseSelect+` WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expense "+expenseID, err)
	}
	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, apperrors.ErrNotFound
	}
	if err := r.loadParticipants(ctx, expenses); err != nil {
		return nil, err
	}
	return &expenses[0], nil
}

// ListExpensesByGroup retrieves a paginated list of expenses for a group using
// token-based pagination. Ordering is expense_date DESC with created_at as a
// stable tie-breaker; the token encodes the cursor position.
func (r *PgxExpenseRepository) ListExpensesByGroup(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether another page exists
	fetchLimit := limit + 1

	filterClause := `WHERE group_id = $1`
	orderByClause := `ORDER BY expense_date DESC, created_at DESC`

	args := []any{groupID}
	query := expenseSelect + " " + filterClause
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (expense_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)
	}
	args = append(args, fetchLimit)
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query expenses for group "+groupID, err)
	}
	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, nil, err
	}

	var newNextToken *string
	if len(expenses) == fetchLimit {
		last := expenses[limit-1]
		token := pagination.EncodeToken(last.ExpenseDate, last.CreatedAt)
		newNextToken = &token
		expenses = expenses[:limit]
	}

	if err := r.loadParticipants(ctx, expenses); err != nil {
		return nil, nil, err
	}
	return expenses, newNextToken, nil
}

func (r *PgxExpenseRepository) ListUnsettledExpensesByGroup(ctx context.Context, groupID string) ([]domain.Expense, error) {
	rows, err := r.Pool.Query(ctx,
		expenseSelect+` WHERE group_id = $1 AND is_settled = false ORDER BY expense_date, created_at;`,
		groupID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unsettled expenses for group "+groupID, err)
	}
	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadParticipants(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// SaveExpense inserts the expense, its participants and the group total
// adjustment within a single transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	expenseQuery := `
		INSERT INTO expenses (
			expense_id, group_id, description, amount, currency_code, category,
			expense_date, split_type, paid_by_id, paid_by_kind, is_settled,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, expenseQuery,
		expense.ExpenseID,
		expense.GroupID,
		expense.Description,
		expense.Amount,
		expense.CurrencyCode,
		expense.Category,
		expense.ExpenseDate,
		expense.SplitType,
		expense.PaidBy.ID,
		expense.PaidBy.Kind,
		expense.IsSettled,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("expense ID " + expense.ExpenseID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to insert expense "+expense.ExpenseID, err)
	}

	// Use pgx batching for the participant inserts
	batch := &pgx.Batch{}
	participantQuery := `
		INSERT INTO expense_participants (participant_id, expense_id, member_id, member_kind, amount_owed, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, p := range expense.Participants {
		batch.Queue(participantQuery,
			p.ParticipantID,
			p.ExpenseID,
			p.Member.ID,
			p.Member.Kind,
			p.AmountOwed,
			p.IsPaid,
			p.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert participants for expense "+expense.ExpenseID, err)
	}

	if err := adjustGroupTotal(ctx, tx, expense.GroupID, expense.Amount); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateExpense updates expense details and adjusts the cached group total by
// amountDelta in the same transaction. Participants are not touched.
func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense, amountDelta decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE expenses
		SET description = $2, amount = $3, category = $4, expense_date = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE expense_id = $1;
	`
	result, err := tx.Exec(ctx, query,
		expense.ExpenseID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.ExpenseDate,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update expense "+expense.ExpenseID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if !amountDelta.IsZero() {
		if err := adjustGroupTotal(ctx, tx, expense.GroupID, amountDelta); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxExpenseRepository) MarkExpenseSettled(ctx context.Context, expenseID string, settled bool, updatedByUserID string) error {
	query := `
		UPDATE expenses
		SET is_settled = $2, last_updated_at = NOW(), last_updated_by = $3
		WHERE expense_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query, expenseID, settled, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update settled flag for expense "+expenseID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteExpense removes the expense and decrements the cached group total in
// one transaction. Participant rows go with the expense via ON DELETE CASCADE.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var groupID string
	var amount decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT group_id, amount FROM expenses WHERE expense_id = $1 FOR UPDATE;`,
		expenseID,
	).Scan(&groupID, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock expense "+expenseID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID); err != nil {
		return apperrors.NewAppError(500, "failed to delete expense "+expenseID, err)
	}

	if err := adjustGroupTotal(ctx, tx, groupID, amount.Neg()); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// adjustGroupTotal shifts the cached total_expenses of a group by delta inside
// the caller's transaction.
func adjustGroupTotal(ctx context.Context, tx pgx.Tx, groupID string, delta decimal.Decimal) error {
	result, err := tx.Exec(ctx, `
		UPDATE groups
		SET total_expenses = total_expenses + $2
		WHERE group_id = $1;
	`, groupID, delta)
	if err != nil {
		return apperrors.NewAppError(500, "failed to adjust expense total for group "+groupID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("group " + groupID + " not found")
	}
	return nil
}

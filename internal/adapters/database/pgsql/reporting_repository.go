package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetUserOverview retrieves lifetime totals and the current net position for a
// user across all of their groups.
func (r *reportingRepository) GetUserOverview(ctx context.Context, userID string) (*domain.UserOverview, error) {
	overview := &domain.UserOverview{
		TotalExpenses:         decimal.Zero,
		NetBalance:            decimal.Zero,
		PendingReimbursements: decimal.Zero,
	}

	query := `
		SELECT
			COALESCE(SUM(e.amount), 0) AS total_expenses,
			COUNT(DISTINCT gm.group_id) AS total_groups
		FROM group_members gm
		LEFT JOIN expenses e ON e.group_id = gm.group_id
		WHERE gm.user_id = $1;
	`
	err := r.Pool.QueryRow(ctx, query, userID).Scan(&overview.TotalExpenses, &overview.TotalGroups)
	if err != nil {
		return nil, fmt.Errorf("error querying user expense totals: %w", err)
	}

	// Net position over unsettled expenses: amounts fronted minus shares owed
	balanceQuery := `
		SELECT
			COALESCE((
				SELECT SUM(e.amount)
				FROM expenses e
				WHERE e.paid_by_id = $1 AND e.paid_by_kind = 'REGISTERED' AND e.is_settled = false
			), 0)
			-
			COALESCE((
				SELECT SUM(ep.amount_owed)
				FROM expense_participants ep
				JOIN expenses e ON ep.expense_id = e.expense_id
				WHERE ep.member_id = $1 AND ep.member_kind = 'REGISTERED' AND e.is_settled = false
			), 0) AS net_balance,
			COALESCE((
				SELECT SUM(ep.amount_owed)
				FROM expense_participants ep
				JOIN expenses e ON ep.expense_id = e.expense_id
				WHERE ep.member_id = $1 AND ep.member_kind = 'REGISTERED'
				  AND ep.is_paid = false AND e.is_settled = false
			), 0) AS pending_reimbursements;
	`
	err = r.Pool.QueryRow(ctx, balanceQuery, userID).Scan(&overview.NetBalance, &overview.PendingReimbursements)
	if err != nil {
		return nil, fmt.Errorf("error querying user net balance: %w", err)
	}

	return overview, nil
}

// GetExpensesByCategory retrieves per-category spend for a user's groups
// within a period.
func (r *reportingRepository) GetExpensesByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategorySummary, error) {
	query := `
		SELECT
			COALESCE(NULLIF(e.category, ''), 'Uncategorized') AS category,
			SUM(e.amount) AS total,
			COUNT(*) AS count
		FROM expenses e
		JOIN group_members gm ON e.group_id = gm.group_id
		WHERE gm.user_id = $1
			AND e.expense_date BETWEEN $2 AND $3
		GROUP BY 1
		ORDER BY total DESC;
	`
	rows, err := r.Pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying category summaries: %w", err)
	}
	defer rows.Close()

	result := []domain.CategorySummary{}
	for rows.Next() {
		var row domain.CategorySummary
		if err := rows.Scan(&row.Category, &row.Total, &row.Count); err != nil {
			return nil, fmt.Errorf("error scanning category summary row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary rows: %w", err)
	}
	return result, nil
}

// GetMonthlyTrends retrieves per-month spend for a user over the trailing months.
func (r *reportingRepository) GetMonthlyTrends(ctx context.Context, userID string, months int) ([]domain.MonthlyTrend, error) {
	if months <= 0 {
		months = 6
	}
	query := `
		SELECT
			to_char(date_trunc('month', e.expense_date), 'YYYY-MM') AS month,
			SUM(e.amount) AS total,
			COUNT(*) AS count
		FROM expenses e
		JOIN group_members gm ON e.group_id = gm.group_id
		WHERE gm.user_id = $1
			AND e.expense_date >= date_trunc('month', NOW()) - ($2 - 1) * INTERVAL '1 month'
		GROUP BY 1
		ORDER BY 1;
	`
	rows, err := r.Pool.Query(ctx, query, userID, months)
	if err != nil {
		return nil, fmt.Errorf("error querying monthly trends: %w", err)
	}
	defer rows.Close()

	result := []domain.MonthlyTrend{}
	for rows.Next() {
		var row domain.MonthlyTrend
		if err := rows.Scan(&row.Month, &row.Total, &row.Count); err != nil {
			return nil, fmt.Errorf("error scanning monthly trend row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly trend rows: %w", err)
	}
	return result, nil
}

// GetTopSpenders ranks the registered members of a group by the amount they
// have fronted.
func (r *reportingRepository) GetTopSpenders(ctx context.Context, groupID string, limit int) ([]domain.TopSpender, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT
			u.user_id,
			u.full_name,
			u.email,
			SUM(e.amount) AS total_spent,
			COUNT(*) AS expense_count
		FROM expenses e
		JOIN users u ON e.paid_by_id = u.user_id AND e.paid_by_kind = 'REGISTERED'
		WHERE e.group_id = $1
		GROUP BY u.user_id, u.full_name, u.email
		ORDER BY total_spent DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying top spenders: %w", err)
	}
	defer rows.Close()

	result := []domain.TopSpender{}
	for rows.Next() {
		var row domain.TopSpender
		if err := rows.Scan(&row.UserID, &row.FullName, &row.Email, &row.TotalSpent, &row.ExpenseCount); err != nil {
			return nil, fmt.Errorf("error scanning top spender row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top spender rows: %w", err)
	}
	return result, nil
}

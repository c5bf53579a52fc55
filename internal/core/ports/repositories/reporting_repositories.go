package repositories

import (
	"context"
	"time"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// ReportingRepository defines operations for retrieving aggregated spending data
type ReportingRepository interface {
	// GetUserOverview retrieves lifetime totals and net position for a user.
	GetUserOverview(ctx context.Context, userID string) (*domain.UserOverview, error)

	// GetExpensesByCategory retrieves per-category spend for a user within a period.
	GetExpensesByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategorySummary, error)

	// GetMonthlyTrends retrieves per-month spend for a user over the trailing months.
	GetMonthlyTrends(ctx context.Context, userID string, months int) ([]domain.MonthlyTrend, error)

	// GetTopSpenders retrieves the members of a group ranked by amount paid.
	GetTopSpenders(ctx context.Context, groupID string, limit int) ([]domain.TopSpender, error)
}

package services

import (
	"context"
	"time"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// ReportingService defines operations for generating spending reports
type ReportingService interface {
	// Overview generates lifetime totals and net position for a user.
	Overview(ctx context.Context, userID string) (*domain.UserOverview, error)

	// ExpensesByCategory generates per-category spend for a user within a period.
	ExpensesByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategorySummary, error)

	// MonthlyTrends generates per-month spend for a user over the trailing months.
	MonthlyTrends(ctx context.Context, userID string, months int) ([]domain.MonthlyTrend, error)

	// TopSpenders ranks the members of a group by amount paid.
	// Only group members may view this.
	TopSpenders(ctx context.Context, groupID string, limit int, requestingUserID string) ([]domain.TopSpender, error)
}

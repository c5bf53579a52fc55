package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingGroupAuthorizer sets the group authorizer for the reporting service.
func WithReportingGroupAuthorizer(authorizer portssvc.GroupAuthorizerSvc) ReportingServiceOption {
	return func(s *reportingService) {
		s.GroupAuthorizer = authorizer
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// Overview generates lifetime totals and net position for a user
func (s *reportingService) Overview(ctx context.Context, userID string) (*domain.UserOverview, error) {
	overview, err := s.reportingRepo.GetUserOverview(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve overview data",
			slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to retrieve overview data: %w", err)
	}

	s.LogDebug(ctx, "Overview report generated",
		slog.String("user_id", userID),
		slog.Int("total_groups", overview.TotalGroups))
	return overview, nil
}

// ExpensesByCategory generates per-category spend for a user within a period
func (s *reportingService) ExpensesByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategorySummary, error) {
	categories, err := s.reportingRepo.GetExpensesByCategory(ctx, userID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve category data",
			slog.String("user_id", userID),
			slog.String("from", from.Format(time.RFC3339)),
			slog.String("to", to.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve category data: %w", err)
	}
	if categories == nil {
		return []domain.CategorySummary{}, nil
	}

	s.LogDebug(ctx, "Category report generated",
		slog.String("user_id", userID),
		slog.Int("category_count", len(categories)))
	return categories, nil
}

// MonthlyTrends generates per-month spend for a user over the trailing months
func (s *reportingService) MonthlyTrends(ctx context.Context, userID string, months int) ([]domain.MonthlyTrend, error) {
	if months <= 0 {
		months = 6
	}

	trends, err := s.reportingRepo.GetMonthlyTrends(ctx, userID, months)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve monthly trend data",
			slog.String("user_id", userID),
			slog.Int("months", months))
		return nil, fmt.Errorf("failed to retrieve monthly trend data: %w", err)
	}
	if trends == nil {
		return []domain.MonthlyTrend{}, nil
	}

	return trends, nil
}

// TopSpenders ranks the members of a group by amount paid.
// Only group members may view this.
func (s *reportingService) TopSpenders(ctx context.Context, groupID string, limit int, requestingUserID string) ([]domain.TopSpender, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, groupID, domain.RoleMember); err != nil {
		s.LogError(ctx, err, "User not authorized to view top spenders",
			slog.String("user_id", requestingUserID),
			slog.String("group_id", groupID))
		return nil, err
	}

	if limit <= 0 {
		limit = 5
	}

	spenders, err := s.reportingRepo.GetTopSpenders(ctx, groupID, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve top spender data",
			slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to retrieve top spender data: %w", err)
	}
	if spenders == nil {
		return []domain.TopSpender{}, nil
	}

	return spenders, nil
}

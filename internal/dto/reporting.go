package dto

import (
	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// OverviewResponse summarizes a user's position across all of their groups.
type OverviewResponse struct {
	TotalExpenses         decimal.Decimal `json:"totalExpenses"`
	TotalGroups           int             `json:"totalGroups"`
	NetBalance            decimal.Decimal `json:"netBalance"`
	PendingReimbursements decimal.Decimal `json:"pendingReimbursements"`
}

// ToOverviewResponse converts a domain.UserOverview to DTO.
func ToOverviewResponse(o *domain.UserOverview) OverviewResponse {
	return OverviewResponse{
		TotalExpenses:         o.TotalExpenses,
		TotalGroups:           o.TotalGroups,
		NetBalance:            o.NetBalance,
		PendingReimbursements: o.PendingReimbursements,
	}
}

// CategoryReportParams defines query parameters for the category report.
type CategoryReportParams struct {
	From string `form:"from"` // RFC 3339 date, defaults to 1 year ago
	To   string `form:"to"`   // RFC 3339 date, defaults to now
}

// CategorySummaryResponse aggregates spend under one category label.
type CategorySummaryResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// CategoryReportResponse wraps per-category summaries.
type CategoryReportResponse struct {
	Categories []CategorySummaryResponse `json:"categories"`
}

// ToCategoryReportResponse converts domain category summaries to DTO.
func ToCategoryReportResponse(cs []domain.CategorySummary) CategoryReportResponse {
	list := make([]CategorySummaryResponse, len(cs))
	for i, c := range cs {
		list[i] = CategorySummaryResponse{Category: c.Category, Total: c.Total, Count: c.Count}
	}
	return CategoryReportResponse{Categories: list}
}

// MonthlyTrendResponse is one month's expense total.
type MonthlyTrendResponse struct {
	Month string          `json:"month"` // "2006-01" format
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// TrendsReportResponse wraps the trailing monthly totals.
type TrendsReportResponse struct {
	Months []MonthlyTrendResponse `json:"months"`
}

// ToTrendsReportResponse converts domain monthly trends to DTO.
func ToTrendsReportResponse(ts []domain.MonthlyTrend) TrendsReportResponse {
	list := make([]MonthlyTrendResponse, len(ts))
	for i, t := range ts {
		list[i] = MonthlyTrendResponse{Month: t.Month, Total: t.Total, Count: t.Count}
	}
	return TrendsReportResponse{Months: list}
}

// TopSpenderResponse ranks a payer by total amount fronted.
type TopSpenderResponse struct {
	UserID       string          `json:"userID"`
	FullName     string          `json:"fullName"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	ExpenseCount int             `json:"expenseCount"`
}

// TopSpendersResponse wraps the ranked payers of a group.
type TopSpendersResponse struct {
	GroupID  string               `json:"groupID"`
	Spenders []TopSpenderResponse `json:"spenders"`
}

// ToTopSpendersResponse converts domain top spenders to DTO.
func ToTopSpendersResponse(groupID string, ss []domain.TopSpender) TopSpendersResponse {
	list := make([]TopSpenderResponse, len(ss))
	for i, s := range ss {
		list[i] = TopSpenderResponse{
			UserID:       s.UserID,
			FullName:     s.FullName,
			TotalSpent:   s.TotalSpent,
			ExpenseCount: s.ExpenseCount,
		}
	}
	return TopSpendersResponse{GroupID: groupID, Spenders: list}
}

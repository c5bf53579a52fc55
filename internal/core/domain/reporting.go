package domain

import (
	"github.com/shopspring/decimal"
)

// UserOverview summarizes a user's position across all of their groups.
type UserOverview struct {
	TotalExpenses         decimal.Decimal `json:"totalExpenses"`         // Sum of expense amounts in the user's groups
	TotalGroups           int             `json:"totalGroups"`           // Number of groups the user belongs to
	NetBalance            decimal.Decimal `json:"netBalance"`            // Paid minus owed over unsettled expenses
	PendingReimbursements decimal.Decimal `json:"pendingReimbursements"` // Unpaid shares the user still owes
}

// CategorySummary aggregates expense amounts under one category label.
type CategorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// MonthlyTrend is one month's expense total for trend charts.
type MonthlyTrend struct {
	Month string          `json:"month"` // "2006-01" format
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// TopSpender ranks a payer by total amount fronted across the user's groups.
type TopSpender struct {
	UserID       string          `json:"userID"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	ExpenseCount int             `json:"expenseCount"`
}

package services

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
	"github.com/splitnest/splitnest_backend/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves a specific expense with its participants.
	GetExpenseByID(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error)

	// ListGroupExpenses retrieves a paginated list of expenses in a group.
	ListGroupExpenses(ctx context.Context, groupID string, userID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// CreateExpense validates and persists a new expense with its participant
	// shares. The expense, its participants and the group total are written
	// atomically.
	CreateExpense(ctx context.Context, groupID string, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error)

	// UpdateExpense updates expense details. Shares are fixed at creation and
	// are not recomputed when the amount changes. Only the creator may edit.
	UpdateExpense(ctx context.Context, groupID string, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error)

	// SettleExpense marks an expense settled, removing it from balance
	// computation. Any group member may settle; settling twice is a no-op.
	SettleExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error)

	// DeleteExpense removes an expense. Only the creator may delete.
	DeleteExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) error
}

// ExpenseSvcFacade combines all expense-related service interfaces
// This is a facade for clients that need access to all operations
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}

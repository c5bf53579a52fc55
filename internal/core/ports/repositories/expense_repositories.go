package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves a specific expense with its participants.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpensesByGroup retrieves a paginated list of expenses for a group using token-based pagination.
	// It returns the expenses (participants populated), a token for the next page, and an error.
	ListExpensesByGroup(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Expense, *string, error)

	// ListUnsettledExpensesByGroup retrieves every unsettled expense of a group
	// with participants populated. This is the snapshot balances are derived from.
	ListUnsettledExpensesByGroup(ctx context.Context, groupID string) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists an expense and its participants and adjusts the group
	// expense total within a single transaction.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpense updates expense details (excluding participants), adjusting
	// the group expense total by amountDelta in the same transaction.
	UpdateExpense(ctx context.Context, expense domain.Expense, amountDelta decimal.Decimal) error

	// MarkExpenseSettled sets the settled flag on an expense.
	MarkExpenseSettled(ctx context.Context, expenseID string, settled bool, updatedByUserID string) error

	// DeleteExpense removes an expense and its participants and decrements the
	// group expense total within a single transaction.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
// This is a facade for clients that need access to all operations
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}

// ExpenseRepositoryWithTx extends ExpenseRepositoryFacade with transaction capabilities
type ExpenseRepositoryWithTx interface {
	ExpenseRepositoryFacade
	TransactionManager
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType indicates how an expense amount is divided into participant shares.
type SplitType string

const (
	SplitEqual  SplitType = "EQUAL"
	SplitCustom SplitType = "CUSTOM"
)

// Expense represents a single payment made by one member of a group, owed in
// shares by a subset of members.
type Expense struct {
	ExpenseID    string          `json:"expenseID"` // Primary Key (UUID)
	GroupID      string          `json:"groupID"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`       // Positive, two decimal places
	CurrencyCode string          `json:"currencyCode"` // Must equal the group currency
	Category     string          `json:"category"`     // Free-form label
	ExpenseDate  time.Time       `json:"expenseDate"`
	SplitType    SplitType       `json:"splitType"`
	PaidBy       MemberRef       `json:"paidBy"` // Must be a current member of the group

	// IsSettled excludes the expense from all outstanding-balance math once
	// true, regardless of per-participant is_paid flags.
	IsSettled bool `json:"isSettled"`

	// Participants is populated on detail reads; nil on list/summary reads.
	Participants []ExpenseParticipant `json:"participants,omitempty"`

	AuditFields
}

// ExpenseParticipant is one member's share of an expense.
// Invariant: the shares of an expense sum to the expense amount within a one
// cent tolerance. Shares are fixed at creation and never recomputed when the
// expense is edited afterwards.
type ExpenseParticipant struct {
	ParticipantID string          `json:"participantID"` // Primary Key (UUID)
	ExpenseID     string          `json:"expenseID"`
	Member        MemberRef       `json:"member"`
	AmountOwed    decimal.Decimal `json:"amountOwed"` // >= 0
	IsPaid        bool            `json:"isPaid"`     // True for the payer's own share at creation
	CreatedAt     time.Time       `json:"createdAt"`
}

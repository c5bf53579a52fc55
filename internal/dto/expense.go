package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// MemberRefDTO identifies a participant by ID and kind.
type MemberRefDTO struct {
	ID   string            `json:"id" binding:"required"`
	Kind domain.MemberKind `json:"kind" binding:"required,oneof=REGISTERED PENDING"`
}

// ToMemberRef converts the DTO to its domain form.
func (r MemberRefDTO) ToMemberRef() domain.MemberRef {
	return domain.MemberRef{ID: r.ID, Kind: r.Kind}
}

// FromMemberRef converts a domain.MemberRef to DTO.
func FromMemberRef(ref domain.MemberRef) MemberRefDTO {
	return MemberRefDTO{ID: ref.ID, Kind: ref.Kind}
}

// ParticipantShareRequest is one member's requested share of a new expense.
// AmountOwed is required for CUSTOM splits and ignored for EQUAL splits.
type ParticipantShareRequest struct {
	Member     MemberRefDTO     `json:"member" binding:"required"`
	AmountOwed *decimal.Decimal `json:"amountOwed"`
}

// CreateExpenseRequest defines data for creating a new expense.
type CreateExpenseRequest struct {
	Description  string                    `json:"description" binding:"required"`
	Amount       decimal.Decimal           `json:"amount" binding:"required"`
	CurrencyCode string                    `json:"currencyCode" binding:"required,iso4217"`
	Category     string                    `json:"category"`
	ExpenseDate  time.Time                 `json:"expenseDate" binding:"required"`
	SplitType    domain.SplitType          `json:"splitType" binding:"required,oneof=EQUAL CUSTOM"`
	PaidBy       MemberRefDTO              `json:"paidBy" binding:"required"`
	Participants []ParticipantShareRequest `json:"participants" binding:"required,min=1,dive"`
}

// UpdateExpenseRequest defines the data allowed for updating an expense.
// Participant shares are fixed at creation and cannot be changed here.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateExpenseRequest struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	ExpenseDate *time.Time       `json:"expenseDate"`
}

// ParticipantResponse defines the data returned for an expense participant.
type ParticipantResponse struct {
	ParticipantID string          `json:"participantID"`
	Member        MemberRefDTO    `json:"member"`
	AmountOwed    decimal.Decimal `json:"amountOwed"`
	IsPaid        bool            `json:"isPaid"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID    string                `json:"expenseID"`
	GroupID      string                `json:"groupID"`
	Description  string                `json:"description"`
	Amount       decimal.Decimal       `json:"amount"`
	CurrencyCode string                `json:"currencyCode"`
	Category     string                `json:"category,omitempty"`
	ExpenseDate  time.Time             `json:"expenseDate"`
	SplitType    domain.SplitType      `json:"splitType"`
	PaidBy       MemberRefDTO          `json:"paidBy"`
	IsSettled    bool                  `json:"isSettled"`
	Participants []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	CreatedBy    string                `json:"createdBy"`
}

// ToParticipantResponse converts a domain.ExpenseParticipant to DTO.
func ToParticipantResponse(p *domain.ExpenseParticipant) ParticipantResponse {
	return ParticipantResponse{
		ParticipantID: p.ParticipantID,
		Member:        FromMemberRef(p.Member),
		AmountOwed:    p.AmountOwed,
		IsPaid:        p.IsPaid,
	}
}

// ToExpenseResponse converts a domain.Expense to DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ExpenseID:    e.ExpenseID,
		GroupID:      e.GroupID,
		Description:  e.Description,
		Amount:       e.Amount,
		CurrencyCode: e.CurrencyCode,
		Category:     e.Category,
		ExpenseDate:  e.ExpenseDate,
		SplitType:    e.SplitType,
		PaidBy:       FromMemberRef(e.PaidBy),
		IsSettled:    e.IsSettled,
		CreatedAt:    e.CreatedAt,
		CreatedBy:    e.CreatedBy,
	}
	if e.Participants != nil {
		resp.Participants = make([]ParticipantResponse, len(e.Participants))
		for i, p := range e.Participants {
			resp.Participants[i] = ToParticipantResponse(&p)
		}
	}
	return resp
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListExpensesResponse wraps a page of expenses with the token for the next page.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

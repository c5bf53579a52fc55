package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// ListPaymentsParams defines query parameters for listing payments and refunds.
type ListPaymentsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// RecordPaymentRequest defines data for recording a payment.
type RecordPaymentRequest struct {
	Amount       decimal.Decimal      `json:"amount" binding:"required"`
	CurrencyCode string               `json:"currencyCode" binding:"required,iso4217"`
	Method       domain.PaymentMethod `json:"method" binding:"required,oneof=PAYPAL CARD"`
	Description  string               `json:"description"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID     string               `json:"paymentID"`
	UserID        string               `json:"userID"`
	Amount        decimal.Decimal      `json:"amount"`
	CurrencyCode  string               `json:"currencyCode"`
	Method        domain.PaymentMethod `json:"method"`
	Status        domain.PaymentStatus `json:"status"`
	Description   string               `json:"description,omitempty"`
	TransactionID *string              `json:"transactionID,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// ToPaymentResponse converts a domain.Payment to DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		CurrencyCode:  p.CurrencyCode,
		Method:        p.Method,
		Status:        p.Status,
		Description:   p.Description,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}

// ListPaymentsResponse wraps a list of payments.
type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// ToListPaymentsResponse converts a slice of domain.Payment to DTO.
func ToListPaymentsResponse(ps []domain.Payment) ListPaymentsResponse {
	list := make([]PaymentResponse, len(ps))
	for i, p := range ps {
		list[i] = ToPaymentResponse(&p)
	}
	return ListPaymentsResponse{Payments: list}
}

// CompletePaymentRequest carries the gateway reference for a completed payment.
type CompletePaymentRequest struct {
	TransactionID string `json:"transactionID" binding:"required"`
}

// RequestRefundRequest defines data for filing a refund request.
type RequestRefundRequest struct {
	PaymentID string `json:"paymentID" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

// ResolveRefundRequest defines data for transitioning a refund's status.
type ResolveRefundRequest struct {
	Status domain.RefundStatus `json:"status" binding:"required,oneof=APPROVED COMPLETED REJECTED"`
}

// RefundResponse defines the data returned for a refund.
type RefundResponse struct {
	RefundID     string              `json:"refundID"`
	UserID       string              `json:"userID"`
	PaymentID    *string             `json:"paymentID,omitempty"`
	Amount       decimal.Decimal     `json:"amount"`
	CurrencyCode string              `json:"currencyCode"`
	Status       domain.RefundStatus `json:"status"`
	Reason       string              `json:"reason"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// ToRefundResponse converts a domain.Refund to DTO.
func ToRefundResponse(r *domain.Refund) RefundResponse {
	return RefundResponse{
		RefundID:     r.RefundID,
		UserID:       r.UserID,
		PaymentID:    r.PaymentID,
		Amount:       r.Amount,
		CurrencyCode: r.CurrencyCode,
		Status:       r.Status,
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
	}
}

// ListRefundsResponse wraps a list of refunds.
type ListRefundsResponse struct {
	Refunds []RefundResponse `json:"refunds"`
}

// ToListRefundsResponse converts a slice of domain.Refund to DTO.
func ToListRefundsResponse(rs []domain.Refund) ListRefundsResponse {
	list := make([]RefundResponse, len(rs))
	for i, r := range rs {
		list[i] = ToRefundResponse(&r)
	}
	return ListRefundsResponse{Refunds: list}
}

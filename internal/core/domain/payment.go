package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies the external payment rail used.
type PaymentMethod string

const (
	MethodPaypal PaymentMethod = "PAYPAL"
	MethodCard   PaymentMethod = "CARD"
)

// PaymentStatus tracks a payment's lifecycle.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment is a subscription payment made by a user. The actual gateway
// interaction happens outside this system; we only keep the bookkeeping row.
type Payment struct {
	PaymentID     string          `json:"paymentID"` // Primary Key (UUID)
	UserID        string          `json:"userID"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	Description   string          `json:"description"`
	TransactionID *string         `json:"transactionID,omitempty"` // Gateway reference
	CreatedAt     time.Time       `json:"createdAt"`
}

// RefundStatus tracks a refund request's lifecycle.
type RefundStatus string

const (
	RefundRequested RefundStatus = "REQUESTED"
	RefundApproved  RefundStatus = "APPROVED"
	RefundCompleted RefundStatus = "COMPLETED"
	RefundRejected  RefundStatus = "REJECTED"
)

// Refund is a user's request to reverse a payment.
type Refund struct {
	RefundID     string          `json:"refundID"` // Primary Key (UUID)
	UserID       string          `json:"userID"`
	PaymentID    *string         `json:"paymentID,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
	Status       RefundStatus    `json:"status"`
	Reason       string          `json:"reason"`
	Description  string          `json:"description"`
	AuditFields
}

package repositories

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// PaymentReader defines read operations for payment and refund data
type PaymentReader interface {
	// FindPaymentByID retrieves a specific payment by its ID.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPaymentsByUser retrieves payments made or received by a user, newest first.
	ListPaymentsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Payment, error)

	// FindRefundByID retrieves a specific refund by its ID.
	FindRefundByID(ctx context.Context, refundID string) (*domain.Refund, error)

	// ListRefundsByUser retrieves refunds requested by a user, newest first.
	ListRefundsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Refund, error)
}

// PaymentWriter defines write operations for payment and refund data
type PaymentWriter interface {
	// SavePayment persists a new payment.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePaymentStatus transitions a payment to a new status, recording the
	// gateway transaction reference when one accompanies the transition.
	UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, transactionID *string) error

	// SaveRefund persists a new refund request.
	SaveRefund(ctx context.Context, refund domain.Refund) error

	// UpdateRefundStatus transitions a refund to a new status.
	UpdateRefundStatus(ctx context.Context, refundID string, status domain.RefundStatus) error
}

// PaymentRepositoryFacade combines all payment-related repository interfaces
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}

package services

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
	"github.com/splitnest/splitnest_backend/internal/dto"
)

// PaymentSvcFacade defines operations for recording payments and refunds.
type PaymentSvcFacade interface {
	// RecordPayment records a pending payment for a user.
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error)

	// CompletePayment marks a pending payment as completed, attaching the
	// gateway reference. Only the payment's owner may do this.
	CompletePayment(ctx context.Context, paymentID string, gatewayTxnID string, requestingUserID string) (*domain.Payment, error)

	// ListUserPayments retrieves a user's payments, newest first.
	ListUserPayments(ctx context.Context, userID string, limit, offset int) ([]domain.Payment, error)

	// RequestRefund files a refund request against a completed payment.
	// Only the payment's owner may request one.
	RequestRefund(ctx context.Context, req dto.RequestRefundRequest, requestingUserID string) (*domain.Refund, error)

	// ResolveRefund transitions a refund to approved, completed or rejected.
	ResolveRefund(ctx context.Context, refundID string, status domain.RefundStatus, requestingUserID string) (*domain.Refund, error)

	// ListUserRefunds retrieves refunds requested by a user, newest first.
	ListUserRefunds(ctx context.Context, userID string, limit, offset int) ([]domain.Refund, error)
}

package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
)

// paymentService implements the PaymentSvcFacade interface
type paymentService struct {
	BaseService
	paymentRepo portsrepo.PaymentRepositoryFacade
}

// NewPaymentService creates a new payment service with the provided dependencies
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade) portssvc.PaymentSvcFacade {
	return &paymentService{paymentRepo: paymentRepo}
}

// Ensure paymentService implements the PaymentSvcFacade interface
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// RecordPayment records a pending payment for a user
func (s *paymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationFailedError("payment amount must be positive")
	}

	payment := domain.Payment{
		PaymentID:    uuid.NewString(),
		UserID:       userID,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Method:       req.Method,
		Status:       domain.PaymentPending,
		Description:  req.Description,
		CreatedAt:    time.Now(),
	}

	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		s.LogError(ctx, err, "Failed to save payment",
			slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("user_id", userID))
	return &payment, nil
}

// CompletePayment marks a pending payment as completed, attaching the gateway
// reference. Only the payment's owner may do this.
func (s *paymentService) CompletePayment(ctx context.Context, paymentID string, gatewayTxnID string, requestingUserID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != requestingUserID {
		return nil, apperrors.ErrForbidden
	}
	if payment.Status == domain.PaymentCompleted {
		return payment, nil
	}
	if payment.Status != domain.PaymentPending {
		return nil, apperrors.NewConflictError("only pending payments can be completed")
	}

	if err := s.paymentRepo.UpdatePaymentStatus(ctx, paymentID, domain.PaymentCompleted, &gatewayTxnID); err != nil {
		s.LogError(ctx, err, "Failed to complete payment",
			slog.String("payment_id", paymentID))
		return nil, err
	}

	payment.Status = domain.PaymentCompleted
	payment.TransactionID = &gatewayTxnID

	s.LogInfo(ctx, "Payment completed",
		slog.String("payment_id", paymentID))
	return payment, nil
}

// ListUserPayments retrieves a user's payments, newest first
func (s *paymentService) ListUserPayments(ctx context.Context, userID string, limit, offset int) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.ListPaymentsByUser(ctx, userID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments",
			slog.String("user_id", userID))
		return nil, err
	}
	if payments == nil {
		return []domain.Payment{}, nil
	}
	return payments, nil
}

// RequestRefund files a refund request against a completed payment.
// Only the payment's owner may request one.
func (s *paymentService) RequestRefund(ctx context.Context, req dto.RequestRefundRequest, requestingUserID string) (*domain.Refund, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != requestingUserID {
		return nil, apperrors.ErrForbidden
	}
	if payment.Status != domain.PaymentCompleted {
		return nil, apperrors.NewConflictError("only completed payments can be refunded")
	}

	now := time.Now()
	refund := domain.Refund{
		RefundID:     uuid.NewString(),
		UserID:       requestingUserID,
		PaymentID:    &payment.PaymentID,
		Amount:       payment.Amount,
		CurrencyCode: payment.CurrencyCode,
		Status:       domain.RefundRequested,
		Reason:       req.Reason,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.paymentRepo.SaveRefund(ctx, refund); err != nil {
		s.LogError(ctx, err, "Failed to save refund",
			slog.String("payment_id", payment.PaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Refund requested",
		slog.String("refund_id", refund.RefundID),
		slog.String("payment_id", payment.PaymentID))
	return &refund, nil
}

// ResolveRefund transitions a refund to approved, completed or rejected.
func (s *paymentService) ResolveRefund(ctx context.Context, refundID string, status domain.RefundStatus, requestingUserID string) (*domain.Refund, error) {
	refund, err := s.paymentRepo.FindRefundByID(ctx, refundID)
	if err != nil {
		return nil, err
	}

	if !validRefundTransition(refund.Status, status) {
		return nil, apperrors.NewConflictError("invalid refund status transition")
	}

	if err := s.paymentRepo.UpdateRefundStatus(ctx, refundID, status); err != nil {
		s.LogError(ctx, err, "Failed to update refund status",
			slog.String("refund_id", refundID))
		return nil, err
	}

	refund.Status = status
	refund.LastUpdatedAt = time.Now()
	refund.LastUpdatedBy = requestingUserID

	s.LogInfo(ctx, "Refund resolved",
		slog.String("refund_id", refundID),
		slog.String("status", string(status)))
	return refund, nil
}

// ListUserRefunds retrieves refunds requested by a user, newest first
func (s *paymentService) ListUserRefunds(ctx context.Context, userID string, limit, offset int) ([]domain.Refund, error) {
	refunds, err := s.paymentRepo.ListRefundsByUser(ctx, userID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list refunds",
			slog.String("user_id", userID))
		return nil, err
	}
	if refunds == nil {
		return []domain.Refund{}, nil
	}
	return refunds, nil
}

// validRefundTransition enforces the refund lifecycle:
// REQUESTED -> APPROVED | REJECTED, APPROVED -> COMPLETED.
func validRefundTransition(from, to domain.RefundStatus) bool {
	switch from {
	case domain.RefundRequested:
		return to == domain.RefundApproved || to == domain.RefundRejected
	case domain.RefundApproved:
		return to == domain.RefundCompleted
	default:
		return false
	}
}

package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
)

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment and refund data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryFacade
var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentSelect = `
	SELECT payment_id, user_id, amount, currency_code, method, status,
	       description, transaction_id, created_at
	FROM payments
`

func scanPayments(rows pgx.Rows) ([]domain.Payment, error) {
	defer rows.Close()
	payments := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.PaymentID,
			&p.UserID,
			&p.Amount,
			&p.CurrencyCode,
			&p.Method,
			&p.Status,
			&p.Description,
			&p.TransactionID,
			&p.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment row", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment rows", err)
	}
	return payments, nil
}

func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	query := `
		INSERT INTO payments (
			payment_id, user_id, amount, currency_code, method, status,
			description, transaction_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		payment.PaymentID,
		payment.UserID,
		payment.Amount,
		payment.CurrencyCode,
		payment.Method,
		payment.Status,
		payment.Description,
		payment.TransactionID,
		payment.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("payment ID " + payment.PaymentID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save payment "+payment.PaymentID, err)
	}
	return nil
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	rows, err := r.Pool.Query(ctx, paymentSelect+` WHERE payment_id = $1;`, paymentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payment "+paymentID, err)
	}
	payments, err := scanPayments(rows)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &payments[0], nil
}

func (r *PgxPaymentRepository) ListPaymentsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.Pool.Query(ctx,
		paymentSelect+` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments for user "+userID, err)
	}
	return scanPayments(rows)
}

// UpdatePaymentStatus transitions a payment to a new status, attaching the
// gateway transaction reference when one accompanies the status change.
func (r *PgxPaymentRepository) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, transactionID *string) error {
	result, err := r.Pool.Exec(ctx,
		`UPDATE payments SET status = $2, transaction_id = COALESCE($3, transaction_id) WHERE payment_id = $1;`,
		paymentID, status, transactionID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for payment "+paymentID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const refundSelect = `
	SELECT refund_id, user_id, payment_id, amount, currency_code, status, reason, description,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM refunds
`

func scanRefunds(rows pgx.Rows) ([]domain.Refund, error) {
	defer rows.Close()
	refunds := []domain.Refund{}
	for rows.Next() {
		var ref domain.Refund
		if err := rows.Scan(
			&ref.RefundID,
			&ref.UserID,
			&ref.PaymentID,
			&ref.Amount,
			&ref.CurrencyCode,
			&ref.Status,
			&ref.Reason,
			&ref.Description,
			&ref.CreatedAt,
			&ref.CreatedBy,
			&ref.LastUpdatedAt,
			&ref.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan refund row", err)
		}
		refunds = append(refunds, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating refund rows", err)
	}
	return refunds, nil
}

func (r *PgxPaymentRepository) SaveRefund(ctx context.Context, refund domain.Refund) error {
	query := `
		INSERT INTO refunds (
			refund_id, user_id, payment_id, amount, currency_code, status, reason, description,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		refund.RefundID,
		refund.UserID,
		refund.PaymentID,
		refund.Amount,
		refund.CurrencyCode,
		refund.Status,
		refund.Reason,
		refund.Description,
		refund.CreatedAt,
		refund.CreatedBy,
		refund.LastUpdatedAt,
		refund.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("refund ID " + refund.RefundID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save refund "+refund.RefundID, err)
	}
	return nil
}

func (r *PgxPaymentRepository) FindRefundByID(ctx context.Context, refundID string) (*domain.Refund, error) {
	rows, err := r.Pool.Query(ctx, refundSelect+` WHERE refund_id = $1;`, refundID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query refund "+refundID, err)
	}
	refunds, err := scanRefunds(rows)
	if err != nil {
		return nil, err
	}
	if len(refunds) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &refunds[0], nil
}

func (r *PgxPaymentRepository) ListRefundsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Refund, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.Pool.Query(ctx,
		refundSelect+` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query refunds for user "+userID, err)
	}
	return scanRefunds(rows)
}

func (r *PgxPaymentRepository) UpdateRefundStatus(ctx context.Context, refundID string, status domain.RefundStatus) error {
	result, err := r.Pool.Exec(ctx,
		`UPDATE refunds SET status = $2, last_updated_at = NOW() WHERE refund_id = $1;`,
		refundID, status,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for refund "+refundID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

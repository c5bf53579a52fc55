package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	groupRepo := newPgxGroupRepository(dbPool)
	expenseRepo := newPgxExpenseRepository(dbPool)
	invitationRepo := newPgxInvitationRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:       userRepo,
		GroupRepo:      groupRepo,
		ExpenseRepo:    expenseRepo,
		InvitationRepo: invitationRepo,
		PaymentRepo:    paymentRepo,
		ReportingRepo:  reportingRepo,
	}
}

package services

import (
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/pkg/config"
)

// NewServiceContainer wires all application services with their dependencies.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, cfg *config.Config) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Group service first since most other services depend on its authorizer.
	container.Group = NewGroupService(repos.GroupRepo, repos.UserRepo)
	groupAuthorizer := container.Group.(portssvc.GroupAuthorizerSvc)

	container.User = NewUserService(repos.UserRepo, container.Group)

	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.GroupRepo, groupAuthorizer)
	container.Settlement = NewSettlementService(repos.ExpenseRepo, repos.GroupRepo, groupAuthorizer)
	container.Invitation = NewInvitationService(repos.InvitationRepo, repos.GroupRepo, groupAuthorizer, cfg.FrontendBaseURL)
	container.Payment = NewPaymentService(repos.PaymentRepo)
	container.Reporting = NewReportingService(repos.ReportingRepo, WithReportingGroupAuthorizer(groupAuthorizer))

	container.Token = NewTokenService(cfg, container.User)
	container.GoogleAuth = NewGoogleOAuthHandlerService(cfg)

	return container
}

// Compile time interface implementation checks
var (
	_ portssvc.GroupSvcFacade      = (*groupService)(nil)
	_ portssvc.UserSvcFacade       = (*userService)(nil)
	_ portssvc.ExpenseSvcFacade    = (*expenseService)(nil)
	_ portssvc.SettlementSvcFacade = (*settlementService)(nil)
	_ portssvc.InvitationSvcFacade = (*invitationService)(nil)
	_ portssvc.PaymentSvcFacade    = (*paymentService)(nil)
	_ portssvc.ReportingService    = (*reportingService)(nil)
)

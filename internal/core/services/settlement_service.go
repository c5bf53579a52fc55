package services

import (
	"context"
	"log/slog"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/utils/settlement"
)

// settlementService implements the SettlementSvcFacade interface.
// Balances and transfer plans are derived from the unsettled expense snapshot
// on every call and never persisted.
type settlementService struct {
	BaseService
	expenseRepo portsrepo.ExpenseReader
	groupRepo   portsrepo.GroupRepositoryFacade
}

// NewSettlementService creates a new settlement service with the provided dependencies
func NewSettlementService(
	expenseRepo portsrepo.ExpenseReader,
	groupRepo portsrepo.GroupRepositoryFacade,
	groupAuthorizer portssvc.GroupAuthorizerSvc,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		BaseService: BaseService{GroupAuthorizer: groupAuthorizer},
		expenseRepo: expenseRepo,
		groupRepo:   groupRepo,
	}
}

// Ensure settlementService implements the SettlementSvcFacade interface
var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// GetGroupBalances computes the net position of every current member,
// registered and pending, over the group's unsettled expenses.
func (s *settlementService) GetGroupBalances(ctx context.Context, groupID string, requestingUserID string) ([]domain.Balance, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	return s.computeBalances(ctx, groupID)
}

// GetGroupSettlement computes a minimal set of transfers that zeroes the
// group's balances.
func (s *settlementService) GetGroupSettlement(ctx context.Context, groupID string, requestingUserID string) ([]domain.Transfer, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	balances, err := s.computeBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	transfers, err := settlement.MinimizeTransfers(balances)
	if err != nil {
		// A non-conserving balance vector means the stored shares are corrupt.
		// Surface the failure instead of silently correcting it.
		s.LogError(ctx, err, "Balance conservation check failed",
			slog.String("group_id", groupID))
		return nil, err
	}

	s.LogDebug(ctx, "Settlement computed",
		slog.String("group_id", groupID),
		slog.Int("transfer_count", len(transfers)))
	return transfers, nil
}

// computeBalances assembles the member roster and unsettled expense snapshot
// and folds them into per-member net positions.
func (s *settlementService) computeBalances(ctx context.Context, groupID string) ([]domain.Balance, error) {
	members, err := s.groupRepo.ListGroupMembers(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group members",
			slog.String("group_id", groupID))
		return nil, err
	}
	pendingStatus := domain.PendingStatusPending
	pending, err := s.groupRepo.ListPendingMembers(ctx, groupID, &pendingStatus)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending members",
			slog.String("group_id", groupID))
		return nil, err
	}

	refs := make([]domain.MemberRef, 0, len(members)+len(pending))
	names := make(map[domain.MemberRef]string, len(members)+len(pending))
	for _, m := range members {
		ref := domain.MemberRef{ID: m.UserID, Kind: domain.MemberRegistered}
		refs = append(refs, ref)
		names[ref] = m.FullName
	}
	for _, p := range pending {
		ref := domain.MemberRef{ID: p.PendingID, Kind: domain.MemberPending}
		refs = append(refs, ref)
		names[ref] = p.DisplayName
	}

	expenses, err := s.expenseRepo.ListUnsettledExpensesByGroup(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load unsettled expenses",
			slog.String("group_id", groupID))
		return nil, err
	}

	balances := settlement.ComputeBalances(refs, expenses)
	for i := range balances {
		balances[i].Name = names[balances[i].Member]
	}
	return balances, nil
}

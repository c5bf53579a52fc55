package services

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// SettlementSvcFacade defines derived balance and settlement computations for a group.
// Results are computed from the unsettled expense snapshot and never stored.
type SettlementSvcFacade interface {
	// GetGroupBalances computes the net position of every current member,
	// registered and pending, over the group's unsettled expenses.
	GetGroupBalances(ctx context.Context, groupID string, requestingUserID string) ([]domain.Balance, error)

	// GetGroupSettlement computes a minimal set of transfers that zeroes the
	// group's balances.
	GetGroupSettlement(ctx context.Context, groupID string, requestingUserID string) ([]domain.Transfer, error)
}

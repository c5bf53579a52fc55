package dto

import (
	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// BalanceResponse is one member's net position in a group.
// Positive means the group owes the member, negative means the member owes.
type BalanceResponse struct {
	Member MemberRefDTO    `json:"member"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupBalancesResponse wraps the balances of every current member.
type GroupBalancesResponse struct {
	GroupID  string            `json:"groupID"`
	Balances []BalanceResponse `json:"balances"`
}

// ToGroupBalancesResponse converts domain balances to DTO.
func ToGroupBalancesResponse(groupID string, balances []domain.Balance) GroupBalancesResponse {
	resp := GroupBalancesResponse{
		GroupID:  groupID,
		Balances: make([]BalanceResponse, len(balances)),
	}
	for i, b := range balances {
		resp.Balances[i] = BalanceResponse{
			Member: FromMemberRef(b.Member),
			Name:   b.Name,
			Amount: b.Amount,
		}
	}
	return resp
}

// TransferResponse is one suggested repayment between two members.
type TransferResponse struct {
	From   MemberRefDTO    `json:"from"`
	To     MemberRefDTO    `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupSettlementResponse wraps the transfer list that zeroes a group's balances.
type GroupSettlementResponse struct {
	GroupID   string             `json:"groupID"`
	Transfers []TransferResponse `json:"transfers"`
}

// ToGroupSettlementResponse converts domain transfers to DTO.
func ToGroupSettlementResponse(groupID string, transfers []domain.Transfer) GroupSettlementResponse {
	resp := GroupSettlementResponse{
		GroupID:   groupID,
		Transfers: make([]TransferResponse, len(transfers)),
	}
	for i, t := range transfers {
		resp.Transfers[i] = TransferResponse{
			From:   FromMemberRef(t.From),
			To:     FromMemberRef(t.To),
			Amount: t.Amount,
		}
	}
	return resp
}

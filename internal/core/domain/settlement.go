package domain

import "github.com/shopspring/decimal"

// Balance is a member's net position within a group, derived from unsettled
// expenses: what they paid minus what they owe. Positive means the member is
// a net creditor. Balances are recomputed on every read and never persisted.
type Balance struct {
	Member MemberRef       `json:"member"`
	Name   string          `json:"name"` // Display name of the member
	Amount decimal.Decimal `json:"amount"`
}

// Transfer is one suggested settlement payment: From pays To the given
// amount. Applying all transfers of a settlement drives every balance in the
// group to zero within rounding tolerance.
type Transfer struct {
	From   MemberRef       `json:"from"`
	To     MemberRef       `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

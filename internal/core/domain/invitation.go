package domain

import "time"

// Invitation is a shareable code and link that lets a user join a group.
type Invitation struct {
	InvitationID string    `json:"invitationID"` // Primary Key (UUID)
	GroupID      string    `json:"groupID"`
	Code         string    `json:"code"` // Short uppercase join code, unique
	Link         string    `json:"link"` // Full join URL embedding the code
	CreatedBy    string    `json:"createdBy"`
	ExpiresAt    time.Time `json:"expiresAt"`
	MaxUses      *int      `json:"maxUses,omitempty"` // nil means unlimited
	CurrentUses  int       `json:"currentUses"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Usable reports whether the invitation can still be redeemed at the given time.
func (i *Invitation) Usable(now time.Time) bool {
	if !i.IsActive || now.After(i.ExpiresAt) {
		return false
	}
	if i.MaxUses != nil && i.CurrentUses >= *i.MaxUses {
		return false
	}
	return true
}

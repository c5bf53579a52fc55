package dto

import (
	"time"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// CreateInvitationRequest defines data for creating a group invitation.
type CreateInvitationRequest struct {
	ExpiresInHours int  `json:"expiresInHours" binding:"omitempty,min=1,max=8760"`
	MaxUses        *int `json:"maxUses" binding:"omitempty,min=1"`
}

// InvitationResponse defines the data returned for an invitation.
type InvitationResponse struct {
	InvitationID string    `json:"invitationID"`
	GroupID      string    `json:"groupID"`
	Code         string    `json:"code"`
	Link         string    `json:"link"`
	ExpiresAt    time.Time `json:"expiresAt"`
	MaxUses      *int      `json:"maxUses,omitempty"`
	CurrentUses  int       `json:"currentUses"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToInvitationResponse converts a domain.Invitation to DTO.
func ToInvitationResponse(inv *domain.Invitation) InvitationResponse {
	return InvitationResponse{
		InvitationID: inv.InvitationID,
		GroupID:      inv.GroupID,
		Code:         inv.Code,
		Link:         inv.Link,
		ExpiresAt:    inv.ExpiresAt,
		MaxUses:      inv.MaxUses,
		CurrentUses:  inv.CurrentUses,
		IsActive:     inv.IsActive,
		CreatedAt:    inv.CreatedAt,
	}
}

// ListInvitationsResponse wraps a list of invitations.
type ListInvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

// ToListInvitationsResponse converts a slice of domain.Invitation to DTO.
func ToListInvitationsResponse(invs []domain.Invitation) ListInvitationsResponse {
	list := make([]InvitationResponse, len(invs))
	for i, inv := range invs {
		list[i] = ToInvitationResponse(&inv)
	}
	return ListInvitationsResponse{Invitations: list}
}

// InvitationPreviewResponse lets an invitee see the group before joining.
type InvitationPreviewResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	Group      GroupResponse      `json:"group"`
}

// AcceptInvitationRequest defines data for redeeming an invitation code.
type AcceptInvitationRequest struct {
	Code string `json:"code" binding:"required"`
}

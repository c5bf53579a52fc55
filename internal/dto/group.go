package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// --- Group DTOs ---

// CreateGroupRequest defines data for creating a new group.
type CreateGroupRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	CurrencyCode string `json:"currencyCode" binding:"required,iso4217"`
}

// UpdateGroupRequest defines the data allowed for updating a group.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// GroupResponse defines data returned for a group.
type GroupResponse struct {
	GroupID       string          `json:"groupID"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CurrencyCode  string          `json:"currencyCode"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"` // UserID
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"` // UserID
}

// ToGroupResponse converts domain.Group to DTO.
func ToGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		GroupID:       g.GroupID,
		Name:          g.Name,
		Description:   g.Description,
		CurrencyCode:  g.CurrencyCode,
		TotalExpenses: g.TotalExpenses,
		CreatedAt:     g.CreatedAt,
		CreatedBy:     g.CreatedBy,
		LastUpdatedAt: g.LastUpdatedAt,
		LastUpdatedBy: g.LastUpdatedBy,
	}
}

// ListGroupsResponse wraps a list of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ToListGroupsResponse converts a slice of domain.Group to DTO.
func ToListGroupsResponse(gs []domain.Group) ListGroupsResponse {
	list := make([]GroupResponse, len(gs))
	for i, g := range gs {
		list[i] = ToGroupResponse(&g)
	}
	return ListGroupsResponse{Groups: list}
}

// --- Group Membership DTOs ---

// AddUserToGroupRequest defines data for adding a registered user to a group.
type AddUserToGroupRequest struct {
	UserID string           `json:"userID" binding:"required"`
	Role   domain.GroupRole `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

// UpdateMemberRoleRequest defines data for changing a member's role.
type UpdateMemberRoleRequest struct {
	Role domain.GroupRole `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

// GroupMemberResponse defines data returned about a registered member.
type GroupMemberResponse struct {
	UserID   string           `json:"userID"`
	GroupID  string           `json:"groupID"`
	FullName string           `json:"fullName"`
	Role     domain.GroupRole `json:"role"`
	JoinedAt time.Time        `json:"joinedAt"`
}

// ToGroupMemberResponse converts domain.GroupMember to DTO.
func ToGroupMemberResponse(m *domain.GroupMember) GroupMemberResponse {
	return GroupMemberResponse{
		UserID:   m.UserID,
		GroupID:  m.GroupID,
		FullName: m.FullName,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

// --- Pending Member DTOs ---

// AddPendingMemberRequest defines data for adding a placeholder member by email.
type AddPendingMemberRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	DisplayName string  `json:"displayName" binding:"required"`
	Phone       *string `json:"phone"`
}

// PendingMemberResponse defines data returned about a pending member.
type PendingMemberResponse struct {
	PendingID   string                     `json:"pendingID"`
	GroupID     string                     `json:"groupID"`
	Email       string                     `json:"email"`
	DisplayName string                     `json:"displayName"`
	Phone       *string                    `json:"phone,omitempty"`
	InvitedBy   string                     `json:"invitedBy"`
	Status      domain.PendingMemberStatus `json:"status"`
	UserID      *string                    `json:"userID,omitempty"` // Set once reconciled
	CreatedAt   time.Time                  `json:"createdAt"`
}

// ToPendingMemberResponse converts domain.PendingMember to DTO.
func ToPendingMemberResponse(p *domain.PendingMember) PendingMemberResponse {
	return PendingMemberResponse{
		PendingID:   p.PendingID,
		GroupID:     p.GroupID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Phone:       p.Phone,
		InvitedBy:   p.InvitedBy,
		Status:      p.Status,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
	}
}

// GroupMembersResponse combines registered and pending members of a group.
type GroupMembersResponse struct {
	Members        []GroupMemberResponse   `json:"members"`
	PendingMembers []PendingMemberResponse `json:"pendingMembers"`
}

// ToGroupMembersResponse converts both member kinds to DTO.
func ToGroupMembersResponse(members []domain.GroupMember, pending []domain.PendingMember) GroupMembersResponse {
	resp := GroupMembersResponse{
		Members:        make([]GroupMemberResponse, len(members)),
		PendingMembers: make([]PendingMemberResponse, len(pending)),
	}
	for i, m := range members {
		resp.Members[i] = ToGroupMemberResponse(&m)
	}
	for i, p := range pending {
		resp.PendingMembers[i] = ToPendingMemberResponse(&p)
	}
	return resp
}

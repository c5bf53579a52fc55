package services

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
	"github.com/splitnest/splitnest_backend/internal/dto"
)

// GroupReaderSvc defines read operations for group data
type GroupReaderSvc interface {
	// GetGroupByID retrieves a specific group by its ID.
	GetGroupByID(ctx context.Context, groupID string, requestingUserID string) (*domain.Group, error)

	// ListUserGroups retrieves all groups a user belongs to.
	ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error)

	// ListGroupMembers retrieves the registered and pending members of a group.
	ListGroupMembers(ctx context.Context, groupID string, requestingUserID string) ([]domain.GroupMember, []domain.PendingMember, error)
}

// GroupWriterSvc defines write operations for group data
type GroupWriterSvc interface {
	// CreateGroup persists a new group with the creator as its admin.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error)

	// UpdateGroup updates group details. Only group admins may do this.
	UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, requestingUserID string) (*domain.Group, error)

	// DeleteGroup removes a group. Only group admins may do this.
	DeleteGroup(ctx context.Context, groupID string, requestingUserID string) error
}

// GroupMembershipSvc defines operations for managing group membership
type GroupMembershipSvc interface {
	// AddUserToGroup adds a registered user to a group with a specific role.
	AddUserToGroup(ctx context.Context, addingUserID, targetUserID, groupID string, role domain.GroupRole) error

	// RemoveUserFromGroup removes a user from a group.
	// Admins can remove anyone but the creator; members can remove themselves.
	RemoveUserFromGroup(ctx context.Context, requestingUserID, targetUserID, groupID string) error

	// UpdateUserGroupRole updates a user's role in a group.
	// Only group admins can update roles, and the last admin cannot be demoted.
	UpdateUserGroupRole(ctx context.Context, requestingUserID, targetUserID, groupID string, newRole domain.GroupRole) error

	// AddPendingMember records a placeholder member invited by email so they can
	// participate in expenses before registering.
	AddPendingMember(ctx context.Context, groupID string, req dto.AddPendingMemberRequest, invitedBy string) (*domain.PendingMember, error)

	// ReconcilePendingMembers attaches the given registered user to every
	// pending membership held against their email. Safe to call repeatedly.
	ReconcilePendingMembers(ctx context.Context, userID string, email string) error
}

// GroupAuthorizerSvc defines operations for group authorization
type GroupAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a group.
	AuthorizeUserAction(ctx context.Context, userID, groupID string, requiredRole domain.GroupRole) error
}

// GroupSvcFacade combines all group-related service interfaces
// This is a facade for clients that need access to all operations
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
	GroupMembershipSvc
	GroupAuthorizerSvc
}

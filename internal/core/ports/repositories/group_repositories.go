package repositories

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// GroupReader defines read operations for group data
type GroupReader interface {
	// FindGroupByID retrieves a specific group by its ID.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListGroupsByUserID retrieves all groups a user belongs to.
	ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error)
}

// GroupWriter defines write operations for group data
type GroupWriter interface {
	// SaveGroup persists a new group.
	SaveGroup(ctx context.Context, group domain.Group) error

	// UpdateGroup updates an existing group's details.
	UpdateGroup(ctx context.Context, group domain.Group) error

	// DeleteGroup removes a group and all dependent rows.
	DeleteGroup(ctx context.Context, groupID string) error
}

// GroupMembershipManager defines operations for managing group memberships
type GroupMembershipManager interface {
	// AddUserToGroup adds a user to a group with a specific role.
	AddUserToGroup(ctx context.Context, membership domain.GroupMember) error

	// RemoveUserFromGroup removes a user from a group.
	RemoveUserFromGroup(ctx context.Context, groupID, userID string) error

	// FindUserGroupRole retrieves the membership of a user in a group.
	FindUserGroupRole(ctx context.Context, userID, groupID string) (*domain.GroupMember, error)

	// UpdateUserGroupRole changes a member's role in a group.
	UpdateUserGroupRole(ctx context.Context, groupID, userID string, role domain.GroupRole) error

	// ListGroupMembers retrieves all registered members of a group.
	ListGroupMembers(ctx context.Context, groupID string) ([]domain.GroupMember, error)

	// CountGroupAdmins returns the number of members with the admin role.
	CountGroupAdmins(ctx context.Context, groupID string) (int, error)
}

// PendingMemberManager defines operations for placeholder members invited by email
type PendingMemberManager interface {
	// SavePendingMember persists a new pending member.
	SavePendingMember(ctx context.Context, pending domain.PendingMember) error

	// FindPendingMemberByID retrieves a pending member by its ID.
	FindPendingMemberByID(ctx context.Context, pendingID string) (*domain.PendingMember, error)

	// FindPendingMembersByEmail retrieves all unreconciled pending members for an email.
	FindPendingMembersByEmail(ctx context.Context, email string) ([]domain.PendingMember, error)

	// ListPendingMembers retrieves the pending members of a group, optionally filtered by status.
	ListPendingMembers(ctx context.Context, groupID string, status *domain.PendingMemberStatus) ([]domain.PendingMember, error)

	// ReconcilePendingMember repoints expense history from a pending member to a
	// registered user, adds the group membership, and marks the pending row as
	// registered, all within a single transaction.
	ReconcilePendingMember(ctx context.Context, pendingID string, userID string) error
}

// GroupRepositoryFacade combines all group-related repository interfaces
// This is a facade for clients that need access to all operations
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
	GroupMembershipManager
	PendingMemberManager
}

// GroupRepositoryWithTx extends GroupRepositoryFacade with transaction capabilities
type GroupRepositoryWithTx interface {
	GroupRepositoryFacade
	TransactionManager
}

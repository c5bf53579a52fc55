package repositories

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
)

// InvitationReader defines read operations for group invitation data
type InvitationReader interface {
	// FindInvitationByCode retrieves an invitation by its share code.
	FindInvitationByCode(ctx context.Context, code string) (*domain.Invitation, error)

	// ListInvitationsByGroup retrieves all invitations created for a group.
	ListInvitationsByGroup(ctx context.Context, groupID string) ([]domain.Invitation, error)
}

// InvitationWriter defines write operations for group invitation data
type InvitationWriter interface {
	// SaveInvitation persists a new invitation.
	SaveInvitation(ctx context.Context, invitation domain.Invitation) error

	// IncrementInvitationUses bumps the use counter of an invitation.
	IncrementInvitationUses(ctx context.Context, invitationID string) error

	// DeactivateInvitation disables an invitation so it can no longer be redeemed.
	DeactivateInvitation(ctx context.Context, invitationID string) error
}

// InvitationRepositoryFacade combines all invitation-related repository interfaces
type InvitationRepositoryFacade interface {
	InvitationReader
	InvitationWriter
}

package services

import (
	"context"

	"github.com/splitnest/splitnest_backend/internal/core/domain"
	"github.com/splitnest/splitnest_backend/internal/dto"
)

// InvitationSvcFacade defines operations for creating and redeeming group invitations.
type InvitationSvcFacade interface {
	// CreateInvitation creates a shareable invitation link for a group.
	CreateInvitation(ctx context.Context, groupID string, req dto.CreateInvitationRequest, creatorUserID string) (*domain.Invitation, error)

	// GetInvitationByCode retrieves an invitation and its group for preview.
	GetInvitationByCode(ctx context.Context, code string) (*domain.Invitation, *domain.Group, error)

	// AcceptInvitation redeems an invitation code, adding the user to the group.
	// Redeeming an invitation for a group the user already belongs to is a no-op.
	AcceptInvitation(ctx context.Context, code string, userID string) (*domain.Group, error)

	// RevokeInvitation deactivates an invitation. Only group admins may do this.
	RevokeInvitation(ctx context.Context, groupID string, invitationID string, requestingUserID string) error

	// ListGroupInvitations retrieves the invitations of a group.
	ListGroupInvitations(ctx context.Context, groupID string, requestingUserID string) ([]domain.Invitation, error)
}

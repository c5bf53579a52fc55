package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
	"github.com/splitnest/splitnest_backend/internal/utils"
)

const defaultInvitationTTL = 7 * 24 * time.Hour

// invitationService implements the InvitationSvcFacade interface
type invitationService struct {
	BaseService
	invitationRepo  portsrepo.InvitationRepositoryFacade
	groupRepo       portsrepo.GroupRepositoryFacade
	frontendBaseURL string
}

// NewInvitationService creates a new invitation service with the provided dependencies
func NewInvitationService(
	invitationRepo portsrepo.InvitationRepositoryFacade,
	groupRepo portsrepo.GroupRepositoryFacade,
	groupAuthorizer portssvc.GroupAuthorizerSvc,
	frontendBaseURL string,
) portssvc.InvitationSvcFacade {
	return &invitationService{
		BaseService:     BaseService{GroupAuthorizer: groupAuthorizer},
		invitationRepo:  invitationRepo,
		groupRepo:       groupRepo,
		frontendBaseURL: frontendBaseURL,
	}
}

// Ensure invitationService implements the InvitationSvcFacade interface
var _ portssvc.InvitationSvcFacade = (*invitationService)(nil)

// CreateInvitation creates a shareable invitation link for a group
func (s *invitationService) CreateInvitation(ctx context.Context, groupID string, req dto.CreateInvitationRequest, creatorUserID string) (*domain.Invitation, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	code, err := s.generateCode(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate invitation code")
		return nil, err
	}

	ttl := defaultInvitationTTL
	if req.ExpiresInHours > 0 {
		ttl = time.Duration(req.ExpiresInHours) * time.Hour
	}

	now := time.Now()
	invitation := domain.Invitation{
		InvitationID: uuid.NewString(),
		GroupID:      groupID,
		Code:         code,
		Link:         fmt.Sprintf("%s/join/%s", strings.TrimRight(s.frontendBaseURL, "/"), code),
		CreatedBy:    creatorUserID,
		ExpiresAt:    now.Add(ttl),
		MaxUses:      req.MaxUses,
		IsActive:     true,
		CreatedAt:    now,
	}

	if err := s.invitationRepo.SaveInvitation(ctx, invitation); err != nil {
		s.LogError(ctx, err, "Failed to save invitation",
			slog.String("group_id", groupID))
		return nil, err
	}

	s.LogInfo(ctx, "Invitation created",
		slog.String("group_id", groupID),
		slog.String("invitation_id", invitation.InvitationID))
	return &invitation, nil
}

// GetInvitationByCode retrieves an invitation and its group for preview
func (s *invitationService) GetInvitationByCode(ctx context.Context, code string) (*domain.Invitation, *domain.Group, error) {
	invitation, err := s.invitationRepo.FindInvitationByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, nil, err
	}

	group, err := s.groupRepo.FindGroupByID(ctx, invitation.GroupID)
	if err != nil {
		return nil, nil, err
	}

	return invitation, group, nil
}

// AcceptInvitation redeems an invitation code, adding the user to the group.
// Redeeming an invitation for a group the user already belongs to is a no-op.
func (s *invitationService) AcceptInvitation(ctx context.Context, code string, userID string) (*domain.Group, error) {
	invitation, err := s.invitationRepo.FindInvitationByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}

	if !invitation.Usable(time.Now()) {
		return nil, apperrors.NewValidationFailedError("this invitation is no longer valid")
	}

	group, err := s.groupRepo.FindGroupByID(ctx, invitation.GroupID)
	if err != nil {
		return nil, err
	}

	// Already a member; nothing to do and the use counter is not consumed.
	if _, err := s.groupRepo.FindUserGroupRole(ctx, userID, invitation.GroupID); err == nil {
		return group, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	membership := domain.GroupMember{
		GroupID:  invitation.GroupID,
		UserID:   userID,
		Role:     domain.RoleMember,
		JoinedAt: time.Now(),
	}
	if err := s.groupRepo.AddUserToGroup(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user via invitation",
			slog.String("group_id", invitation.GroupID),
			slog.String("user_id", userID))
		return nil, err
	}

	if err := s.invitationRepo.IncrementInvitationUses(ctx, invitation.InvitationID); err != nil {
		// The membership was created; a stale counter is preferable to
		// failing the join.
		s.LogError(ctx, err, "Failed to increment invitation uses",
			slog.String("invitation_id", invitation.InvitationID))
	}

	s.LogInfo(ctx, "Invitation accepted",
		slog.String("group_id", invitation.GroupID),
		slog.String("user_id", userID))
	return group, nil
}

// RevokeInvitation deactivates an invitation. Only group admins may do this.
func (s *invitationService) RevokeInvitation(ctx context.Context, groupID string, invitationID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, groupID, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.invitationRepo.DeactivateInvitation(ctx, invitationID); err != nil {
		s.LogError(ctx, err, "Failed to revoke invitation",
			slog.String("invitation_id", invitationID))
		return err
	}

	s.LogInfo(ctx, "Invitation revoked",
		slog.String("invitation_id", invitationID),
		slog.String("group_id", groupID))
	return nil
}

// ListGroupInvitations retrieves the invitations of a group
func (s *invitationService) ListGroupInvitations(ctx context.Context, groupID string, requestingUserID string) ([]domain.Invitation, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	invitations, err := s.invitationRepo.ListInvitationsByGroup(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invitations",
			slog.String("group_id", groupID))
		return nil, err
	}
	if invitations == nil {
		return []domain.Invitation{}, nil
	}
	return invitations, nil
}

// generateCode produces a short uppercase join code, retrying on the
// unlikely event of a collision.
func (s *invitationService) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		raw, err := utils.GenerateSecureRandomString(4)
		if err != nil {
			return "", err
		}
		code := strings.ToUpper(raw)
		if _, err := s.invitationRepo.FindInvitationByCode(ctx, code); errors.Is(err, apperrors.ErrNotFound) {
			return code, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to generate a unique invitation code")
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
)

// groupService implements the GroupSvcFacade interface
type groupService struct {
	BaseService
	groupRepo portsrepo.GroupRepositoryWithTx
	userRepo  portsrepo.UserReader
}

// NewGroupService creates a new group service with the provided dependencies
func NewGroupService(groupRepo portsrepo.GroupRepositoryWithTx, userRepo portsrepo.UserReader) portssvc.GroupSvcFacade {
	return &groupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// Ensure groupService implements the GroupSvcFacade interface
var _ portssvc.GroupSvcFacade = (*groupService)(nil)

// GetGroupByID retrieves a group by its ID
func (s *groupService) GetGroupByID(ctx context.Context, groupID string, requestingUserID string) (*domain.Group, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find group by ID",
				slog.String("group_id", groupID))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Group retrieved successfully",
		slog.String("group_id", group.GroupID))
	return group, nil
}

// ListUserGroups retrieves all groups a user belongs to
func (s *groupService) ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	groups, err := s.groupRepo.ListGroupsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups for user",
			slog.String("user_id", userID))
		return nil, err
	}

	if groups == nil {
		return []domain.Group{}, nil
	}

	s.LogDebug(ctx, "Groups listed successfully",
		slog.Int("count", len(groups)),
		slog.String("user_id", userID))
	return groups, nil
}

// ListGroupMembers retrieves the registered and pending members of a group
func (s *groupService) ListGroupMembers(ctx context.Context, groupID string, requestingUserID string) ([]domain.GroupMember, []domain.PendingMember, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, groupID, domain.RoleMember); err != nil {
		return nil, nil, err
	}

	members, err := s.groupRepo.ListGroupMembers(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group members",
			slog.String("group_id", groupID))
		return nil, nil, err
	}

	pendingStatus := domain.PendingStatusPending
	pending, err := s.groupRepo.ListPendingMembers(ctx, groupID, &pendingStatus)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending members",
			slog.String("group_id", groupID))
		return nil, nil, err
	}

	return members, pending, nil
}

// CreateGroup creates a new group with the creator as its admin
func (s *groupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error) {
	now := time.Now()
	group := domain.Group{
		GroupID:      uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		CurrencyCode: req.CurrencyCode,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.groupRepo.SaveGroup(ctx, group); err != nil {
		s.LogError(ctx, err, "Failed to save group",
			slog.String("group_id", group.GroupID))
		return nil, err
	}

	// Add creator as an admin to the new group
	membership := domain.GroupMember{
		GroupID:  group.GroupID,
		UserID:   creatorUserID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.groupRepo.AddUserToGroup(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add creator as admin to new group",
			slog.String("group_id", group.GroupID),
			slog.String("user_id", creatorUserID))
		return nil, err
	}

	s.LogInfo(ctx, "Group created successfully",
		slog.String("group_id", group.GroupID),
		slog.String("creator_id", creatorUserID))
	return &group, nil
}

// UpdateGroup updates group details. Only group admins may do this.
func (s *groupService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, requestingUserID string) (*domain.Group, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, groupID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Description != nil {
		group.Description = *req.Description
	}
	group.LastUpdatedAt = time.Now()
	group.LastUpdatedBy = requestingUserID

	if err := s.groupRepo.UpdateGroup(ctx, *group); err != nil {
		s.LogError(ctx, err, "Failed to update group",
			slog.String("group_id", groupID))
		return nil, err
	}

	s.LogInfo(ctx, "Group updated successfully", slog.String("group_id", groupID))
	return group, nil
}

// DeleteGroup removes a group. Only group admins may do this.
func (s *groupService) DeleteGroup(ctx context.Context, groupID string, requestingUserID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, groupID, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.groupRepo.DeleteGroup(ctx, groupID); err != nil {
		s.LogError(ctx, err, "Failed to delete group",
			slog.String("group_id", groupID))
		return err
	}

	s.LogInfo(ctx, "Group deleted successfully",
		slog.String("group_id", groupID),
		slog.String("deleted_by", requestingUserID))
	return nil
}

// AddUserToGroup adds a registered user to a group with a specific role
func (s *groupService) AddUserToGroup(ctx context.Context, addingUserID, targetUserID, groupID string, role domain.GroupRole) error {
	// Self-assignment is permitted (e.g., creator adding self as admin)
	if addingUserID != targetUserID {
		if err := s.AuthorizeUserAction(ctx, addingUserID, groupID, domain.RoleAdmin); err != nil {
			s.LogError(ctx, err, "User not authorized to add members to group",
				slog.String("adding_user_id", addingUserID),
				slog.String("group_id", groupID))
			return err
		}
	}

	// The target must be a registered, non-deleted user
	if _, err := s.userRepo.FindUserByID(ctx, targetUserID); err != nil {
		s.LogError(ctx, err, "Target user not found",
			slog.String("target_user_id", targetUserID))
		return err
	}

	membership := domain.GroupMember{
		GroupID:  groupID,
		UserID:   targetUserID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	if err := s.groupRepo.AddUserToGroup(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user to group",
			slog.String("target_user_id", targetUserID),
			slog.String("group_id", groupID))
		return err
	}

	s.LogInfo(ctx, "User added to group successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("group_id", groupID),
		slog.String("role", string(role)))
	return nil
}

// RemoveUserFromGroup removes a user from a group.
// Admins can remove anyone but the group creator; members can remove themselves.
func (s *groupService) RemoveUserFromGroup(ctx context.Context, requestingUserID, targetUserID, groupID string) error {
	if requestingUserID != targetUserID {
		if err := s.AuthorizeUserAction(ctx, requestingUserID, groupID, domain.RoleAdmin); err != nil {
			return err
		}
	}

	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy == targetUserID {
		s.LogDebug(ctx, "Attempt to remove group creator rejected",
			slog.String("group_id", groupID),
			slog.String("target_user_id", targetUserID))
		return apperrors.NewForbiddenError("the group creator cannot be removed")
	}

	membership, err := s.groupRepo.FindUserGroupRole(ctx, targetUserID, groupID)
	if err != nil {
		return err
	}
	if membership.Role == domain.RoleAdmin {
		admins, err := s.groupRepo.CountGroupAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.NewConflictError("cannot remove the last admin of the group")
		}
	}

	if err := s.groupRepo.RemoveUserFromGroup(ctx, groupID, targetUserID); err != nil {
		s.LogError(ctx, err, "Failed to remove user from group",
			slog.String("target_user_id", targetUserID),
			slog.String("group_id", groupID))
		return err
	}

	s.LogInfo(ctx, "User removed from group",
		slog.String("target_user_id", targetUserID),
		slog.String("group_id", groupID))
	return nil
}

// UpdateUserGroupRole updates a user's role in a group.
// The last remaining admin cannot be demoted.
func (s *groupService) UpdateUserGroupRole(ctx context.Context, requestingUserID, targetUserID, groupID string, newRole domain.GroupRole) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, groupID, domain.RoleAdmin); err != nil {
		return err
	}

	membership, err := s.groupRepo.FindUserGroupRole(ctx, targetUserID, groupID)
	if err != nil {
		return err
	}
	if membership.Role == newRole {
		return nil
	}

	if membership.Role == domain.RoleAdmin && newRole != domain.RoleAdmin {
		admins, err := s.groupRepo.CountGroupAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.NewConflictError("cannot demote the last admin of the group")
		}
	}

	if err := s.groupRepo.UpdateUserGroupRole(ctx, groupID, targetUserID, newRole); err != nil {
		s.LogError(ctx, err, "Failed to update member role",
			slog.String("target_user_id", targetUserID),
			slog.String("group_id", groupID))
		return err
	}

	s.LogInfo(ctx, "Member role updated",
		slog.String("target_user_id", targetUserID),
		slog.String("group_id", groupID),
		slog.String("new_role", string(newRole)))
	return nil
}

// AddPendingMember records a placeholder member invited by email
func (s *groupService) AddPendingMember(ctx context.Context, groupID string, req dto.AddPendingMemberRequest, invitedBy string) (*domain.PendingMember, error) {
	if err := s.AuthorizeUserAction(ctx, invitedBy, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	// If the email already belongs to a registered user, they should be added
	// as a regular member instead of a placeholder.
	if existing, err := s.userRepo.FindUserByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("a registered user already exists for this email; add them as a member instead")
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	pending := domain.PendingMember{
		PendingID:   uuid.NewString(),
		GroupID:     groupID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		InvitedBy:   invitedBy,
		Status:      domain.PendingStatusPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     invitedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: invitedBy,
		},
	}

	if err := s.groupRepo.SavePendingMember(ctx, pending); err != nil {
		s.LogError(ctx, err, "Failed to save pending member",
			slog.String("group_id", groupID))
		return nil, err
	}

	s.LogInfo(ctx, "Pending member added",
		slog.String("group_id", groupID),
		slog.String("pending_id", pending.PendingID))
	return &pending, nil
}

// ReconcilePendingMembers attaches a registered user to every pending
// membership held against their email. Safe to call repeatedly; already
// reconciled rows are skipped.
func (s *groupService) ReconcilePendingMembers(ctx context.Context, userID string, email string) error {
	pendings, err := s.groupRepo.FindPendingMembersByEmail(ctx, email)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up pending memberships",
			slog.String("user_id", userID))
		return err
	}

	for _, p := range pendings {
		if p.Status != domain.PendingStatusPending {
			continue
		}
		if err := s.groupRepo.ReconcilePendingMember(ctx, p.PendingID, userID); err != nil {
			s.LogError(ctx, err, "Failed to reconcile pending member",
				slog.String("pending_id", p.PendingID),
				slog.String("user_id", userID))
			return err
		}
		s.LogInfo(ctx, "Pending member reconciled",
			slog.String("pending_id", p.PendingID),
			slog.String("group_id", p.GroupID),
			slog.String("user_id", userID))
	}
	return nil
}

// AuthorizeUserAction checks if a user has required permissions for a group
func (s *groupService) AuthorizeUserAction(ctx context.Context, userID, groupID string, requiredRole domain.GroupRole) error {
	membership, err := s.groupRepo.FindUserGroupRole(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of group",
				slog.String("user_id", userID),
				slog.String("group_id", groupID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to find user group role",
			slog.String("user_id", userID),
			slog.String("group_id", groupID))
		return err
	}

	if !hasRequiredRole(membership.Role, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("group_id", groupID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.GroupRole) bool {
	switch requiredRole {
	case domain.RoleMember:
		return userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleAdmin:
		return userRole == domain.RoleAdmin
	default:
		return false
	}
}

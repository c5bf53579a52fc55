package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
	"github.com/splitnest/splitnest_backend/internal/middleware"
)

// groupHandler handles HTTP requests related to groups and their membership.
type groupHandler struct {
	groupService portssvc.GroupSvcFacade
}

// newGroupHandler creates a new groupHandler.
func newGroupHandler(gs portssvc.GroupSvcFacade) *groupHandler {
	return &groupHandler{
		groupService: gs,
	}
}

// registerGroupRoutes registers routes related to groups and their members.
// Expense, settlement, invitation and group reporting routes are nested under
// a specific group.
func registerGroupRoutes(
	rg *gin.RouterGroup,
	groupService portssvc.GroupSvcFacade,
	expenseService portssvc.ExpenseSvcFacade,
	settlementService portssvc.SettlementSvcFacade,
	invitationService portssvc.InvitationSvcFacade,
	reportingService portssvc.ReportingService,
) {
	h := newGroupHandler(groupService)

	groupsTopLevel := rg.Group("/groups")
	{
		groupsTopLevel.POST("", h.createGroup)
		groupsTopLevel.GET("", h.listUserGroups)
	}

	groupSpecific := rg.Group("/groups/:group_id")
	{
		groupSpecific.GET("", h.getGroup)
		groupSpecific.PUT("", h.updateGroup)
		groupSpecific.DELETE("", h.deleteGroup)

		members := groupSpecific.Group("/members")
		{
			members.GET("", h.listGroupMembers)
			members.POST("", h.addUserToGroup)
			members.DELETE("/:user_id", h.removeUserFromGroup)
			members.PUT("/:user_id/role", h.updateMemberRole)
		}

		groupSpecific.POST("/pending-members", h.addPendingMember)

		// -- NESTED EXPENSE AND SETTLEMENT ROUTES --
		registerExpenseRoutes(groupSpecific, expenseService, settlementService)

		// -- NESTED INVITATION ROUTES --
		registerGroupInvitationRoutes(groupSpecific, invitationService)

		// -- NESTED GROUP REPORTING ROUTES --
		registerGroupReportingRoutes(groupSpecific, reportingService)
	}
}

// createGroup godoc
// @Summary Create a new group
// @Description Creates a new group and assigns the creator as admin.
// @Tags groups
// @Accept json
// @Produce json
// @Param group body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups [post]
func (h *groupHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create group", slog.String("group_name", req.Name))

	newGroup, err := h.groupService.CreateGroup(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to create group in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create group"})
		return
	}

	logger.Info("Group created successfully", slog.String("group_id", newGroup.GroupID))
	c.JSON(http.StatusCreated, dto.ToGroupResponse(newGroup))
}

// listUserGroups godoc
// @Summary List groups for current user
// @Description Retrieves a list of groups the authenticated user belongs to.
// @Tags groups
// @Produce json
// @Success 200 {object} dto.ListGroupsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups [get]
func (h *groupHandler) listUserGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	groups, err := h.groupService.ListUserGroups(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list groups from service", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListGroupsResponse(groups))
}

// getGroup godoc
// @Summary Get group details
// @Description Retrieves a group's details. Caller must be a member.
// @Tags groups
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id} [get]
func (h *groupHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	group, err := h.groupService.GetGroupByID(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group not found"})
		} else {
			logger.Error("Failed to get group", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get group"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// updateGroup godoc
// @Summary Update group details
// @Description Updates a group's details. Caller must be a group admin.
// @Tags groups
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param group body dto.UpdateGroupRequest true "Fields to update"
// @Success 200 {object} dto.GroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id} [put]
func (h *groupHandler) updateGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), groupID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only group admins may update the group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group not found"})
		} else {
			logger.Error("Failed to update group", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update group"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// deleteGroup godoc
// @Summary Delete a group
// @Description Deletes a group and all its expenses. Caller must be a group admin.
// @Tags groups
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id} [delete]
func (h *groupHandler) deleteGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.groupService.DeleteGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only group admins may delete the group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group not found"})
		} else {
			logger.Error("Failed to delete group", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete group"})
		}
		return
	}

	logger.Info("Group deleted", slog.String("group_id", groupID))
	c.Status(http.StatusNoContent)
}

// listGroupMembers godoc
// @Summary List group members
// @Description Retrieves the registered and pending members of a group.
// @Tags groups
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} dto.GroupMembersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/members [get]
func (h *groupHandler) listGroupMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	members, pending, err := h.groupService.ListGroupMembers(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else {
			logger.Error("Failed to list group members", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list group members"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupMembersResponse(members, pending))
}

// addUserToGroup godoc
// @Summary Add a user to a group
// @Description Adds a registered user to a group with a given role. Caller must be a group admin.
// @Tags groups
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param member body dto.AddUserToGroupRequest true "User ID and Role"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/members [post]
func (h *groupHandler) addUserToGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.AddUserToGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	addingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Adding user ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("adding_user_id", addingUserID), slog.String("group_id", groupID), slog.String("target_user_id", req.UserID))

	err := h.groupService.AddUserToGroup(c.Request.Context(), addingUserID, req.UserID, groupID, req.Role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group or user not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only group admins may add members"})
		} else {
			logger.Error("Failed to add user to group", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to add user to group"})
		}
		return
	}

	logger.Info("User added to group")
	c.Status(http.StatusNoContent)
}

// removeUserFromGroup godoc
// @Summary Remove a user from a group
// @Description Removes a member. Admins may remove anyone except the creator; members may remove themselves.
// @Tags groups
// @Produce json
// @Param group_id path string true "Group ID"
// @Param user_id path string true "User ID to remove"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Removal would leave the group without an admin"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/members/{user_id} [delete]
func (h *groupHandler) removeUserFromGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	targetUserID := c.Param("user_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.groupService.RemoveUserFromGroup(c.Request.Context(), requestingUserID, targetUserID, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Not allowed to remove this member"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Cannot remove the last admin of the group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Membership not found"})
		} else {
			logger.Error("Failed to remove user from group", slog.String("error", err.Error()), slog.String("group_id", groupID), slog.String("target_user_id", targetUserID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to remove user from group"})
		}
		return
	}

	logger.Info("User removed from group", slog.String("group_id", groupID), slog.String("target_user_id", targetUserID))
	c.Status(http.StatusNoContent)
}

// updateMemberRole godoc
// @Summary Update a member's role
// @Description Changes a member's role. Caller must be a group admin; the last admin cannot be demoted.
// @Tags groups
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param user_id path string true "User ID"
// @Param role body dto.UpdateMemberRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Demotion would leave the group without an admin"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/members/{user_id}/role [put]
func (h *groupHandler) updateMemberRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	targetUserID := c.Param("user_id")

	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.groupService.UpdateUserGroupRole(c.Request.Context(), requestingUserID, targetUserID, groupID, req.Role)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only group admins may change roles"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Cannot demote the last admin of the group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Membership not found"})
		} else {
			logger.Error("Failed to update member role", slog.String("error", err.Error()), slog.String("group_id", groupID), slog.String("target_user_id", targetUserID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update member role"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// addPendingMember godoc
// @Summary Add a pending member
// @Description Adds a placeholder member by email so they can participate in expenses before registering.
// @Tags groups
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param member body dto.AddPendingMemberRequest true "Pending member details"
// @Success 201 {object} dto.PendingMemberResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered or already pending in this group"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/pending-members [post]
func (h *groupHandler) addPendingMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.AddPendingMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	invitedBy, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	pending, err := h.groupService.AddPendingMember(c.Request.Context(), groupID, req, invitedBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to add pending member", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to add pending member"})
		}
		return
	}

	logger.Info("Pending member added", slog.String("group_id", groupID), slog.String("pending_id", pending.PendingID))
	c.JSON(http.StatusCreated, dto.ToPendingMemberResponse(pending))
}

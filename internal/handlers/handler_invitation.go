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

// invitationHandler handles HTTP requests related to group invitations.
type invitationHandler struct {
	invitationService portssvc.InvitationSvcFacade
}

// newInvitationHandler creates a new invitationHandler.
func newInvitationHandler(is portssvc.InvitationSvcFacade) *invitationHandler {
	return &invitationHandler{
		invitationService: is,
	}
}

// registerGroupInvitationRoutes registers invitation management routes relative
// to a specific group's route group.
func registerGroupInvitationRoutes(groupRG *gin.RouterGroup, invitationService portssvc.InvitationSvcFacade) {
	h := newInvitationHandler(invitationService)

	invitations := groupRG.Group("/invitations")
	{
		invitations.POST("", h.createInvitation)
		invitations.GET("", h.listInvitations)
		invitations.DELETE("/:invitation_id", h.revokeInvitation)
	}
}

// registerInvitationRoutes registers the authenticated invitation redemption route.
func registerInvitationRoutes(rg *gin.RouterGroup, invitationService portssvc.InvitationSvcFacade) {
	h := newInvitationHandler(invitationService)

	rg.POST("/invitations/accept", h.acceptInvitation)
}

// registerPublicInvitationRoutes registers the unauthenticated invitation
// preview route, so invitees can see the group before signing up.
func registerPublicInvitationRoutes(r *gin.Engine, invitationService portssvc.InvitationSvcFacade) {
	h := newInvitationHandler(invitationService)

	r.GET("/api/v1/invitations/:code", h.previewInvitation)
}

// createInvitation godoc
// @Summary Create a group invitation
// @Description Creates a shareable invitation link for a group. Caller must be a group admin.
// @Tags invitations
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param invitation body dto.CreateInvitationRequest true "Invitation options"
// @Success 201 {object} dto.InvitationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/invitations [post]
func (h *invitationHandler) createInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	invitation, err := h.invitationService.CreateInvitation(c.Request.Context(), groupID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only group admins may create invitations"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group not found"})
		} else {
			logger.Error("Failed to create invitation", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create invitation"})
		}
		return
	}

	logger.Info("Invitation created", slog.String("group_id", groupID), slog.String("invitation_id", invitation.InvitationID))
	c.JSON(http.StatusCreated, dto.ToInvitationResponse(invitation))
}

// listInvitations godoc
// @Summary List group invitations
// @Description Retrieves the invitations of a group. Caller must be a group admin.
// @Tags invitations
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} dto.ListInvitationsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/invitations [get]
func (h *invitationHandler) listInvitations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	invitations, err := h.invitationService.ListGroupInvitations(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only group admins may list invitations"})
		} else {
			logger.Error("Failed to list invitations", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list invitations"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListInvitationsResponse(invitations))
}

// revokeInvitation godoc
// @Summary Revoke an invitation
// @Description Deactivates an invitation so it can no longer be redeemed. Caller must be a group admin.
// @Tags invitations
// @Produce json
// @Param group_id path string true "Group ID"
// @Param invitation_id path string true "Invitation ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/invitations/{invitation_id} [delete]
func (h *invitationHandler) revokeInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	invitationID := c.Param("invitation_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.invitationService.RevokeInvitation(c.Request.Context(), groupID, invitationID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only group admins may revoke invitations"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Invitation not found"})
		} else {
			logger.Error("Failed to revoke invitation", slog.String("error", err.Error()), slog.String("invitation_id", invitationID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to revoke invitation"})
		}
		return
	}

	logger.Info("Invitation revoked", slog.String("invitation_id", invitationID))
	c.Status(http.StatusNoContent)
}

// previewInvitation godoc
// @Summary Preview an invitation
// @Description Retrieves an invitation and its group so an invitee can see it before joining. No authentication required.
// @Tags invitations
// @Produce json
// @Param code path string true "Invitation code"
// @Success 200 {object} dto.InvitationPreviewResponse
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse "Invitation expired or revoked"
// @Failure 500 {object} ErrorResponse
// @Router /invitations/{code} [get]
func (h *invitationHandler) previewInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	invitation, group, err := h.invitationService.GetInvitationByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Invitation not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusGone, ErrorResponse{Error: "Invitation is no longer redeemable"})
		} else {
			logger.Error("Failed to preview invitation", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load invitation"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.InvitationPreviewResponse{
		Invitation: dto.ToInvitationResponse(invitation),
		Group:      dto.ToGroupResponse(group),
	})
}

// acceptInvitation godoc
// @Summary Accept an invitation
// @Description Redeems an invitation code, adding the caller to the group. Redeeming for a group the caller already belongs to is a no-op.
// @Tags invitations
// @Accept json
// @Produce json
// @Param invitation body dto.AcceptInvitationRequest true "Invitation code"
// @Success 200 {object} dto.GroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse "Invitation expired, revoked or fully used"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invitations/accept [post]
func (h *invitationHandler) acceptInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AcceptInvitationRequest
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

	group, err := h.invitationService.AcceptInvitation(c.Request.Context(), req.Code, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Invitation not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusGone, ErrorResponse{Error: "Invitation is no longer redeemable"})
		} else {
			logger.Error("Failed to accept invitation", slog.String("error", err.Error()), slog.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to accept invitation"})
		}
		return
	}

	logger.Info("Invitation accepted", slog.String("user_id", userID), slog.String("group_id", group.GroupID))
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
	"github.com/splitnest/splitnest_backend/internal/middleware"
)

// reportingHandler handles HTTP requests for spending reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the user-scoped reporting routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/overview", h.getOverview)
		reports.GET("/categories", h.getExpensesByCategory)
		reports.GET("/trends", h.getMonthlyTrends)
	}
}

// registerGroupReportingRoutes registers group-scoped reporting routes relative
// to a specific group's route group.
func registerGroupReportingRoutes(groupRG *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	groupRG.GET("/top-spenders", h.getTopSpenders)
}

// getOverview godoc
// @Summary Get spending overview
// @Description Generates lifetime totals and current net position for the authenticated user.
// @Tags reports
// @Produce json
// @Success 200 {object} dto.OverviewResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/overview [get]
func (h *reportingHandler) getOverview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	overview, err := h.reportingService.Overview(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to generate overview", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate overview"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOverviewResponse(overview))
}

// getExpensesByCategory godoc
// @Summary Get spend by category
// @Description Generates per-category spend for the authenticated user within a period. Defaults to the trailing year.
// @Tags reports
// @Produce json
// @Param from query string false "Period start (RFC 3339)"
// @Param to query string false "Period end (RFC 3339)"
// @Success 200 {object} dto.CategoryReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/categories [get]
func (h *reportingHandler) getExpensesByCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.CategoryReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	now := time.Now()
	from := now.AddDate(-1, 0, 0)
	to := now
	if params.From != "" {
		parsed, err := time.Parse(time.RFC3339, params.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "'from' must be an RFC 3339 timestamp"})
			return
		}
		from = parsed
	}
	if params.To != "" {
		parsed, err := time.Parse(time.RFC3339, params.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "'to' must be an RFC 3339 timestamp"})
			return
		}
		to = parsed
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "'to' must not be before 'from'"})
		return
	}

	summaries, err := h.reportingService.ExpensesByCategory(c.Request.Context(), userID, from, to)
	if err != nil {
		logger.Error("Failed to generate category report", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate category report"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryReportResponse(summaries))
}

// getMonthlyTrends godoc
// @Summary Get monthly spend trends
// @Description Generates per-month spend for the authenticated user over the trailing months (default 6).
// @Tags reports
// @Produce json
// @Param months query int false "Number of trailing months (default 6, max 36)"
// @Success 200 {object} dto.TrendsReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/trends [get]
func (h *reportingHandler) getMonthlyTrends(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	months := 6
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 36 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "'months' must be an integer between 1 and 36"})
			return
		}
		months = parsed
	}

	trends, err := h.reportingService.MonthlyTrends(c.Request.Context(), userID, months)
	if err != nil {
		logger.Error("Failed to generate trends report", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate trends report"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTrendsReportResponse(trends))
}

// getTopSpenders godoc
// @Summary Get top spenders in a group
// @Description Ranks the members of a group by amount paid. Caller must be a group member.
// @Tags reports
// @Produce json
// @Param group_id path string true "Group ID"
// @Param limit query int false "Max members to return (default 5)"
// @Success 200 {object} dto.TopSpendersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/top-spenders [get]
func (h *reportingHandler) getTopSpenders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "'limit' must be a positive integer"})
			return
		}
		limit = parsed
	}

	spenders, err := h.reportingService.TopSpenders(c.Request.Context(), groupID, limit, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
			return
		}
		logger.Error("Failed to rank top spenders", slog.String("error", err.Error()), slog.String("group_id", groupID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to rank top spenders"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTopSpendersResponse(groupID, spenders))
}

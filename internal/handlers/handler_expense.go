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

// expenseHandler handles HTTP requests related to expenses and derived
// balance/settlement views within a group.
type expenseHandler struct {
	expenseService    portssvc.ExpenseSvcFacade
	settlementService portssvc.SettlementSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade, ss portssvc.SettlementSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService:    es,
		settlementService: ss,
	}
}

// registerExpenseRoutes registers expense and settlement routes relative to a
// specific group's route group.
func registerExpenseRoutes(groupRG *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, settlementService portssvc.SettlementSvcFacade) {
	h := newExpenseHandler(expenseService, settlementService)

	expenses := groupRG.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expense_id", h.getExpense)
		expenses.PUT("/:expense_id", h.updateExpense)
		expenses.DELETE("/:expense_id", h.deleteExpense)
		expenses.POST("/:expense_id/settle", h.settleExpense)
	}

	groupRG.GET("/balances", h.getGroupBalances)
	groupRG.GET("/settlements", h.getGroupSettlement)
}

// createExpense godoc
// @Summary Create a new expense
// @Description Creates an expense with its participant shares. Shares are fixed at creation.
// @Tags expenses
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Validation failed (currency mismatch, shares don't sum, unknown participant)"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("creator_user_id", creatorUserID))

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), groupID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group not found"})
		} else {
			logger.Error("Failed to create expense", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create expense"})
		}
		return
	}

	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List group expenses
// @Description Retrieves a paginated list of a group's expenses, newest first.
// @Tags expenses
// @Produce json
// @Param group_id path string true "Group ID"
// @Param limit query int false "Max expenses to return (default 20)"
// @Param nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse "Invalid pagination token"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var params dto.ListExpensesParams
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

	resp, err := h.expenseService.ListGroupExpenses(c.Request.Context(), groupID, userID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid pagination token"})
		} else {
			logger.Error("Failed to list expenses", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list expenses"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getExpense godoc
// @Summary Get expense details
// @Description Retrieves an expense with its participant shares.
// @Tags expenses
// @Produce json
// @Param group_id path string true "Group ID"
// @Param expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/expenses/{expense_id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), groupID, expenseID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
		} else {
			logger.Error("Failed to get expense", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get expense"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// updateExpense godoc
// @Summary Update expense details
// @Description Updates an expense's details. Shares are not recomputed. Only the creator may edit.
// @Tags expenses
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param expense_id path string true "Expense ID"
// @Param expense body dto.UpdateExpenseRequest true "Fields to update"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not the expense creator"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/expenses/{expense_id} [put]
func (h *expenseHandler) updateExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	expenseID := c.Param("expense_id")

	var req dto.UpdateExpenseRequest
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

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), groupID, expenseID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only the expense creator may edit it"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to update expense", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update expense"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// deleteExpense godoc
// @Summary Delete an expense
// @Description Deletes an expense and its shares. Only the creator may delete.
// @Tags expenses
// @Produce json
// @Param group_id path string true "Group ID"
// @Param expense_id path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/expenses/{expense_id} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.expenseService.DeleteExpense(c.Request.Context(), groupID, expenseID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only the expense creator may delete it"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
		} else {
			logger.Error("Failed to delete expense", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete expense"})
		}
		return
	}

	logger.Info("Expense deleted", slog.String("expense_id", expenseID))
	c.Status(http.StatusNoContent)
}

// settleExpense godoc
// @Summary Settle an expense
// @Description Marks an expense settled, removing it from balance computation. Settling twice is a no-op.
// @Tags expenses
// @Produce json
// @Param group_id path string true "Group ID"
// @Param expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{group_id}/expenses/{expense_id}/settle [post]
func (h *expenseHandler) settleExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.SettleExpense(c.Request.Context(), groupID, expenseID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
		} else {
			logger.Error("Failed to settle expense", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to settle expense"})
		}
		return
	}

	logger.Info("Expense settled", slog.String("expense_id", expenseID), slog.String("group_id", groupID))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// getGroupBalances godoc
// @Summary Get group balances
// @Description Computes the net position of every member over the group's unsettled expenses.
// @Tags settlements
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} dto.GroupBalancesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Balance data failed internal consistency checks"
// @Security BearerAuth
// @Router /groups/{group_id}/balances [get]
func (h *expenseHandler) getGroupBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	balances, err := h.settlementService.GetGroupBalances(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrInvariantViolation) {
			logger.Error("Balance computation failed consistency check", slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Balance data is inconsistent"})
		} else {
			logger.Error("Failed to compute balances", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compute balances"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupBalancesResponse(groupID, balances))
}

// getGroupSettlement godoc
// @Summary Get group settlement plan
// @Description Computes a minimal set of transfers that zeroes the group's balances.
// @Tags settlements
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} dto.GroupSettlementResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Balance data failed internal consistency checks"
// @Security BearerAuth
// @Router /groups/{group_id}/settlements [get]
func (h *expenseHandler) getGroupSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	transfers, err := h.settlementService.GetGroupSettlement(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this group"})
		} else if errors.Is(err, apperrors.ErrInvariantViolation) {
			logger.Error("Settlement computation failed consistency check", slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Balance data is inconsistent"})
		} else {
			logger.Error("Failed to compute settlement", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compute settlement"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupSettlementResponse(groupID, transfers))
}

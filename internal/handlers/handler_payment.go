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

// paymentHandler handles HTTP requests related to payments and refunds.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
	}
}

// registerPaymentRoutes registers payment and refund routes.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
		payments.GET("", h.listPayments)
		payments.POST("/:payment_id/complete", h.completePayment)
	}

	refunds := rg.Group("/refunds")
	{
		refunds.POST("", h.requestRefund)
		refunds.GET("", h.listRefunds)
		refunds.PUT("/:refund_id/status", h.resolveRefund)
	}
}

// recordPayment godoc
// @Summary Record a payment
// @Description Records a pending payment for the authenticated user.
// @Tags payments
// @Accept json
// @Produce json
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordPaymentRequest
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

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to record payment", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record payment"})
		return
	}

	logger.Info("Payment recorded", slog.String("payment_id", payment.PaymentID), slog.String("user_id", userID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// listPayments godoc
// @Summary List payments
// @Description Retrieves the authenticated user's payments, newest first.
// @Tags payments
// @Produce json
// @Param limit query int false "Max payments to return (default 20)"
// @Param offset query int false "Offset into the result set"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListPaymentsParams
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

	payments, err := h.paymentService.ListUserPayments(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list payments", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list payments"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListPaymentsResponse(payments))
}

// completePayment godoc
// @Summary Complete a payment
// @Description Marks a pending payment completed, attaching the gateway transaction reference.
// @Tags payments
// @Accept json
// @Produce json
// @Param payment_id path string true "Payment ID"
// @Param completion body dto.CompletePaymentRequest true "Gateway transaction reference"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Payment is not pending"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/{payment_id}/complete [post]
func (h *paymentHandler) completePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("payment_id")

	var req dto.CompletePaymentRequest
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

	payment, err := h.paymentService.CompletePayment(c.Request.Context(), paymentID, req.TransactionID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You may only complete your own payments"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Payment not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Payment is not pending"})
		} else {
			logger.Error("Failed to complete payment", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to complete payment"})
		}
		return
	}

	logger.Info("Payment completed", slog.String("payment_id", paymentID))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// requestRefund godoc
// @Summary Request a refund
// @Description Files a refund request against one of the caller's completed payments.
// @Tags refunds
// @Accept json
// @Produce json
// @Param refund body dto.RequestRefundRequest true "Refund details"
// @Success 201 {object} dto.RefundResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Payment is not refundable"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /refunds [post]
func (h *paymentHandler) requestRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RequestRefundRequest
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

	refund, err := h.paymentService.RequestRefund(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You may only request refunds for your own payments"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Payment not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Payment is not refundable"})
		} else {
			logger.Error("Failed to request refund", slog.String("error", err.Error()), slog.String("payment_id", req.PaymentID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to request refund"})
		}
		return
	}

	logger.Info("Refund requested", slog.String("refund_id", refund.RefundID), slog.String("payment_id", req.PaymentID))
	c.JSON(http.StatusCreated, dto.ToRefundResponse(refund))
}

// listRefunds godoc
// @Summary List refunds
// @Description Retrieves refunds requested by the authenticated user, newest first.
// @Tags refunds
// @Produce json
// @Param limit query int false "Max refunds to return (default 20)"
// @Param offset query int false "Offset into the result set"
// @Success 200 {object} dto.ListRefundsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /refunds [get]
func (h *paymentHandler) listRefunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListPaymentsParams
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

	refunds, err := h.paymentService.ListUserRefunds(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list refunds", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list refunds"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListRefundsResponse(refunds))
}

// resolveRefund godoc
// @Summary Resolve a refund
// @Description Transitions a refund to approved, completed or rejected.
// @Tags refunds
// @Accept json
// @Produce json
// @Param refund_id path string true "Refund ID"
// @Param resolution body dto.ResolveRefundRequest true "Target status"
// @Success 200 {object} dto.RefundResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Invalid status transition"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /refunds/{refund_id}/status [put]
func (h *paymentHandler) resolveRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	refundID := c.Param("refund_id")

	var req dto.ResolveRefundRequest
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

	refund, err := h.paymentService.ResolveRefund(c.Request.Context(), refundID, req.Status, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Not allowed to resolve this refund"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Refund not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Invalid refund status transition"})
		} else {
			logger.Error("Failed to resolve refund", slog.String("error", err.Error()), slog.String("refund_id", refundID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve refund"})
		}
		return
	}

	logger.Info("Refund resolved", slog.String("refund_id", refundID), slog.String("status", string(refund.Status)))
	c.JSON(http.StatusOK, dto.ToRefundResponse(refund))
}

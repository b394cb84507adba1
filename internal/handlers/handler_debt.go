package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/SscSPs/resale_settlement/internal/dto"
	"github.com/SscSPs/resale_settlement/internal/middleware"
	"github.com/gin-gonic/gin"
)

type debtHandler struct {
	debtService portssvc.DebtSvcFacade
}

// RegisterDebtRoutes registers debt routes under a /clients/:client_id group.
func RegisterDebtRoutes(rg *gin.RouterGroup, debtService portssvc.DebtSvcFacade) {
	h := &debtHandler{debtService: debtService}

	debts := rg.Group("/debts")
	{
		debts.GET("", h.listDebts)
		debts.GET("/:debt_id", h.getDebt)
		debts.GET("/:debt_id/settlements", h.listDebtSettlements)
		debts.POST("/:debt_id/settlements", h.settleDebt)
		debts.POST("/:debt_id/cancel", h.cancelDebt)
	}
}

// settleDebt godoc
// @Summary Apply payments to a debt
// @Description Converts the allocations at the current rates and applies them to the remaining balance. A settled debt marks its order paid.
// @Tags debts
// @Accept  json
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   debt_id path string true "Debt ID"
// @Param   settlement body dto.SettleDebtRequest true "Payments"
// @Success 200 {object} dto.SettleDebtResponse
// @Failure 400 {object} dto.ErrorResponse "InvalidAmount, NoPaymentMethodSelected or InvalidPaymentMethod"
// @Failure 404 {object} dto.ErrorResponse "DebtNotFound"
// @Failure 409 {object} dto.ErrorResponse "DebtAlreadySettled"
// @Failure 422 {object} dto.ErrorResponse "RateNotConfigured"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/debts/{debt_id}/settlements [post]
func (h *debtHandler) settleDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("client_id")
	debtID := c.Param("debt_id")

	var req dto.SettleDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, logger, "SettleDebt", bindError(err))
		return
	}

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("debt_id", debtID))
	logger.Info("Received request to settle debt", slog.Int("allocations", len(req.Allocations)))

	result, err := h.debtService.SettleDebt(c.Request.Context(), clientID, debtID, req, actorID)
	if err != nil {
		writeError(c, logger, "SettleDebt", err)
		return
	}

	logger.Info("Debt settlement applied",
		slog.String("status", string(result.Debt.Status)),
		slog.String("remaining_usd", result.Debt.RemainingUSD.String()),
	)
	c.JSON(http.StatusOK, dto.ToSettleDebtResponse(result))
}

// getDebt godoc
// @Summary Get a debt
// @Tags debts
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   debt_id path string true "Debt ID"
// @Success 200 {object} dto.DebtResponse
// @Failure 404 {object} dto.ErrorResponse "DebtNotFound"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/debts/{debt_id} [get]
func (h *debtHandler) getDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	debt, err := h.debtService.GetDebt(c.Request.Context(), c.Param("client_id"), c.Param("debt_id"))
	if err != nil {
		writeError(c, logger, "GetDebt", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDebtResponse(debt))
}

// listDebts godoc
// @Summary List debts
// @Tags debts
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   limit query int false "Page size (1-100)"
// @Param   nextToken query string false "Token from the previous page"
// @Param   status query string false "active, settled or cancelled"
// @Param   customerRef query string false "Customer reference"
// @Success 200 {object} dto.ListDebtsResponse
// @Failure 400 {object} dto.ErrorResponse "Validation"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/debts [get]
func (h *debtHandler) listDebts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListDebtsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		writeError(c, logger, "ListDebts", bindError(err))
		return
	}

	resp, err := h.debtService.ListDebts(c.Request.Context(), c.Param("client_id"), params)
	if err != nil {
		writeError(c, logger, "ListDebts", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listDebtSettlements godoc
// @Summary List the payments applied to a debt
// @Tags debts
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   debt_id path string true "Debt ID"
// @Success 200 {object} dto.ListSettlementsResponse
// @Failure 404 {object} dto.ErrorResponse "DebtNotFound"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/debts/{debt_id}/settlements [get]
func (h *debtHandler) listDebtSettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	records, err := h.debtService.ListDebtSettlements(c.Request.Context(), c.Param("client_id"), c.Param("debt_id"))
	if err != nil {
		writeError(c, logger, "ListDebtSettlements", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListSettlementsResponse(records))
}

// cancelDebt godoc
// @Summary Cancel an active debt
// @Tags debts
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   debt_id path string true "Debt ID"
// @Success 200 {object} dto.DebtResponse
// @Failure 404 {object} dto.ErrorResponse "DebtNotFound"
// @Failure 409 {object} dto.ErrorResponse "DebtAlreadySettled"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/debts/{debt_id}/cancel [post]
func (h *debtHandler) cancelDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	debt, err := h.debtService.CancelDebt(c.Request.Context(), c.Param("client_id"), c.Param("debt_id"), actorID)
	if err != nil {
		writeError(c, logger, "CancelDebt", err)
		return
	}

	logger.Info("Debt cancelled", slog.String("debt_id", debt.DebtID))
	c.JSON(http.StatusOK, dto.ToDebtResponse(debt))
}

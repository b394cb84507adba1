package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/SscSPs/resale_settlement/internal/dto"
	"github.com/SscSPs/resale_settlement/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// RegisterExchangeRateRoutes registers rate routes under a /clients/:client_id group.
func RegisterExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.GET("", h.listExchangeRates)
		exchangeRates.POST("/seed", h.seedExchangeRates)
		exchangeRates.GET("/:method", h.getExchangeRate)
		exchangeRates.PUT("/:method", h.setExchangeRate)
	}
}

// setExchangeRate godoc
// @Summary Set the active rate for a payment method
// @Description Replaces the client's active rate for the method. Existing settlement records keep their pinned rate.
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   method path string true "Payment method code"
// @Param   rate body dto.SetExchangeRateRequest true "New rate"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} dto.ErrorResponse "InvalidRate or InvalidPaymentMethod"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/exchange-rates/{method} [put]
func (h *exchangeRateHandler) setExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("client_id")
	method := domain.PaymentMethodCode(c.Param("method"))

	var req dto.SetExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, logger, "SetExchangeRate", bindError(err))
		return
	}

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("method", string(method)))
	logger.Info("Received request to set exchange rate", slog.String("rate", req.Rate.String()))

	rate, err := h.exchangeRateService.SetRate(c.Request.Context(), clientID, method, req.Rate, actorID)
	if err != nil {
		writeError(c, logger, "SetExchangeRate", err)
		return
	}

	logger.Info("Exchange rate set successfully")
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// getExchangeRate godoc
// @Summary Get the active rate for a payment method
// @Tags exchange rates
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   method path string true "Payment method code"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} dto.ErrorResponse "InvalidPaymentMethod"
// @Failure 422 {object} dto.ErrorResponse "RateNotConfigured"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/exchange-rates/{method} [get]
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("client_id")
	method := domain.PaymentMethodCode(c.Param("method"))

	rate, err := h.exchangeRateService.GetRate(c.Request.Context(), clientID, method)
	if err != nil {
		writeError(c, logger, "GetExchangeRate", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// listExchangeRates godoc
// @Summary List the client's configured rates
// @Tags exchange rates
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Success 200 {object} dto.ListExchangeRatesResponse
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/exchange-rates [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("client_id")

	rates, err := h.exchangeRateService.ListRates(c.Request.Context(), clientID)
	if err != nil {
		writeError(c, logger, "ListExchangeRates", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListExchangeRatesResponse(rates))
}

// seedExchangeRates godoc
// @Summary Seed default rates
// @Description Inserts the configured default rate for every method the client has not configured yet. Existing rates are never overwritten.
// @Tags exchange rates
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Success 200 {object} dto.ListExchangeRatesResponse "Only the rates that were inserted"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/exchange-rates/seed [post]
func (h *exchangeRateHandler) seedExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("client_id")

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	seeded, err := h.exchangeRateService.SeedDefaultRates(c.Request.Context(), clientID, actorID)
	if err != nil {
		writeError(c, logger, "SeedExchangeRates", err)
		return
	}

	logger.Info("Default exchange rates seeded", slog.String("client_id", clientID), slog.Int("inserted", len(seeded)))
	c.JSON(http.StatusOK, dto.ToListExchangeRatesResponse(seeded))
}

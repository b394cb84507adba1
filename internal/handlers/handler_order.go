package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/SscSPs/resale_settlement/internal/dto"
	"github.com/SscSPs/resale_settlement/internal/middleware"
	"github.com/gin-gonic/gin"
)

type orderHandler struct {
	orderService portssvc.OrderSvcFacade
	debtService  portssvc.DebtReaderSvc
}

// RegisterOrderRoutes registers order routes under a /clients/:client_id group.
func RegisterOrderRoutes(rg *gin.RouterGroup, orderService portssvc.OrderSvcFacade, debtService portssvc.DebtReaderSvc) {
	h := &orderHandler{orderService: orderService, debtService: debtService}

	orders := rg.Group("/orders")
	{
		orders.POST("", h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:order_id", h.getOrder)
		orders.GET("/:order_id/settlements", h.listOrderSettlements)
		orders.GET("/:order_id/debt", h.getOrderDebt)
	}
}

// createOrder godoc
// @Summary Create an order
// @Description Validates the allocations, marks every inventory item sold, and persists the order with its payment records. Underpayment opens a debt.
// @Tags orders
// @Accept  json
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   order body dto.CreateOrderRequest true "Order details"
// @Success 201 {object} dto.CreateOrderResponse
// @Failure 400 {object} dto.ErrorResponse "Validation, InvalidAmount, EmptyOrder, DuplicateLineItem, NoPaymentMethodSelected or InvalidPaymentMethod"
// @Failure 409 {object} dto.ErrorResponse "InventoryConflict"
// @Failure 422 {object} dto.ErrorResponse "RateNotConfigured"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Failure 504 {object} dto.ErrorResponse "Timeout"
// @Security BearerAuth
// @Router /clients/{client_id}/orders [post]
func (h *orderHandler) createOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("client_id")

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, logger, "CreateOrder", bindError(err))
		return
	}

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID))
	logger.Info("Received request to create order",
		slog.Int("line_items", len(req.LineItems)),
		slog.Int("allocations", len(req.Allocations)),
		slog.Bool("on_credit", req.OnCredit),
	)

	result, err := h.orderService.CreateOrder(c.Request.Context(), clientID, req, actorID)
	if err != nil {
		writeError(c, logger, "CreateOrder", err)
		return
	}

	logger.Info("Order created successfully",
		slog.String("order_id", result.Order.OrderID),
		slog.String("payment_status", string(result.Order.PaymentStatus)),
	)
	c.JSON(http.StatusCreated, dto.ToCreateOrderResponse(result))
}

// getOrder godoc
// @Summary Get an order
// @Tags orders
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   order_id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.ErrorResponse "OrderNotFound"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/orders/{order_id} [get]
func (h *orderHandler) getOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("client_id"), c.Param("order_id"))
	if err != nil {
		writeError(c, logger, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// listOrders godoc
// @Summary List orders
// @Description Newest first, paginated with an opaque nextToken.
// @Tags orders
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   limit query int false "Page size (1-100)"
// @Param   nextToken query string false "Token from the previous page"
// @Param   paymentStatus query string false "unpaid, partial or paid"
// @Param   customerRef query string false "Customer reference"
// @Success 200 {object} dto.ListOrdersResponse
// @Failure 400 {object} dto.ErrorResponse "Validation"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/orders [get]
func (h *orderHandler) listOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListOrdersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		writeError(c, logger, "ListOrders", bindError(err))
		return
	}

	resp, err := h.orderService.ListOrders(c.Request.Context(), c.Param("client_id"), params)
	if err != nil {
		writeError(c, logger, "ListOrders", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listOrderSettlements godoc
// @Summary List the payment records written at order creation
// @Tags orders
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   order_id path string true "Order ID"
// @Success 200 {object} dto.ListSettlementsResponse
// @Failure 404 {object} dto.ErrorResponse "OrderNotFound"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/orders/{order_id}/settlements [get]
func (h *orderHandler) listOrderSettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	records, err := h.orderService.ListOrderSettlements(c.Request.Context(), c.Param("client_id"), c.Param("order_id"))
	if err != nil {
		writeError(c, logger, "ListOrderSettlements", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListSettlementsResponse(records))
}

// getOrderDebt godoc
// @Summary Get the debt opened for an order
// @Tags orders
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   order_id path string true "Order ID"
// @Success 200 {object} dto.DebtResponse
// @Failure 404 {object} dto.ErrorResponse "DebtNotFound"
// @Failure 500 {object} dto.ErrorResponse "StorageFailure"
// @Security BearerAuth
// @Router /clients/{client_id}/orders/{order_id}/debt [get]
func (h *orderHandler) getOrderDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	debt, err := h.debtService.GetDebtByOrder(c.Request.Context(), c.Param("client_id"), c.Param("order_id"))
	if err != nil {
		writeError(c, logger, "GetOrderDebt", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDebtResponse(debt))
}

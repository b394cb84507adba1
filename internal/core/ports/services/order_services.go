package services

import (
	"context"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/dto"
)

// OrderReaderSvc defines read operations on orders
type OrderReaderSvc interface {
	GetOrder(ctx context.Context, clientID, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, clientID string, params dto.ListOrdersParams) (*dto.ListOrdersResponse, error)
	ListOrderSettlements(ctx context.Context, clientID, orderID string) ([]domain.SettlementRecord, error)
}

// OrderWriterSvc runs the order settlement workflow.
type OrderWriterSvc interface {
	// CreateOrder validates, reserves inventory, and persists the order with
	// its payment records and optional debt. On any failure every acquired
	// inventory ticket is released and nothing is persisted.
	CreateOrder(ctx context.Context, clientID string, req dto.CreateOrderRequest, actorID string) (*domain.OrderResult, error)
}

// OrderSvcFacade combines all order-related service interfaces
type OrderSvcFacade interface {
	OrderReaderSvc
	OrderWriterSvc
}

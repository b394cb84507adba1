package repositories

import (
	"context"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
)

// OrderReader defines read operations for orders
type OrderReader interface {
	// FindOrderByID returns the order with line items and allocations, or an OrderNotFound error.
	FindOrderByID(ctx context.Context, clientID, orderID string) (*domain.Order, error)
	// ListOrders returns a newest-first page and the token for the next page, if any.
	ListOrders(ctx context.Context, clientID string, filter domain.OrderFilter) ([]domain.Order, *string, error)
}

// OrderWriter defines write operations for orders
type OrderWriter interface {
	// SaveOrder persists the order, its line items, its settlement records and
	// the optional debt in one atomic unit. Nothing is stored on error.
	SaveOrder(ctx context.Context, order domain.Order, records []domain.SettlementRecord, debt *domain.Debt) error
}

// OrderRepositoryFacade combines all order-related repository interfaces
type OrderRepositoryFacade interface {
	OrderReader
	OrderWriter
}

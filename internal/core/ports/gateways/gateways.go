// Package gateways declares the collaborators the settlement core consumes
// but does not own: inventory, the party directory, the rate cache and the
// event bus.
package gateways

import (
	"context"
	"time"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
)

// InventoryGateway performs at-most-once sale transitions on inventory items.
type InventoryGateway interface {
	GetItem(ctx context.Context, itemRef string) (*domain.InventoryItem, error)
	// TrySell flips an available or reserved item to sold with compare-and-swap
	// semantics. Any other status, or an unknown item, yields InventoryConflict.
	TrySell(ctx context.Context, itemRef, actorID string) (domain.SaleTicket, error)
	// ReleaseSale restores the status captured in the ticket if the item is
	// still sold under that ticket's version.
	ReleaseSale(ctx context.Context, ticket domain.SaleTicket) error
}

// PartyDirectory resolves customer and vendor refs to display names.
// Lookups are best effort and never affect settlement math.
type PartyDirectory interface {
	DisplayName(ctx context.Context, kind domain.PartyKind, ref string) (string, error)
}

// RateCache fronts exchange rate reads.
type RateCache interface {
	Get(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, bool, error)
	// Set stores rate unless the cached entry for the same key has a larger
	// Version. Skipping an older entry is not an error.
	Set(ctx context.Context, rate domain.ExchangeRateEntry, ttl time.Duration) error
	Delete(ctx context.Context, clientID string, method domain.PaymentMethodCode) error
}

// EventPublisher emits post-commit notifications. Implementations must not
// block the caller on delivery and report failures only through logs.
type EventPublisher interface {
	PublishOrderCommitted(ctx context.Context, event domain.OrderCommittedEvent)
	PublishDebtSettled(ctx context.Context, event domain.DebtSettledEvent)
}

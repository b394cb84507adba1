package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
	"github.com/google/uuid"
)

// Inventory is an in-process inventory gateway. Every transition is a
// compare-and-swap on the item's version under one mutex.
type Inventory struct {
	mu    sync.Mutex
	items map[string]domain.InventoryItem
	now   func() time.Time
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{items: make(map[string]domain.InventoryItem), now: time.Now}
}

var _ gateways.InventoryGateway = (*Inventory)(nil)

// Put registers or overwrites an item with the given status.
func (inv *Inventory) Put(itemRef string, status domain.ItemStatus) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	item := inv.items[itemRef]
	item.ItemRef = itemRef
	item.Status = status
	item.Version++
	item.UpdatedAt = inv.now().UTC()
	inv.items[itemRef] = item
}

func (inv *Inventory) GetItem(ctx context.Context, itemRef string) (*domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	item, ok := inv.items[itemRef]
	if !ok {
		return nil, apperrors.NewNotFoundError("inventory item not found: " + itemRef)
	}
	return &item, nil
}

func (inv *Inventory) TrySell(ctx context.Context, itemRef, actorID string) (domain.SaleTicket, error) {
	if err := ctx.Err(); err != nil {
		return domain.SaleTicket{}, err
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()

	item, ok := inv.items[itemRef]
	if !ok {
		return domain.SaleTicket{}, apperrors.NewInventoryConflictError([]string{itemRef}, "inventory item does not exist")
	}
	if !item.Status.IsSellable() {
		return domain.SaleTicket{}, apperrors.NewInventoryConflictError([]string{itemRef}, "inventory item is "+string(item.Status))
	}

	prior := item.Status
	now := inv.now().UTC()
	item.Status = domain.ItemSold
	item.Version++
	item.UpdatedAt = now
	inv.items[itemRef] = item

	return domain.SaleTicket{
		TicketID:    uuid.NewString(),
		ItemRef:     itemRef,
		PriorStatus: prior,
		Version:     item.Version,
		ActorID:     actorID,
		SoldAt:      now,
	}, nil
}

// ReleaseSale is idempotent: a ticket whose version no longer matches is ignored.
func (inv *Inventory) ReleaseSale(ctx context.Context, ticket domain.SaleTicket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()

	item, ok := inv.items[ticket.ItemRef]
	if !ok || item.Status != domain.ItemSold || item.Version != ticket.Version {
		return nil
	}
	item.Status = ticket.PriorStatus
	item.Version++
	item.UpdatedAt = inv.now().UTC()
	inv.items[ticket.ItemRef] = item
	return nil
}

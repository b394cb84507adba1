package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
)

const defaultReleaseTimeout = 5 * time.Second

// ticketArena holds the sale tickets acquired while building one order.
// Whatever it holds when the workflow fails is released in reverse order.
type ticketArena struct {
	BaseService
	inventory      gateways.InventoryGateway
	releaseTimeout time.Duration
	tickets        []domain.SaleTicket
}

func newTicketArena(inventory gateways.InventoryGateway, releaseTimeout time.Duration) *ticketArena {
	if releaseTimeout <= 0 {
		releaseTimeout = defaultReleaseTimeout
	}
	return &ticketArena{inventory: inventory, releaseTimeout: releaseTimeout}
}

// acquire sells every item or none. On the first conflict the remaining
// items are probed so the error names every unsellable item, and the
// tickets taken so far stay in the arena for release.
func (a *ticketArena) acquire(ctx context.Context, itemRefs []string, actorID string) error {
	for i, ref := range itemRefs {
		ticket, err := a.inventory.TrySell(ctx, ref, actorID)
		if err == nil {
			a.tickets = append(a.tickets, ticket)
			continue
		}
		if apperrors.KindOf(err) != apperrors.KindInventoryConflict {
			return storageErr(ctx, err, "inventory transition failed")
		}

		conflicts := []string{ref}
		for _, rest := range itemRefs[i+1:] {
			item, probeErr := a.inventory.GetItem(ctx, rest)
			if probeErr != nil || item == nil || !item.Status.IsSellable() {
				conflicts = append(conflicts, rest)
			}
		}
		a.LogWarn(ctx, "Inventory conflict while selling order items",
			slog.Any("items", conflicts),
			slog.Int("acquired", len(a.tickets)))
		return apperrors.NewInventoryConflictError(conflicts, "inventory items are not available for sale")
	}
	return nil
}

func (a *ticketArena) itemRefs() []string {
	refs := make([]string, len(a.tickets))
	for i, t := range a.tickets {
		refs[i] = t.ItemRef
	}
	return refs
}

// releaseAll undoes every held ticket. It runs detached from the request
// context so a cancelled or expired request still compensates.
func (a *ticketArena) releaseAll(ctx context.Context) {
	if len(a.tickets) == 0 {
		return
	}
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.releaseTimeout)
	defer cancel()

	for i := len(a.tickets) - 1; i >= 0; i-- {
		ticket := a.tickets[i]
		if err := a.inventory.ReleaseSale(releaseCtx, ticket); err != nil {
			a.LogError(ctx, err, "Failed to release sale ticket",
				slog.String("item_ref", ticket.ItemRef),
				slog.String("ticket_id", ticket.TicketID))
		}
	}
	a.LogInfo(ctx, "Released sale tickets", slog.Int("count", len(a.tickets)))
	a.tickets = nil
}

package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxInventoryGateway transitions rows of inventory_items. Each transition is
// a single conditional UPDATE, so two sellers can never both succeed.
type PgxInventoryGateway struct {
	BaseRepository
	now func() time.Time
}

// NewInventoryGateway creates the Postgres-backed inventory gateway.
func NewInventoryGateway(pool *pgxpool.Pool) gateways.InventoryGateway {
	return &PgxInventoryGateway{BaseRepository: BaseRepository{Pool: pool}, now: time.Now}
}

var _ gateways.InventoryGateway = (*PgxInventoryGateway)(nil)

// GetItem reads the current status and version of an item.
func (g *PgxInventoryGateway) GetItem(ctx context.Context, itemRef string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	var status string
	err := g.Pool.QueryRow(ctx, `
		SELECT item_ref, status, version, updated_at
		FROM inventory_items WHERE item_ref = $1;`, itemRef,
	).Scan(&item.ItemRef, &status, &item.Version, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("inventory item not found: " + itemRef)
		}
		return nil, dbError("failed to read inventory item", err)
	}
	item.Status = domain.ItemStatus(status)
	return &item, nil
}

// TrySell marks a sellable item sold and returns the prior status in the ticket.
func (g *PgxInventoryGateway) TrySell(ctx context.Context, itemRef, actorID string) (domain.SaleTicket, error) {
	now := g.now().UTC()
	var prior string
	var version int64
	err := g.Pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT item_ref, status FROM inventory_items WHERE item_ref = $1 FOR UPDATE
		)
		UPDATE inventory_items AS i
		SET status = 'sold', version = i.version + 1, updated_at = $2
		FROM prev
		WHERE i.item_ref = prev.item_ref AND prev.status IN ('available', 'reserved')
		RETURNING prev.status, i.version;`,
		itemRef, now,
	).Scan(&prior, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SaleTicket{}, apperrors.NewInventoryConflictError([]string{itemRef}, "inventory item is missing or not available for sale")
		}
		return domain.SaleTicket{}, dbError("failed to sell inventory item", err)
	}

	return domain.SaleTicket{
		TicketID:    uuid.NewString(),
		ItemRef:     itemRef,
		PriorStatus: domain.ItemStatus(prior),
		Version:     version,
		ActorID:     actorID,
		SoldAt:      now,
	}, nil
}

// ReleaseSale restores the prior status if the item is still sold at the
// ticket's version. A stale ticket is a no-op.
func (g *PgxInventoryGateway) ReleaseSale(ctx context.Context, ticket domain.SaleTicket) error {
	_, err := g.Pool.Exec(ctx, `
		UPDATE inventory_items
		SET status = $1, version = version + 1, updated_at = $2
		WHERE item_ref = $3 AND status = 'sold' AND version = $4;`,
		string(ticket.PriorStatus), g.now().UTC(), ticket.ItemRef, ticket.Version,
	)
	if err != nil {
		return dbError("failed to release inventory item", err)
	}
	return nil
}

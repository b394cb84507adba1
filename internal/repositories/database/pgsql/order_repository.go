package pgsql

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	"github.com/SscSPs/resale_settlement/internal/models"
	"github.com/SscSPs/resale_settlement/internal/utils/mapping"
	"github.com/SscSPs/resale_settlement/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxOrderRepository stores orders with their line items. Payment records
// live in settlement_records and are written in the same transaction.
type PgxOrderRepository struct {
	BaseRepository
}

func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepositoryFacade {
	return &PgxOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OrderRepositoryFacade = (*PgxOrderRepository)(nil)

var orderColumns = []string{
	"order_id", "client_id", "customer_ref", "customer_display", "vendor_ref", "vendor_display",
	"total_usd", "total_paid_usd", "payment_status", "shipping_info", "observations",
	"created_at", "created_by", "last_updated_at", "last_updated_by",
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var m models.Order
	err := row.Scan(
		&m.OrderID, &m.ClientID, &m.CustomerRef, &m.CustomerDisplay, &m.VendorRef, &m.VendorDisplay,
		&m.TotalUSD, &m.TotalPaidUSD, &m.PaymentStatus, &m.ShippingInfo, &m.Observations,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveOrder inserts the order, its line items, its settlement records and
// the optional debt in one transaction.
func (r *PgxOrderRepository) SaveOrder(ctx context.Context, order domain.Order, records []domain.SettlementRecord, debt *domain.Debt) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		m := mapping.ToModelOrder(order)
		insertOrder, args, err := psql.Insert("orders").Columns(orderColumns...).Values(
			m.OrderID, m.ClientID, m.CustomerRef, m.CustomerDisplay, m.VendorRef, m.VendorDisplay,
			m.TotalUSD, m.TotalPaidUSD, m.PaymentStatus, m.ShippingInfo, m.Observations,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		).ToSql()
		if err != nil {
			return apperrors.NewStorageFailureError("failed to build order insert", err)
		}
		if _, err := tx.Exec(ctx, insertOrder, args...); err != nil {
			return dbError("failed to insert order "+m.OrderID, err)
		}

		batch := &pgx.Batch{}
		const lineItemQuery = `
			INSERT INTO line_items (line_item_id, order_id, inventory_item_ref, sale_price_usd, position)
			VALUES ($1, $2, $3, $4, $5);`
		for i, li := range order.LineItems {
			ml := mapping.ToModelLineItem(li, i)
			batch.Queue(lineItemQuery, ml.LineItemID, ml.OrderID, ml.InventoryItemRef, ml.SalePriceUSD, ml.Position)
		}
		queueSettlementRecords(batch, records)
		if debt != nil {
			queueDebtInsert(batch, *debt)
		}

		// Close reports the first failing statement in the batch.
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return dbError("failed to insert order details for "+m.OrderID, err)
		}
		return nil
	})
}

// FindOrderByID retrieves an order with its line items and allocations.
func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, clientID, orderID string) (*domain.Order, error) {
	query, args, err := psql.Select(orderColumns...).From("orders").
		Where(sq.Eq{"client_id": clientID, "order_id": orderID}).ToSql()
	if err != nil {
		return nil, apperrors.NewStorageFailureError("failed to build order query", err)
	}

	m, err := scanOrder(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewOrderNotFoundError(orderID)
		}
		return nil, dbError("failed to find order", err)
	}

	orders := []domain.Order{mapping.ToDomainOrder(m)}
	if err := r.attachDetails(ctx, clientID, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListOrders returns a newest-first page using a (created_at, order_id) keyset.
func (r *PgxOrderRepository) ListOrders(ctx context.Context, clientID string, filter domain.OrderFilter) ([]domain.Order, *string, error) {
	limit := pagination.ClampLimit(filter.Limit)
	stmt := psql.Select(orderColumns...).From("orders").Where(sq.Eq{"client_id": clientID})
	if filter.PaymentStatus != nil {
		stmt = stmt.Where(sq.Eq{"payment_status": string(*filter.PaymentStatus)})
	}
	if filter.CustomerRef != nil {
		stmt = stmt.Where(sq.Eq{"customer_ref": *filter.CustomerRef})
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		stmt = stmt.Where(sq.Expr("(created_at, order_id) < (?, ?)", cursor.CreatedAt, cursor.ID))
	}
	query, args, err := stmt.OrderBy("created_at DESC", "order_id DESC").Limit(uint64(limit + 1)).ToSql()
	if err != nil {
		return nil, nil, apperrors.NewStorageFailureError("failed to build order list query", err)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, dbError("failed to list orders", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		m, err := scanOrder(rows)
		if err != nil {
			return nil, nil, dbError("failed to scan order", err)
		}
		orders = append(orders, mapping.ToDomainOrder(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, dbError("error iterating orders", err)
	}

	var nextToken *string
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.OrderID)
		nextToken = &token
	}

	if err := r.attachDetails(ctx, clientID, orders); err != nil {
		return nil, nil, err
	}
	return orders, nextToken, nil
}

// attachDetails loads line items and allocations for a page of orders with
// one query each.
func (r *PgxOrderRepository) attachDetails(ctx context.Context, clientID string, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
		index[o.OrderID] = i
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT line_item_id, order_id, inventory_item_ref, sale_price_usd, position
		FROM line_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position;`, ids)
	if err != nil {
		return dbError("failed to load line items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ml models.LineItem
		if err := rows.Scan(&ml.LineItemID, &ml.OrderID, &ml.InventoryItemRef, &ml.SalePriceUSD, &ml.Position); err != nil {
			return dbError("failed to scan line item", err)
		}
		i := index[ml.OrderID]
		orders[i].LineItems = append(orders[i].LineItems, mapping.ToDomainLineItem(ml))
	}
	if err := rows.Err(); err != nil {
		return dbError("error iterating line items", err)
	}

	records, err := listSettlementRecords(ctx, r.Pool, clientID, domain.TargetOrder, ids)
	if err != nil {
		return err
	}
	byOrder := make(map[string][]domain.SettlementRecord, len(orders))
	for _, rec := range records {
		byOrder[rec.TargetRef] = append(byOrder[rec.TargetRef], rec)
	}
	for i := range orders {
		orders[i].Allocations = mapping.RecordsToAllocations(byOrder[orders[i].OrderID])
	}
	return nil
}

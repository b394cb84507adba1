package pgsql

import (
	"context"
	"errors"
	"time"

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

// PgxDebtRepository implements the debt ledger. Writes lock the debt row
// with SELECT ... FOR UPDATE, which serializes settlements per debt.
type PgxDebtRepository struct {
	BaseRepository
}

func newPgxDebtRepository(pool *pgxpool.Pool) portsrepo.DebtRepositoryFacade {
	return &PgxDebtRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DebtRepositoryFacade = (*PgxDebtRepository)(nil)

var debtColumns = []string{
	"debt_id", "order_id", "client_id", "customer_ref", "original_usd", "remaining_usd", "status", "due_date",
	"created_at", "created_by", "last_updated_at", "last_updated_by",
}

const insertDebt = `
	INSERT INTO debts (debt_id, order_id, client_id, customer_ref, original_usd, remaining_usd, status, due_date,
		created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

func queueDebtInsert(batch *pgx.Batch, debt domain.Debt) {
	m := mapping.ToModelDebt(debt)
	batch.Queue(insertDebt,
		m.DebtID, m.OrderID, m.ClientID, m.CustomerRef, m.OriginalUSD, m.RemainingUSD, m.Status, m.DueDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
}

func scanDebt(row pgx.Row) (models.Debt, error) {
	var m models.Debt
	err := row.Scan(
		&m.DebtID, &m.OrderID, &m.ClientID, &m.CustomerRef, &m.OriginalUSD, &m.RemainingUSD, &m.Status, &m.DueDate,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxDebtRepository) findOne(ctx context.Context, q pgx.Tx, where sq.Eq, forUpdate bool, notFoundRef string) (*domain.Debt, error) {
	stmt := psql.Select(debtColumns...).From("debts").Where(where)
	if forUpdate {
		stmt = stmt.Suffix("FOR UPDATE")
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, apperrors.NewStorageFailureError("failed to build debt query", err)
	}

	var row pgx.Row
	if q != nil {
		row = q.QueryRow(ctx, query, args...)
	} else {
		row = r.Pool.QueryRow(ctx, query, args...)
	}
	m, err := scanDebt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDebtNotFoundError(notFoundRef)
		}
		return nil, dbError("failed to find debt", err)
	}
	debt := mapping.ToDomainDebt(m)
	return &debt, nil
}

// FindDebtByID retrieves a debt by id.
func (r *PgxDebtRepository) FindDebtByID(ctx context.Context, clientID, debtID string) (*domain.Debt, error) {
	return r.findOne(ctx, nil, sq.Eq{"client_id": clientID, "debt_id": debtID}, false, debtID)
}

// FindDebtByOrderID retrieves the debt opened for an order.
func (r *PgxDebtRepository) FindDebtByOrderID(ctx context.Context, clientID, orderID string) (*domain.Debt, error) {
	return r.findOne(ctx, nil, sq.Eq{"client_id": clientID, "order_id": orderID}, false, orderID)
}

// ListDebts returns a newest-first page using a (created_at, debt_id) keyset.
func (r *PgxDebtRepository) ListDebts(ctx context.Context, clientID string, filter domain.DebtFilter) ([]domain.Debt, *string, error) {
	limit := pagination.ClampLimit(filter.Limit)
	stmt := psql.Select(debtColumns...).From("debts").Where(sq.Eq{"client_id": clientID})
	if filter.Status != nil {
		stmt = stmt.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.CustomerRef != nil {
		stmt = stmt.Where(sq.Eq{"customer_ref": *filter.CustomerRef})
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		stmt = stmt.Where(sq.Expr("(created_at, debt_id) < (?, ?)", cursor.CreatedAt, cursor.ID))
	}
	query, args, err := stmt.OrderBy("created_at DESC", "debt_id DESC").Limit(uint64(limit + 1)).ToSql()
	if err != nil {
		return nil, nil, apperrors.NewStorageFailureError("failed to build debt list query", err)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, dbError("failed to list debts", err)
	}
	defer rows.Close()

	debts := make([]domain.Debt, 0, limit)
	for rows.Next() {
		m, err := scanDebt(rows)
		if err != nil {
			return nil, nil, dbError("failed to scan debt", err)
		}
		debts = append(debts, mapping.ToDomainDebt(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, dbError("error iterating debts", err)
	}

	var nextToken *string
	if len(debts) > limit {
		debts = debts[:limit]
		last := debts[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.DebtID)
		nextToken = &token
	}
	return debts, nextToken, nil
}

// SettleDebt locks the debt row, lets apply compute the settlement, and
// writes the records, the debt and the order status before committing.
func (r *PgxDebtRepository) SettleDebt(ctx context.Context, clientID, debtID string, apply domain.DebtSettlementFunc) (*domain.DebtSettlement, error) {
	var settlement *domain.DebtSettlement
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		locked, err := r.findOne(ctx, tx, sq.Eq{"client_id": clientID, "debt_id": debtID}, true, debtID)
		if err != nil {
			return err
		}

		settlement, err = apply(ctx, *locked)
		if err != nil {
			return err
		}

		m := mapping.ToModelDebt(settlement.Debt)
		batch := &pgx.Batch{}
		batch.Queue(`
			UPDATE debts
			SET remaining_usd = $1, status = $2, last_updated_at = $3, last_updated_by = $4
			WHERE debt_id = $5;`,
			m.RemainingUSD, m.Status, m.LastUpdatedAt, m.LastUpdatedBy, m.DebtID,
		)
		queueSettlementRecords(batch, settlement.Records)
		batch.Queue(`
			UPDATE orders
			SET payment_status = $1, total_paid_usd = total_paid_usd + $2, last_updated_at = $3, last_updated_by = $4
			WHERE order_id = $5 AND client_id = $6;`,
			string(settlement.OrderPaymentStatus), settlement.AppliedUSD, m.LastUpdatedAt, m.LastUpdatedBy,
			locked.OrderID, clientID,
		)

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return dbError("failed to write settlement for debt "+debtID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// CancelDebt moves an active debt to cancelled.
func (r *PgxDebtRepository) CancelDebt(ctx context.Context, clientID, debtID, actorID string, at time.Time) (*domain.Debt, error) {
	var cancelled *domain.Debt
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		debt, err := r.findOne(ctx, tx, sq.Eq{"client_id": clientID, "debt_id": debtID}, true, debtID)
		if err != nil {
			return err
		}
		if !debt.IsOpen() {
			return apperrors.NewDebtAlreadySettledError(debtID, string(debt.Status))
		}
		debt.Status = domain.DebtCancelled
		debt.Touch(actorID, at)

		if _, err := tx.Exec(ctx, `
			UPDATE debts SET status = $1, last_updated_at = $2, last_updated_by = $3
			WHERE debt_id = $4;`,
			string(debt.Status), debt.LastUpdatedAt, debt.LastUpdatedBy, debtID,
		); err != nil {
			return dbError("failed to cancel debt", err)
		}
		cancelled = debt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

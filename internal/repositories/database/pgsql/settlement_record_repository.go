package pgsql

import (
	"context"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	"github.com/SscSPs/resale_settlement/internal/models"
	"github.com/SscSPs/resale_settlement/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSettlementRecordRepository reads the append-only payment history.
type PgxSettlementRecordRepository struct {
	BaseRepository
}

func newPgxSettlementRecordRepository(pool *pgxpool.Pool) portsrepo.SettlementRecordReader {
	return &PgxSettlementRecordRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SettlementRecordReader = (*PgxSettlementRecordRepository)(nil)

const settlementRecordColumns = `
	record_id, client_id, target_type, target_ref, method_code, native_amount, currency,
	rate_snapshot, usd_equivalent, surplus_usd, notes, position, created_at, created_by`

const insertSettlementRecord = `
	INSERT INTO settlement_records (` + settlementRecordColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`

func scanSettlementRecord(row pgx.Row) (models.SettlementRecord, error) {
	var m models.SettlementRecord
	err := row.Scan(
		&m.RecordID, &m.ClientID, &m.TargetType, &m.TargetRef, &m.MethodCode, &m.NativeAmount, &m.Currency,
		&m.RateSnapshot, &m.USDEquivalent, &m.SurplusUSD, &m.Notes, &m.Position, &m.CreatedAt, &m.CreatedBy,
	)
	return m, err
}

// queueSettlementRecords adds one insert per record to the batch.
func queueSettlementRecords(batch *pgx.Batch, records []domain.SettlementRecord) {
	for i, rec := range records {
		m := mapping.ToModelSettlementRecord(rec, i)
		batch.Queue(insertSettlementRecord,
			m.RecordID, m.ClientID, m.TargetType, m.TargetRef, m.MethodCode, m.NativeAmount, m.Currency,
			m.RateSnapshot, m.USDEquivalent, m.SurplusUSD, m.Notes, m.Position, m.CreatedAt, m.CreatedBy,
		)
	}
}

// ListSettlementRecords returns the records for one order or debt in the order they were written.
func (r *PgxSettlementRecordRepository) ListSettlementRecords(ctx context.Context, clientID string, target domain.SettlementTarget, targetRef string) ([]domain.SettlementRecord, error) {
	return listSettlementRecords(ctx, r.Pool, clientID, target, []string{targetRef})
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listSettlementRecords(ctx context.Context, q querier, clientID string, target domain.SettlementTarget, targetRefs []string) ([]domain.SettlementRecord, error) {
	query := `SELECT ` + settlementRecordColumns + `
		FROM settlement_records
		WHERE client_id = $1 AND target_type = $2 AND target_ref = ANY($3)
		ORDER BY created_at, position;`

	rows, err := q.Query(ctx, query, clientID, string(target), targetRefs)
	if err != nil {
		return nil, dbError("failed to list settlement records", err)
	}
	defer rows.Close()

	records := make([]domain.SettlementRecord, 0)
	for rows.Next() {
		m, err := scanSettlementRecord(rows)
		if err != nil {
			return nil, dbError("failed to scan settlement record", err)
		}
		records = append(records, mapping.ToDomainSettlementRecord(m))
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating settlement records", err)
	}
	return records, nil
}

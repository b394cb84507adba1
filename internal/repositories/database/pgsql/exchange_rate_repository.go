package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	"github.com/SscSPs/resale_settlement/internal/models"
	"github.com/SscSPs/resale_settlement/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository stores one active rate per (client, method).
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const selectExchangeRate = `
	SELECT client_id, method_code, rate, updated_at, updated_by
	FROM exchange_rates`

func scanExchangeRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(&m.ClientID, &m.MethodCode, &m.Rate, &m.UpdatedAt, &m.UpdatedBy)
	return m, err
}

// FindExchangeRate retrieves the active rate for a method.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, error) {
	query := selectExchangeRate + ` WHERE client_id = $1 AND method_code = $2;`

	modelRate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, clientID, string(method)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, dbError("failed to find exchange rate", err)
	}

	rate := mapping.ToDomainExchangeRate(modelRate)
	return &rate, nil
}

// ListExchangeRates retrieves every rate of a client.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context, clientID string) ([]domain.ExchangeRateEntry, error) {
	query := selectExchangeRate + ` WHERE client_id = $1 ORDER BY method_code;`

	rows, err := r.Pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, dbError("failed to list exchange rates", err)
	}
	defer rows.Close()

	rates := make([]domain.ExchangeRateEntry, 0)
	for rows.Next() {
		modelRate, err := scanExchangeRate(rows)
		if err != nil {
			return nil, dbError("failed to scan exchange rate", err)
		}
		rates = append(rates, mapping.ToDomainExchangeRate(modelRate))
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating exchange rates", err)
	}
	return rates, nil
}

// SaveExchangeRate inserts or replaces the active rate.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRateEntry) error {
	m := mapping.ToModelExchangeRate(rate)
	const query = `
		INSERT INTO exchange_rates (client_id, method_code, rate, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id, method_code)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by;`

	if _, err := r.Pool.Exec(ctx, query, m.ClientID, m.MethodCode, m.Rate, m.UpdatedAt, m.UpdatedBy); err != nil {
		return dbError("failed to save exchange rate", err)
	}
	return nil
}

// InsertExchangeRateIfAbsent inserts the rate unless one already exists.
func (r *PgxExchangeRateRepository) InsertExchangeRateIfAbsent(ctx context.Context, rate domain.ExchangeRateEntry) (bool, error) {
	m := mapping.ToModelExchangeRate(rate)
	const query = `
		INSERT INTO exchange_rates (client_id, method_code, rate, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id, method_code) DO NOTHING;`

	tag, err := r.Pool.Exec(ctx, query, m.ClientID, m.MethodCode, m.Rate, m.UpdatedAt, m.UpdatedBy)
	if err != nil {
		return false, dbError("failed to seed exchange rate", err)
	}
	return tag.RowsAffected() == 1, nil
}

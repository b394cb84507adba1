package pgsql

import (
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo:     newPgxExchangeRateRepository(dbPool),
		OrderRepo:            newPgxOrderRepository(dbPool),
		DebtRepo:             newPgxDebtRepository(dbPool),
		SettlementRecordRepo: newPgxSettlementRecordRepository(dbPool),
	}
}

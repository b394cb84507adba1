package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
)

// DebtReader defines read operations for debts
type DebtReader interface {
	FindDebtByID(ctx context.Context, clientID, debtID string) (*domain.Debt, error)
	FindDebtByOrderID(ctx context.Context, clientID, orderID string) (*domain.Debt, error)
	ListDebts(ctx context.Context, clientID string, filter domain.DebtFilter) ([]domain.Debt, *string, error)
}

// DebtWriter defines write operations for debts
type DebtWriter interface {
	// SettleDebt locks the debt, hands the locked state to apply, then stores the
	// returned records, the updated debt and the owning order's payment status
	// atomically. Concurrent calls for the same debt are serialized.
	SettleDebt(ctx context.Context, clientID, debtID string, apply domain.DebtSettlementFunc) (*domain.DebtSettlement, error)
	// CancelDebt moves an active debt to cancelled under the same lock.
	CancelDebt(ctx context.Context, clientID, debtID, actorID string, at time.Time) (*domain.Debt, error)
}

// DebtRepositoryFacade combines all debt-related repository interfaces
type DebtRepositoryFacade interface {
	DebtReader
	DebtWriter
}

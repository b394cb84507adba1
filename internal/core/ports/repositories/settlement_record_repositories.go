package repositories

import (
	"context"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
)

// SettlementRecordReader reads the append-only payment history. Records are
// only ever written by OrderWriter.SaveOrder and DebtWriter.SettleDebt.
type SettlementRecordReader interface {
	ListSettlementRecords(ctx context.Context, clientID string, target domain.SettlementTarget, targetRef string) ([]domain.SettlementRecord, error)
}

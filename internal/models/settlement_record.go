package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementRecord is a row of the append-only settlement_records table.
type SettlementRecord struct {
	RecordID      string          `db:"record_id"`
	ClientID      string          `db:"client_id"`
	TargetType    string          `db:"target_type"`
	TargetRef     string          `db:"target_ref"`
	MethodCode    string          `db:"method_code"`
	NativeAmount  decimal.Decimal `db:"native_amount"`
	Currency      string          `db:"currency"`
	RateSnapshot  decimal.Decimal `db:"rate_snapshot"`
	USDEquivalent decimal.Decimal `db:"usd_equivalent"`
	SurplusUSD    decimal.Decimal `db:"surplus_usd"`
	Notes         string          `db:"notes"`
	Position      int             `db:"position"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}

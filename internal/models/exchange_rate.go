package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a row of exchange_rates, keyed by (client_id, method_code).
type ExchangeRate struct {
	ClientID   string          `db:"client_id"`
	MethodCode string          `db:"method_code"`
	Rate       decimal.Decimal `db:"rate"`
	UpdatedAt  time.Time       `db:"updated_at"`
	UpdatedBy  string          `db:"updated_by"`
}

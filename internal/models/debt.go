package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt is a row of the debts table.
type Debt struct {
	DebtID       string          `db:"debt_id"`
	OrderID      string          `db:"order_id"`
	ClientID     string          `db:"client_id"`
	CustomerRef  string          `db:"customer_ref"`
	OriginalUSD  decimal.Decimal `db:"original_usd"`
	RemainingUSD decimal.Decimal `db:"remaining_usd"`
	Status       string          `db:"status"`
	DueDate      time.Time       `db:"due_date"`
	AuditFields
}

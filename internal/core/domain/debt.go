package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus is the lifecycle state of a debt. Settled and cancelled are terminal.
type DebtStatus string

const (
	DebtActive    DebtStatus = "active"
	DebtSettled   DebtStatus = "settled"
	DebtCancelled DebtStatus = "cancelled"
)

// Debt tracks what is still owed on an order that was underpaid at creation.
// 0 <= RemainingUSD <= OriginalUSD, and RemainingUSD == 0 implies settled.
type Debt struct {
	DebtID       string          `json:"debtId"`
	OrderID      string          `json:"orderId"`
	ClientID     string          `json:"clientId"`
	CustomerRef  string          `json:"customerRef"`
	OriginalUSD  decimal.Decimal `json:"originalUsd"`
	RemainingUSD decimal.Decimal `json:"remainingUsd"`
	Status       DebtStatus      `json:"status"`
	DueDate      time.Time       `json:"dueDate"`
	AuditFields
}

// IsOpen reports whether the debt still accepts settlements.
func (d Debt) IsOpen() bool {
	return d.Status == DebtActive
}

// DebtSettlement is the outcome computed while the debt row is locked.
type DebtSettlement struct {
	Debt               Debt
	Records            []SettlementRecord
	AppliedUSD         decimal.Decimal
	OrderPaymentStatus PaymentStatus
}

// DebtSettlementFunc computes a settlement against the locked debt. It runs
// inside the repository's critical section for that debt and must not touch
// storage itself.
type DebtSettlementFunc func(ctx context.Context, locked Debt) (*DebtSettlement, error)

// DebtSettlementResult is returned to callers of the settlement workflow.
type DebtSettlementResult struct {
	Debt         Debt
	Records      []SettlementRecord
	TotalPaidUSD decimal.Decimal
	SurplusUSD   decimal.Decimal
}

// DebtFilter narrows debt listings.
type DebtFilter struct {
	Status      *DebtStatus
	CustomerRef *string
	Limit       int
	NextToken   *string
}

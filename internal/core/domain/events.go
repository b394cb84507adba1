package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCommitted = "order.committed"
	EventDebtSettled    = "debt.settled"
)

// OrderCommittedEvent is published after an order transaction commits.
type OrderCommittedEvent struct {
	OrderID       string          `json:"orderId"`
	ClientID      string          `json:"clientId"`
	TotalUSD      decimal.Decimal `json:"totalUsd"`
	TotalPaidUSD  decimal.Decimal `json:"totalPaidUsd"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	DebtID        *string         `json:"debtId,omitempty"`
	ItemRefs      []string        `json:"itemRefs"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// DebtSettledEvent is published when a debt reaches settled.
type DebtSettledEvent struct {
	DebtID      string          `json:"debtId"`
	OrderID     string          `json:"orderId"`
	ClientID    string          `json:"clientId"`
	OriginalUSD decimal.Decimal `json:"originalUsd"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

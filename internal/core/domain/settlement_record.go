package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementTarget says whether a record pays an order or a debt.
type SettlementTarget string

const (
	TargetOrder SettlementTarget = "order"
	TargetDebt  SettlementTarget = "debt"
)

// SettlementRecord is append-only payment history.
type SettlementRecord struct {
	RecordID      string            `json:"recordId"`
	ClientID      string            `json:"clientId"`
	TargetType    SettlementTarget  `json:"targetType"`
	TargetRef     string            `json:"targetRef"`
	MethodCode    PaymentMethodCode `json:"methodCode"`
	NativeAmount  decimal.Decimal   `json:"nativeAmount"`
	Currency      CurrencyCode      `json:"currency"`
	RateSnapshot  decimal.Decimal   `json:"rateSnapshot"`
	USDEquivalent decimal.Decimal   `json:"usdEquivalent"`
	SurplusUSD    decimal.Decimal   `json:"surplusUsd"`
	Notes         string            `json:"notes"`
	CreatedAt     time.Time         `json:"createdAt"`
	CreatedBy     string            `json:"createdBy"`
}

// ToAllocation rebuilds the allocation view of a persisted record.
func (r SettlementRecord) ToAllocation() PaymentAllocation {
	return PaymentAllocation{
		MethodCode:    r.MethodCode,
		NativeAmount:  NewMoney(r.NativeAmount, r.Currency),
		RateSnapshot:  r.RateSnapshot,
		USDEquivalent: USD(r.USDEquivalent),
	}
}

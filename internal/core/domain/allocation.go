package domain

import "github.com/shopspring/decimal"

// AllocationInput is one proposed (method, amount) pair before conversion.
// Currency must match the method's native currency.
type AllocationInput struct {
	MethodCode   PaymentMethodCode
	NativeAmount decimal.Decimal
	Currency     CurrencyCode
}

// PaymentAllocation is a converted allocation. RateSnapshot is the rate read
// from the registry at allocation time and never changes afterwards.
type PaymentAllocation struct {
	MethodCode         PaymentMethodCode `json:"methodCode"`
	NativeAmount       Money             `json:"nativeAmount"`
	RateSnapshot       decimal.Decimal   `json:"rateSnapshot"`
	USDEquivalent      Money             `json:"usdEquivalent"`
	LocalDisplayAmount Money             `json:"localDisplayAmount"`
}

// AllocationOutcome classifies total paid against the amount due.
type AllocationOutcome string

const (
	OutcomeFullyPaid AllocationOutcome = "fully_paid"
	OutcomeShortfall AllocationOutcome = "shortfall"
	OutcomeOverpay   AllocationOutcome = "overpay"
)

// AllocationResult is what the allocation validator produces.
type AllocationResult struct {
	Allocations  []PaymentAllocation
	AmountDueUSD decimal.Decimal
	TotalPaidUSD decimal.Decimal
	Outcome      AllocationOutcome
	ShortfallUSD decimal.Decimal
	OverpayUSD   decimal.Decimal
}

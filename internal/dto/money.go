package dto

import (
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyResponse is every monetary value in API responses: an amount and its currency.
type MoneyResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ToMoneyResponse converts a domain.Money value.
func ToMoneyResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount.Round(domain.MoneyPlaces), Currency: string(m.Currency)}
}

// USDResponse tags a bare USD amount.
func USDResponse(amount decimal.Decimal) MoneyResponse {
	return ToMoneyResponse(domain.USD(amount))
}

// MoneyRequest is every monetary input: an amount and its currency.
type MoneyRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"required,oneof=USD ARS USDT"`
}

// USDRequest builds a USD-denominated input.
func USDRequest(amount decimal.Decimal) MoneyRequest {
	return MoneyRequest{Amount: amount, Currency: string(domain.CurrencyUSD)}
}

// AllocationRequest is one proposed payment in an order or debt settlement.
// The amount is in the method's native currency.
type AllocationRequest struct {
	MethodCode   string       `json:"methodCode" binding:"required,payment_method"`
	NativeAmount MoneyRequest `json:"nativeAmount"`
}

// AllocationResponse is a converted allocation with its pinned rate.
type AllocationResponse struct {
	MethodCode         string          `json:"methodCode"`
	NativeAmount       MoneyResponse   `json:"nativeAmount"`
	RateSnapshot       decimal.Decimal `json:"rateSnapshot"`
	USDEquivalent      MoneyResponse   `json:"usdEquivalent"`
	LocalDisplayAmount *MoneyResponse  `json:"localDisplayAmount,omitempty"`
}

// ToAllocationInputs converts request allocations to domain inputs.
func ToAllocationInputs(reqs []AllocationRequest) []domain.AllocationInput {
	inputs := make([]domain.AllocationInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = domain.AllocationInput{
			MethodCode:   domain.PaymentMethodCode(r.MethodCode),
			NativeAmount: r.NativeAmount.Amount,
			Currency:     domain.CurrencyCode(r.NativeAmount.Currency),
		}
	}
	return inputs
}

// ToAllocationResponse converts a domain allocation.
func ToAllocationResponse(a domain.PaymentAllocation) AllocationResponse {
	resp := AllocationResponse{
		MethodCode:    string(a.MethodCode),
		NativeAmount:  ToMoneyResponse(a.NativeAmount),
		RateSnapshot:  a.RateSnapshot,
		USDEquivalent: ToMoneyResponse(a.USDEquivalent),
	}
	if a.LocalDisplayAmount.Currency != "" {
		display := ToMoneyResponse(a.LocalDisplayAmount)
		resp.LocalDisplayAmount = &display
	}
	return resp
}

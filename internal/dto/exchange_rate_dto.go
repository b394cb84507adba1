package dto

import (
	"time"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetExchangeRateRequest defines the body for replacing a method's active rate.
type SetExchangeRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ClientID       string          `json:"clientId"`
	MethodCode     string          `json:"methodCode"`
	NativeCurrency string          `json:"nativeCurrency"`
	Rule           string          `json:"rule"`
	Rate           decimal.Decimal `json:"rate"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	UpdatedBy      string          `json:"updatedBy"`
}

// ListExchangeRatesResponse wraps a list of rates.
type ListExchangeRatesResponse struct {
	Rates []ExchangeRateResponse `json:"rates"`
}

// ToExchangeRateResponse converts a domain.ExchangeRateEntry to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ExchangeRateEntry) ExchangeRateResponse {
	resp := ExchangeRateResponse{
		ClientID:   rate.ClientID,
		MethodCode: string(rate.MethodCode),
		Rate:       rate.Rate,
		UpdatedAt:  rate.UpdatedAt,
		UpdatedBy:  rate.UpdatedBy,
	}
	if m, ok := domain.LookupPaymentMethod(rate.MethodCode); ok {
		resp.NativeCurrency = string(m.NativeCurrency)
		resp.Rule = string(m.Rule)
	}
	return resp
}

// ToListExchangeRatesResponse converts a slice of rates.
func ToListExchangeRatesResponse(rates []domain.ExchangeRateEntry) ListExchangeRatesResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return ListExchangeRatesResponse{Rates: responses}
}

package mapping

import (
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/models"
)

// ToModelExchangeRate converts a domain.ExchangeRateEntry to a models.ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRateEntry) models.ExchangeRate {
	return models.ExchangeRate{
		ClientID:   d.ClientID,
		MethodCode: string(d.MethodCode),
		Rate:       d.Rate,
		UpdatedAt:  d.UpdatedAt,
		UpdatedBy:  d.UpdatedBy,
	}
}

// ToDomainExchangeRate converts a models.ExchangeRate to a domain.ExchangeRateEntry
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRateEntry {
	return domain.ExchangeRateEntry{
		ClientID:   m.ClientID,
		MethodCode: domain.PaymentMethodCode(m.MethodCode),
		Rate:       m.Rate,
		UpdatedAt:  m.UpdatedAt,
		UpdatedBy:  m.UpdatedBy,
	}
}

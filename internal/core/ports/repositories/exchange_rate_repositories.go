package repositories

import (
	"context"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindExchangeRate returns the active rate or an ErrNotFound error.
	FindExchangeRate(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, error)
	// ListExchangeRates returns every configured rate for a client ordered by method code.
	ListExchangeRates(ctx context.Context, clientID string) ([]domain.ExchangeRateEntry, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// SaveExchangeRate replaces the active rate for (clientID, method).
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRateEntry) error
	// InsertExchangeRateIfAbsent stores the rate only when none exists and
	// reports whether it was inserted.
	InsertExchangeRateIfAbsent(ctx context.Context, rate domain.ExchangeRateEntry) (bool, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}

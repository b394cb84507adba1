package services

import (
	"context"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc is the read side of the exchange rate registry.
type ExchangeRateReaderSvc interface {
	// GetRate fails with RateNotConfigured when the client has no rate for the method.
	GetRate(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, error)
	ListRates(ctx context.Context, clientID string) ([]domain.ExchangeRateEntry, error)
}

// ExchangeRateWriterSvc is the administrative side of the registry.
type ExchangeRateWriterSvc interface {
	// SetRate replaces the active rate. Rate snapshots already recorded are untouched.
	SetRate(ctx context.Context, clientID string, method domain.PaymentMethodCode, rate decimal.Decimal, actorID string) (*domain.ExchangeRateEntry, error)
	// SeedDefaultRates inserts configured defaults for methods with no rate
	// and returns only the entries it created.
	SeedDefaultRates(ctx context.Context, clientID, actorID string) ([]domain.ExchangeRateEntry, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}

// AllocationValidatorSvc converts proposed allocations and classifies them
// against an amount due. It never mutates state.
type AllocationValidatorSvc interface {
	Validate(ctx context.Context, clientID string, inputs []domain.AllocationInput, amountDueUSD decimal.Decimal) (*domain.AllocationResult, error)
}

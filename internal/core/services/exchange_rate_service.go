package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// exchangeRateService is the exchange rate registry. Reads go through the
// rate cache; a missing rate is always RateNotConfigured, never a fallback.
// SetRate writes the new entry through to the cache, and the cache keeps the
// entry with the latest UpdatedAt, so a read that loaded the previous row
// cannot put it back.
type exchangeRateService struct {
	BaseService
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	cache        gateways.RateCache
	cacheTTL     time.Duration
	defaultRates map[domain.PaymentMethodCode]decimal.Decimal
}

// ExchangeRateServiceOption is a functional option for configuring the exchange rate service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithRateCache puts a cache in front of rate reads.
func WithRateCache(cache gateways.RateCache, ttl time.Duration) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithDefaultRates sets the rates used by SeedDefaultRates.
func WithDefaultRates(rates map[domain.PaymentMethodCode]decimal.Decimal) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.defaultRates = rates
	}
}

// WithExchangeRateClock overrides time.Now for audit stamps.
func WithExchangeRateClock(now func() time.Time) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.now = now
	}
}

// NewExchangeRateService creates the exchange rate registry service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, options ...ExchangeRateServiceOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		rateRepo: rateRepo,
		cache:    noopRateCache{},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func validateRateKey(clientID string, method domain.PaymentMethodCode) error {
	if strings.TrimSpace(clientID) == "" {
		return apperrors.NewValidationError("client id is required")
	}
	if !method.IsValid() {
		return apperrors.NewInvalidPaymentMethodError(string(method))
	}
	return nil
}

// GetRate returns the active rate for the method.
func (s *exchangeRateService) GetRate(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, error) {
	if err := validateRateKey(clientID, method); err != nil {
		return nil, err
	}

	cached, hit, err := s.cache.Get(ctx, clientID, method)
	if err != nil {
		s.LogWarn(ctx, "Rate cache read failed, falling back to store",
			slog.String("client_id", clientID),
			slog.String("method", string(method)),
			slog.String("error", err.Error()))
	} else if hit && cached != nil {
		return cached, nil
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, clientID, method)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewRateNotConfiguredError(clientID, string(method))
		}
		s.LogError(ctx, err, "Failed to load exchange rate",
			slog.String("client_id", clientID),
			slog.String("method", string(method)))
		return nil, storageErr(ctx, err, "failed to load exchange rate")
	}
	if !rate.Rate.IsPositive() {
		return nil, apperrors.NewInvalidRateError(string(method), "stored exchange rate is not positive")
	}

	if err := s.cache.Set(ctx, *rate, s.cacheTTL); err != nil {
		s.LogWarn(ctx, "Rate cache write failed",
			slog.String("client_id", clientID),
			slog.String("method", string(method)),
			slog.String("error", err.Error()))
	}
	return rate, nil
}

// ListRates returns every configured rate for the client.
func (s *exchangeRateService) ListRates(ctx context.Context, clientID string) ([]domain.ExchangeRateEntry, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, apperrors.NewValidationError("client id is required")
	}
	rates, err := s.rateRepo.ListExchangeRates(ctx, clientID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates", slog.String("client_id", clientID))
		return nil, storageErr(ctx, err, "failed to list exchange rates")
	}
	return rates, nil
}

// SetRate replaces the active rate for the method.
func (s *exchangeRateService) SetRate(ctx context.Context, clientID string, method domain.PaymentMethodCode, rate decimal.Decimal, actorID string) (*domain.ExchangeRateEntry, error) {
	if err := validateRateKey(clientID, method); err != nil {
		return nil, err
	}
	if err := validateRate(method, rate); err != nil {
		return nil, err
	}

	entry := domain.ExchangeRateEntry{
		ClientID:   clientID,
		MethodCode: method,
		Rate:       rate,
		UpdatedAt:  s.Now(),
		UpdatedBy:  actorID,
	}
	if err := s.rateRepo.SaveExchangeRate(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate",
			slog.String("client_id", clientID),
			slog.String("method", string(method)))
		return nil, storageErr(ctx, err, "failed to save exchange rate")
	}
	if err := s.cache.Set(ctx, entry, s.cacheTTL); err != nil {
		s.LogWarn(ctx, "Rate cache write failed, evicting",
			slog.String("client_id", clientID),
			slog.String("method", string(method)),
			slog.String("error", err.Error()))
		s.evict(ctx, clientID, method)
	}

	s.LogInfo(ctx, "Exchange rate updated",
		slog.String("client_id", clientID),
		slog.String("method", string(method)),
		slog.String("rate", rate.String()))
	return &entry, nil
}

func validateRate(method domain.PaymentMethodCode, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return apperrors.NewInvalidRateError(string(method), "exchange rate must be greater than zero")
	}
	if !rate.Equal(rate.Round(domain.RatePlaces)) {
		return apperrors.NewInvalidRateError(string(method), fmt.Sprintf("exchange rate supports at most %d decimal places", domain.RatePlaces))
	}
	if !rate.LessThan(domain.MaxRate) {
		return apperrors.NewInvalidRateError(string(method), "exchange rate is too large")
	}
	return nil
}

// SeedDefaultRates inserts the configured default for each method that has
// no rate yet. Existing rates are never overwritten.
func (s *exchangeRateService) SeedDefaultRates(ctx context.Context, clientID, actorID string) ([]domain.ExchangeRateEntry, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, apperrors.NewValidationError("client id is required")
	}

	now := s.Now()
	seeded := make([]domain.ExchangeRateEntry, 0, len(s.defaultRates))
	for _, method := range domain.PaymentMethodCodes() {
		rate, ok := s.defaultRates[method]
		if !ok || validateRate(method, rate) != nil {
			continue
		}
		entry := domain.ExchangeRateEntry{
			ClientID:   clientID,
			MethodCode: method,
			Rate:       rate,
			UpdatedAt:  now,
			UpdatedBy:  actorID,
		}
		inserted, err := s.rateRepo.InsertExchangeRateIfAbsent(ctx, entry)
		if err != nil {
			s.LogError(ctx, err, "Failed to seed exchange rate",
				slog.String("client_id", clientID),
				slog.String("method", string(method)))
			return nil, storageErr(ctx, err, "failed to seed exchange rate for "+string(method))
		}
		if inserted {
			s.evict(ctx, clientID, method)
			seeded = append(seeded, entry)
		}
	}

	s.LogInfo(ctx, "Default exchange rates seeded",
		slog.String("client_id", clientID),
		slog.Int("inserted", len(seeded)))
	return seeded, nil
}

func (s *exchangeRateService) evict(ctx context.Context, clientID string, method domain.PaymentMethodCode) {
	if err := s.cache.Delete(ctx, clientID, method); err != nil {
		s.LogWarn(ctx, "Rate cache eviction failed",
			slog.String("client_id", clientID),
			slog.String("method", string(method)),
			slog.String("error", err.Error()))
	}
}

// noopRateCache is used when no cache is configured.
type noopRateCache struct{}

func (noopRateCache) Get(context.Context, string, domain.PaymentMethodCode) (*domain.ExchangeRateEntry, bool, error) {
	return nil, false, nil
}

func (noopRateCache) Set(context.Context, domain.ExchangeRateEntry, time.Duration) error {
	return nil
}

func (noopRateCache) Delete(context.Context, string, domain.PaymentMethodCode) error {
	return nil
}

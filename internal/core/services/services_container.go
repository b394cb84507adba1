package services

import (
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/SscSPs/resale_settlement/internal/platform/config"
	"github.com/shopspring/decimal"
)

// Collaborators are the gateways the services consume but do not own.
// Nil Directory, RateCache and Publisher fall back to no-op implementations.
type Collaborators struct {
	Inventory gateways.InventoryGateway
	Directory gateways.PartyDirectory
	RateCache gateways.RateCache
	Publisher gateways.EventPublisher
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps Collaborators) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	rateOpts := []ExchangeRateServiceOption{WithDefaultRates(toMethodRates(cfg.DefaultRates))}
	if deps.RateCache != nil {
		rateOpts = append(rateOpts, WithRateCache(deps.RateCache, cfg.RateCacheTTL))
	}
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, rateOpts...)

	// The validator reads rates through the registry so the cache applies.
	container.Allocation = NewAllocationValidator(container.ExchangeRate)

	orderOpts := []OrderServiceOption{
		WithDebtDueDays(cfg.DebtDueDays),
		WithReleaseTimeout(cfg.ReleaseTimeout),
	}
	debtOpts := []DebtServiceOption{}
	if deps.Directory != nil {
		orderOpts = append(orderOpts, WithPartyDirectory(deps.Directory))
	}
	if deps.Publisher != nil {
		orderOpts = append(orderOpts, WithOrderPublisher(deps.Publisher))
		debtOpts = append(debtOpts, WithDebtPublisher(deps.Publisher))
	}

	container.Order = NewOrderService(
		repos.OrderRepo,
		repos.SettlementRecordRepo,
		container.Allocation,
		deps.Inventory,
		orderOpts...,
	)
	container.Debt = NewDebtService(
		repos.DebtRepo,
		repos.SettlementRecordRepo,
		container.Allocation,
		debtOpts...,
	)

	return container
}

func toMethodRates(rates map[string]decimal.Decimal) map[domain.PaymentMethodCode]decimal.Decimal {
	out := make(map[domain.PaymentMethodCode]decimal.Decimal, len(rates))
	for code, rate := range rates {
		method := domain.PaymentMethodCode(code)
		if method.IsValid() {
			out[method] = rate
		}
	}
	return out
}

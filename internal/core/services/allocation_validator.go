package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/SscSPs/resale_settlement/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type allocationValidator struct {
	BaseService
	rates portssvc.ExchangeRateReaderSvc
}

// NewAllocationValidator creates the payment allocation validator.
func NewAllocationValidator(rates portssvc.ExchangeRateReaderSvc) portssvc.AllocationValidatorSvc {
	return &allocationValidator{rates: rates}
}

var _ portssvc.AllocationValidatorSvc = (*allocationValidator)(nil)

// Validate converts each allocation at the client's current rate and
// classifies the total against amountDueUSD. Every allocation snapshots the
// rate it was converted with, direct methods included.
func (v *allocationValidator) Validate(ctx context.Context, clientID string, inputs []domain.AllocationInput, amountDueUSD decimal.Decimal) (*domain.AllocationResult, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewNoPaymentMethodSelectedError()
	}
	if amountDueUSD.IsNegative() {
		return nil, apperrors.NewInvalidAmountError("amountDue", "amount due cannot be negative")
	}

	// Check the inputs themselves before touching the registry. Amounts are
	// rounded to cents first so a positive input cannot be stored as zero.
	rounded := make([]domain.AllocationInput, len(inputs))
	for i, in := range inputs {
		method, ok := domain.LookupPaymentMethod(in.MethodCode)
		if !ok {
			return nil, apperrors.NewInvalidPaymentMethodError(string(in.MethodCode))
		}
		if in.Currency != method.NativeCurrency {
			return nil, apperrors.NewInvalidAmountError(string(in.MethodCode),
				fmt.Sprintf("amount currency %q does not match method currency %s", in.Currency, method.NativeCurrency))
		}
		in.NativeAmount = accounting.RoundMoney(in.NativeAmount)
		if !in.NativeAmount.IsPositive() {
			return nil, apperrors.NewInvalidAmountError(string(in.MethodCode), "amount must be at least 0.01")
		}
		rounded[i] = in
	}

	rateByMethod := make(map[domain.PaymentMethodCode]decimal.Decimal, len(inputs))
	allocations := make([]domain.PaymentAllocation, 0, len(inputs))
	for _, in := range rounded {
		rate, ok := rateByMethod[in.MethodCode]
		if !ok {
			entry, err := v.rates.GetRate(ctx, clientID, in.MethodCode)
			if err != nil {
				return nil, err
			}
			rate = entry.Rate
			rateByMethod[in.MethodCode] = rate
		}

		alloc, err := convertAllocation(in, rate)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
	}

	due := accounting.RoundMoney(amountDueUSD)
	paid := accounting.SumUSD(allocations)
	outcome, shortfall, overpay := accounting.Classify(paid, due)

	v.LogDebug(ctx, "Allocations validated",
		slog.String("client_id", clientID),
		slog.Int("allocations", len(allocations)),
		slog.String("due_usd", due.StringFixed(domain.MoneyPlaces)),
		slog.String("paid_usd", paid.StringFixed(domain.MoneyPlaces)),
		slog.String("outcome", string(outcome)))

	return &domain.AllocationResult{
		Allocations:  allocations,
		AmountDueUSD: due,
		TotalPaidUSD: paid,
		Outcome:      outcome,
		ShortfallUSD: shortfall,
		OverpayUSD:   overpay,
	}, nil
}

func convertAllocation(in domain.AllocationInput, rate decimal.Decimal) (domain.PaymentAllocation, error) {
	method, _ := domain.LookupPaymentMethod(in.MethodCode)
	usd, err := accounting.ConvertToUSD(in.MethodCode, in.NativeAmount, rate)
	if err != nil {
		return domain.PaymentAllocation{}, err
	}
	display, err := accounting.LocalDisplay(in.MethodCode, in.NativeAmount, rate)
	if err != nil {
		return domain.PaymentAllocation{}, err
	}
	return domain.PaymentAllocation{
		MethodCode:         in.MethodCode,
		NativeAmount:       domain.NewMoney(in.NativeAmount, method.NativeCurrency),
		RateSnapshot:       rate,
		USDEquivalent:      domain.USD(usd),
		LocalDisplayAmount: domain.NewMoney(display, domain.LocalCurrency),
	}, nil
}

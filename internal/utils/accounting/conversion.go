package accounting

import (
	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RoundMoney rounds to cents. decimal.Round is half away from zero, which is
// round-half-up for the non-negative amounts handled here.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(domain.MoneyPlaces)
}

func lookupMethod(method domain.PaymentMethodCode) (domain.PaymentMethod, error) {
	m, ok := domain.LookupPaymentMethod(method)
	if !ok {
		return domain.PaymentMethod{}, apperrors.NewInvalidPaymentMethodError(string(method))
	}
	return m, nil
}

func checkInputs(method domain.PaymentMethodCode, amount, rate decimal.Decimal) (domain.PaymentMethod, error) {
	m, err := lookupMethod(method)
	if err != nil {
		return m, err
	}
	if !rate.IsPositive() {
		return m, apperrors.NewInvalidRateError(string(method), "exchange rate must be greater than zero")
	}
	if !amount.IsPositive() {
		return m, apperrors.NewInvalidAmountError(string(method), "amount must be greater than zero")
	}
	return m, nil
}

// ConvertToUSD returns the USD equivalent of nativeAmount paid with method at rate.
// This is the only place USD equivalents are derived.
func ConvertToUSD(method domain.PaymentMethodCode, nativeAmount, rate decimal.Decimal) (decimal.Decimal, error) {
	m, err := checkInputs(method, nativeAmount, rate)
	if err != nil {
		return decimal.Zero, err
	}
	switch m.Rule {
	case domain.RuleDivide:
		return RoundMoney(nativeAmount.Div(rate)), nil
	default:
		return RoundMoney(nativeAmount), nil
	}
}

// LocalDisplay returns the bookkeeping amount in the local currency. It is
// informational and never feeds back into totals.
func LocalDisplay(method domain.PaymentMethodCode, nativeAmount, rate decimal.Decimal) (decimal.Decimal, error) {
	m, err := checkInputs(method, nativeAmount, rate)
	if err != nil {
		return decimal.Zero, err
	}
	switch m.Rule {
	case domain.RuleDivide:
		return RoundMoney(nativeAmount), nil
	default:
		return RoundMoney(nativeAmount.Mul(rate)), nil
	}
}

// ConvertFromUSD quotes how much native currency covers usdAmount.
func ConvertFromUSD(method domain.PaymentMethodCode, usdAmount, rate decimal.Decimal) (decimal.Decimal, error) {
	m, err := checkInputs(method, usdAmount, rate)
	if err != nil {
		return decimal.Zero, err
	}
	switch m.Rule {
	case domain.RuleDivide:
		return RoundMoney(usdAmount.Mul(rate)), nil
	default:
		return RoundMoney(usdAmount), nil
	}
}

// WithinTolerance reports |a-b| <= 0.01.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(domain.MoneyTolerance)
}

// Classify compares paid against due with the money tolerance and returns
// the outcome together with the shortfall and overpay amounts.
func Classify(paid, due decimal.Decimal) (domain.AllocationOutcome, decimal.Decimal, decimal.Decimal) {
	switch {
	case WithinTolerance(paid, due):
		return domain.OutcomeFullyPaid, decimal.Zero, decimal.Zero
	case paid.LessThan(due):
		return domain.OutcomeShortfall, RoundMoney(due.Sub(paid)), decimal.Zero
	default:
		return domain.OutcomeOverpay, decimal.Zero, RoundMoney(paid.Sub(due))
	}
}

// Surplus is the part of paid that exceeds due, recorded even when the
// difference is within the money tolerance.
func Surplus(paid, due decimal.Decimal) decimal.Decimal {
	if !paid.GreaterThan(due) {
		return decimal.Zero
	}
	return RoundMoney(paid.Sub(due))
}

// SumUSD totals the USD equivalents of the allocations.
func SumUSD(allocations []domain.PaymentAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.USDEquivalent.Amount)
	}
	return RoundMoney(total)
}

// SumLineItems totals sale prices, which is the order total.
func SumLineItems(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.SalePriceUSD)
	}
	return RoundMoney(total)
}

// PaymentStatusFor derives an order's payment status from the validator outcome.
func PaymentStatusFor(outcome domain.AllocationOutcome, totalPaidUSD decimal.Decimal) domain.PaymentStatus {
	switch {
	case outcome == domain.OutcomeFullyPaid || outcome == domain.OutcomeOverpay:
		return domain.PaymentPaid
	case totalPaidUSD.IsPositive():
		return domain.PaymentPartial
	default:
		return domain.PaymentUnpaid
	}
}

package domain

import "sort"

// PaymentMethodCode identifies how a customer paid.
type PaymentMethodCode string

const (
	MethodCashARS        PaymentMethodCode = "cash_ars"
	MethodCashUSD        PaymentMethodCode = "cash_usd"
	MethodWireARS        PaymentMethodCode = "wire_ars"
	MethodWireUSD        PaymentMethodCode = "wire_usd"
	MethodWireUSDT       PaymentMethodCode = "wire_usdt"
	MethodBrokerUSDToARS PaymentMethodCode = "broker_usd_to_ars"
	MethodBrokerARSToUSD PaymentMethodCode = "broker_ars_to_usd"
)

// ConversionRule selects how a native amount becomes a USD equivalent.
type ConversionRule string

const (
	// RuleDirect: the native amount already is the USD equivalent.
	RuleDirect ConversionRule = "direct"
	// RuleDivide: USD equivalent is nativeAmount / rate.
	RuleDivide ConversionRule = "divide"
	// RuleDirectWithDisplay: like RuleDirect, but the local display amount is the point of the method.
	RuleDirectWithDisplay ConversionRule = "direct_with_display"
)

// PaymentMethod describes a method's native currency and conversion rule.
type PaymentMethod struct {
	Code           PaymentMethodCode `json:"code"`
	NativeCurrency CurrencyCode      `json:"nativeCurrency"`
	Rule           ConversionRule    `json:"rule"`
}

var paymentMethods = map[PaymentMethodCode]PaymentMethod{
	MethodCashUSD:        {Code: MethodCashUSD, NativeCurrency: CurrencyUSD, Rule: RuleDirect},
	MethodWireUSD:        {Code: MethodWireUSD, NativeCurrency: CurrencyUSD, Rule: RuleDirect},
	MethodWireUSDT:       {Code: MethodWireUSDT, NativeCurrency: CurrencyUSDT, Rule: RuleDirect},
	MethodCashARS:        {Code: MethodCashARS, NativeCurrency: CurrencyARS, Rule: RuleDivide},
	MethodWireARS:        {Code: MethodWireARS, NativeCurrency: CurrencyARS, Rule: RuleDivide},
	MethodBrokerARSToUSD: {Code: MethodBrokerARSToUSD, NativeCurrency: CurrencyARS, Rule: RuleDivide},
	MethodBrokerUSDToARS: {Code: MethodBrokerUSDToARS, NativeCurrency: CurrencyUSD, Rule: RuleDirectWithDisplay},
}

// LookupPaymentMethod returns the definition of a method code.
func LookupPaymentMethod(code PaymentMethodCode) (PaymentMethod, bool) {
	m, ok := paymentMethods[code]
	return m, ok
}

// IsValid reports whether the code belongs to the closed set of methods.
func (c PaymentMethodCode) IsValid() bool {
	_, ok := paymentMethods[c]
	return ok
}

// PaymentMethodCodes returns every known code in a stable order.
func PaymentMethodCodes() []PaymentMethodCode {
	codes := make([]PaymentMethodCode, 0, len(paymentMethods))
	for code := range paymentMethods {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

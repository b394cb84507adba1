package domain_test

import (
	"testing"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLookupPaymentMethod(t *testing.T) {
	tests := []struct {
		code     domain.PaymentMethodCode
		currency domain.CurrencyCode
		rule     domain.ConversionRule
	}{
		{domain.MethodCashUSD, domain.CurrencyUSD, domain.RuleDirect},
		{domain.MethodWireUSD, domain.CurrencyUSD, domain.RuleDirect},
		{domain.MethodWireUSDT, domain.CurrencyUSDT, domain.RuleDirect},
		{domain.MethodCashARS, domain.CurrencyARS, domain.RuleDivide},
		{domain.MethodWireARS, domain.CurrencyARS, domain.RuleDivide},
		{domain.MethodBrokerARSToUSD, domain.CurrencyARS, domain.RuleDivide},
		{domain.MethodBrokerUSDToARS, domain.CurrencyUSD, domain.RuleDirectWithDisplay},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			m, ok := domain.LookupPaymentMethod(tt.code)
			assert.True(t, ok)
			assert.Equal(t, tt.currency, m.NativeCurrency)
			assert.Equal(t, tt.rule, m.Rule)
			assert.True(t, tt.code.IsValid())
		})
	}

	_, ok := domain.LookupPaymentMethod("crypto_btc")
	assert.False(t, ok)
	assert.Len(t, domain.PaymentMethodCodes(), 7)
}

func TestNewMoney_RoundsToCents(t *testing.T) {
	m := domain.NewMoney(decimal.RequireFromString("10.005"), domain.CurrencyUSD)
	assert.Equal(t, "10.01", m.Amount.StringFixed(2))
	assert.Equal(t, "10.01 USD", m.String())
}

func TestItemStatus_IsSellable(t *testing.T) {
	assert.True(t, domain.ItemAvailable.IsSellable())
	assert.True(t, domain.ItemReserved.IsSellable())
	assert.False(t, domain.ItemSold.IsSellable())
}

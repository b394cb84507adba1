package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatePlaces is the number of decimal places a stored rate can carry.
const RatePlaces int32 = 8

// MaxRate is the exclusive upper bound of a storable rate.
var MaxRate = decimal.New(1, 12)

// ExchangeRateEntry is the active rate a client has configured for one payment method.
// There is at most one entry per (ClientID, MethodCode).
type ExchangeRateEntry struct {
	ClientID   string            `json:"clientId"`
	MethodCode PaymentMethodCode `json:"methodCode"`
	Rate       decimal.Decimal   `json:"rate"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	UpdatedBy  string            `json:"updatedBy"`
}

// Version orders entries for the same key. Later writes carry larger versions.
func (e ExchangeRateEntry) Version() int64 {
	return e.UpdatedAt.UnixMicro()
}

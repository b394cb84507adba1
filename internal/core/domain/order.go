package domain

import "github.com/shopspring/decimal"

// PaymentStatus of an order.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// LineItem is one sold inventory item, owned by exactly one order.
type LineItem struct {
	LineItemID       string          `json:"lineItemId"`
	OrderID          string          `json:"orderId"`
	InventoryItemRef string          `json:"inventoryItemRef"`
	SalePriceUSD     decimal.Decimal `json:"salePriceUsd"`
}

// Order is created atomically with its line items and payment records.
// Only PaymentStatus and TotalPaidUSD change afterwards.
type Order struct {
	OrderID         string              `json:"orderId"`
	ClientID        string              `json:"clientId"`
	CustomerRef     string              `json:"customerRef"`
	CustomerDisplay string              `json:"customerDisplay"`
	VendorRef       string              `json:"vendorRef"`
	VendorDisplay   string              `json:"vendorDisplay"`
	LineItems       []LineItem          `json:"lineItems"`
	TotalUSD        decimal.Decimal     `json:"totalUsd"`
	TotalPaidUSD    decimal.Decimal     `json:"totalPaidUsd"`
	PaymentStatus   PaymentStatus       `json:"paymentStatus"`
	Allocations     []PaymentAllocation `json:"allocations"`
	ShippingInfo    string              `json:"shippingInfo"`
	Observations    string              `json:"observations"`
	AuditFields
}

// OrderResult is returned by a committed order creation. Debt is nil when the order is paid.
type OrderResult struct {
	Order Order
	Debt  *Debt
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	PaymentStatus *PaymentStatus
	CustomerRef   *string
	Limit         int
	NextToken     *string
}

package models

import "github.com/shopspring/decimal"

// Order is a row of the orders table.
type Order struct {
	OrderID         string          `db:"order_id"`
	ClientID        string          `db:"client_id"`
	CustomerRef     string          `db:"customer_ref"`
	CustomerDisplay string          `db:"customer_display"`
	VendorRef       string          `db:"vendor_ref"`
	VendorDisplay   string          `db:"vendor_display"`
	TotalUSD        decimal.Decimal `db:"total_usd"`
	TotalPaidUSD    decimal.Decimal `db:"total_paid_usd"`
	PaymentStatus   string          `db:"payment_status"`
	ShippingInfo    string          `db:"shipping_info"`
	Observations    string          `db:"observations"`
	AuditFields
}

// LineItem is a row of the line_items table.
type LineItem struct {
	LineItemID       string          `db:"line_item_id"`
	OrderID          string          `db:"order_id"`
	InventoryItemRef string          `db:"inventory_item_ref"`
	SalePriceUSD     decimal.Decimal `db:"sale_price_usd"`
	Position         int             `db:"position"`
}

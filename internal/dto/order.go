package dto

import (
	"time"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
)

// LineItemRequest is one inventory item being sold. Sale prices are in USD.
type LineItemRequest struct {
	InventoryItemRef string       `json:"inventoryItemRef" binding:"required,max=64"`
	SalePrice        MoneyRequest `json:"salePrice"`
}

// CreateOrderRequest defines the structure for creating a new order.
// OnCredit allows an empty allocation list, recording the full total as debt.
type CreateOrderRequest struct {
	CustomerRef  string              `json:"customerRef" binding:"required,max=64"`
	VendorRef    string              `json:"vendorRef" binding:"required,max=64"`
	LineItems    []LineItemRequest   `json:"lineItems" binding:"dive"`
	Allocations  []AllocationRequest `json:"allocations" binding:"dive"`
	OnCredit     bool                `json:"onCredit"`
	ShippingInfo string              `json:"shippingInfo" binding:"max=1000"`
	Observations string              `json:"observations" binding:"max=2000"`
	Notes        string              `json:"notes" binding:"max=500"`
}

// ListOrdersParams defines query parameters for listing orders.
type ListOrdersParams struct {
	Limit         int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken     *string `form:"nextToken"`
	PaymentStatus *string `form:"paymentStatus" binding:"omitempty,oneof=unpaid partial paid"`
	CustomerRef   *string `form:"customerRef"`
}

// LineItemResponse is a line item in responses.
type LineItemResponse struct {
	LineItemID       string        `json:"lineItemId"`
	InventoryItemRef string        `json:"inventoryItemRef"`
	SalePrice        MoneyResponse `json:"salePrice"`
}

// OrderResponse defines the structure for API responses containing order details.
type OrderResponse struct {
	OrderID         string               `json:"orderId"`
	ClientID        string               `json:"clientId"`
	CustomerRef     string               `json:"customerRef"`
	CustomerDisplay string               `json:"customerDisplay,omitempty"`
	VendorRef       string               `json:"vendorRef"`
	VendorDisplay   string               `json:"vendorDisplay,omitempty"`
	LineItems       []LineItemResponse   `json:"lineItems"`
	Total           MoneyResponse        `json:"total"`
	TotalPaid       MoneyResponse        `json:"totalPaid"`
	PaymentStatus   string               `json:"paymentStatus"`
	Allocations     []AllocationResponse `json:"allocations"`
	ShippingInfo    string               `json:"shippingInfo,omitempty"`
	Observations    string               `json:"observations,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
}

// CreateOrderResponse returns the committed order plus the debt, if one was opened.
type CreateOrderResponse struct {
	Order OrderResponse `json:"order"`
	Debt  *DebtResponse `json:"debt,omitempty"`
}

// ListOrdersResponse is a page of orders.
type ListOrdersResponse struct {
	Orders    []OrderResponse `json:"orders"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToOrderResponse converts a domain.Order.
func ToOrderResponse(o *domain.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.LineItems))
	for i, li := range o.LineItems {
		items[i] = LineItemResponse{
			LineItemID:       li.LineItemID,
			InventoryItemRef: li.InventoryItemRef,
			SalePrice:        USDResponse(li.SalePriceUSD),
		}
	}
	allocations := make([]AllocationResponse, len(o.Allocations))
	for i, a := range o.Allocations {
		allocations[i] = ToAllocationResponse(a)
	}
	return OrderResponse{
		OrderID:         o.OrderID,
		ClientID:        o.ClientID,
		CustomerRef:     o.CustomerRef,
		CustomerDisplay: o.CustomerDisplay,
		VendorRef:       o.VendorRef,
		VendorDisplay:   o.VendorDisplay,
		LineItems:       items,
		Total:           USDResponse(o.TotalUSD),
		TotalPaid:       USDResponse(o.TotalPaidUSD),
		PaymentStatus:   string(o.PaymentStatus),
		Allocations:     allocations,
		ShippingInfo:    o.ShippingInfo,
		Observations:    o.Observations,
		CreatedAt:       o.CreatedAt,
		CreatedBy:       o.CreatedBy,
		LastUpdatedAt:   o.LastUpdatedAt,
	}
}

// ToCreateOrderResponse converts a committed order result.
func ToCreateOrderResponse(r *domain.OrderResult) CreateOrderResponse {
	resp := CreateOrderResponse{Order: ToOrderResponse(&r.Order)}
	if r.Debt != nil {
		debt := ToDebtResponse(r.Debt)
		resp.Debt = &debt
	}
	return resp
}

// ToListOrdersResponse converts a page of orders.
func ToListOrdersResponse(orders []domain.Order, nextToken *string) *ListOrdersResponse {
	resp := &ListOrdersResponse{Orders: make([]OrderResponse, len(orders)), NextToken: nextToken}
	for i := range orders {
		resp.Orders[i] = ToOrderResponse(&orders[i])
	}
	return resp
}

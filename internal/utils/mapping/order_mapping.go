package mapping

import (
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/models"
)

// ToModelOrder converts a domain.Order to a models.Order. Line items are mapped separately.
func ToModelOrder(d domain.Order) models.Order {
	return models.Order{
		OrderID:         d.OrderID,
		ClientID:        d.ClientID,
		CustomerRef:     d.CustomerRef,
		CustomerDisplay: d.CustomerDisplay,
		VendorRef:       d.VendorRef,
		VendorDisplay:   d.VendorDisplay,
		TotalUSD:        d.TotalUSD,
		TotalPaidUSD:    d.TotalPaidUSD,
		PaymentStatus:   string(d.PaymentStatus),
		ShippingInfo:    d.ShippingInfo,
		Observations:    d.Observations,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainOrder converts a models.Order to a domain.Order without line items or allocations.
func ToDomainOrder(m models.Order) domain.Order {
	return domain.Order{
		OrderID:         m.OrderID,
		ClientID:        m.ClientID,
		CustomerRef:     m.CustomerRef,
		CustomerDisplay: m.CustomerDisplay,
		VendorRef:       m.VendorRef,
		VendorDisplay:   m.VendorDisplay,
		TotalUSD:        m.TotalUSD,
		TotalPaidUSD:    m.TotalPaidUSD,
		PaymentStatus:   domain.PaymentStatus(m.PaymentStatus),
		ShippingInfo:    m.ShippingInfo,
		Observations:    m.Observations,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain.LineItem, keeping its position in the order.
func ToModelLineItem(d domain.LineItem, position int) models.LineItem {
	return models.LineItem{
		LineItemID:       d.LineItemID,
		OrderID:          d.OrderID,
		InventoryItemRef: d.InventoryItemRef,
		SalePriceUSD:     d.SalePriceUSD,
		Position:         position,
	}
}

// ToDomainLineItem converts a models.LineItem to a domain.LineItem
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:       m.LineItemID,
		OrderID:          m.OrderID,
		InventoryItemRef: m.InventoryItemRef,
		SalePriceUSD:     m.SalePriceUSD,
	}
}

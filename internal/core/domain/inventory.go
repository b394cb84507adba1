package domain

import "time"

// ItemStatus is the sale status owned by the inventory collaborator.
type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemReserved  ItemStatus = "reserved"
	ItemSold      ItemStatus = "sold"
)

// IsSellable reports whether an item in this status may be sold.
func (s ItemStatus) IsSellable() bool {
	return s == ItemAvailable || s == ItemReserved
}

// InventoryItem is the read view of an inventory item.
type InventoryItem struct {
	ItemRef   string     `json:"itemRef"`
	Status    ItemStatus `json:"status"`
	Version   int64      `json:"version"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// SaleTicket proves a successful sell transition and allows undoing it.
type SaleTicket struct {
	TicketID    string
	ItemRef     string
	PriorStatus ItemStatus
	Version     int64
	ActorID     string
	SoldAt      time.Time
}

// PartyKind distinguishes customers from vendors in directory lookups.
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartyVendor   PartyKind = "vendor"
)

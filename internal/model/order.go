package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PurchaseOrder commits part of a contract's volume. Volume is counted
// against the contract at creation time; delivery is a fulfillment marker
// and does not move volume.
type PurchaseOrder struct {
	ID           int64
	ContractID   int64
	Volume       float64
	Price        float64
	OrderDate    time.Time
	DeliveryDate *time.Time
	Status       OrderStatus
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderContractInfo carries the display fields of the parent contract when
// orders are listed outside of a contract context.
type OrderContractInfo struct {
	CorrelativeNumber string
	ClientName        string
	PendingVolume     float64
}

type OrderWithContract struct {
	PurchaseOrder
	Contract *OrderContractInfo
}

type OrderStats struct {
	Total       int64
	Pending     int64
	Delivered   int64
	Cancelled   int64
	TotalVolume float64
	TotalValue  float64
}

package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order keeps every amount in integer cents; commission is derived from the
// subtotal with basis-point arithmetic, never floats.
type Order struct {
	ID              string      `json:"id"`
	BuyerID         string      `json:"buyerId"`
	DesignID        string      `json:"designId"`
	Quantity        int         `json:"quantity"`
	UnitPriceCents  int64       `json:"unitPriceCents"`
	SubtotalCents   int64       `json:"subtotalCents"`
	CommissionCents int64       `json:"commissionCents"`
	TotalCents      int64       `json:"totalCents"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
}

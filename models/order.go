package models

import "time"

type OrderStatus string

const (
	OrderStatusNew          OrderStatus = "new"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the fixed lifecycle values.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusNew, OrderStatusInProduction, OrderStatusReady,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              int         `json:"id"`
	CreatedAt       time.Time   `json:"created_at"`
	DeliveryDate    *string     `json:"delivery_date"`
	DeliveryPeriod  *string     `json:"delivery_period"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   *string     `json:"customer_phone"`
	CustomerAddress *string     `json:"customer_address"`
	Notes           *string     `json:"notes"`
	Origin          *string     `json:"origin"`
	Status          OrderStatus `json:"status"`
	TotalCents      int64       `json:"total_cents"`
	BrandSlug       *string     `json:"brand_slug"`
}

type UpdateOrderStatusRequest struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

// OrderFilter holds the optional list/export query filters. Bounds are
// passed through to the database as-is; Status is only applied when it is
// a valid OrderStatus.
type OrderFilter struct {
	Start  string
	End    string
	Status string
}

type OrderStatusEvent struct {
	OrderID   int    `json:"order_id"`
	Status    string `json:"status"`
	EventType string `json:"event_type"` // order_status_changed
}

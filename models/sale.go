package models

import "time"

type Sale struct {
	ID                 int       `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	CustomerName       string    `json:"customer_name"`
	CustomerPhone      *string   `json:"customer_phone"`
	Channel            string    `json:"channel"`
	PaymentMethod      string    `json:"payment_method"`
	TotalValueCents    int64     `json:"total_value_cents"`
	DiscountCents      int64     `json:"discount_cents"`
	CostFreightCents   int64     `json:"cost_freight_cents"`
	CostPackagingCents int64     `json:"cost_packaging_cents"`
	CostCardFeeCents   int64     `json:"cost_card_fee_cents"`
	CostOtherCents     int64     `json:"cost_other_cents"`
	Notes              *string   `json:"notes"`
}

// CreateSaleRequest carries monetary fields as strings because the admin
// form submits decimal text ("12,50" or "12.50"); see ParseCents.
type CreateSaleRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Channel       string `json:"channel"`
	PaymentMethod string `json:"payment_method"`
	TotalValue    string `json:"total_value"`
	Discount      string `json:"discount"`
	CostFreight   string `json:"cost_freight"`
	CostPackaging string `json:"cost_packaging"`
	CostCardFee   string `json:"cost_card_fee"`
	CostOther     string `json:"cost_other"`
	Notes         string `json:"notes"`
}

type CheckoutItem struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price_cents"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items"`
	CustomerName    string         `json:"customer_name"`
	Channel         string         `json:"channel"`
	PaymentMethod   string         `json:"payment_method"`
	Notes           string         `json:"notes"`
	TotalValueCents int64          `json:"total_value_cents"`
}

type SaleEvent struct {
	SaleID          int    `json:"sale_id"`
	CustomerName    string `json:"customer_name"`
	Channel         string `json:"channel"`
	PaymentMethod   string `json:"payment_method"`
	TotalValueCents int64  `json:"total_value_cents"`
	EventType       string `json:"event_type"` // sale_recorded
}

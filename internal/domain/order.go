package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

// IsTerminal reports whether no further payment action is possible for the order.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed:
		return true
	}
	return false
}

// TerminalStatuses lists the statuses used when looking up a closed order.
func TerminalStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed}
}

// OrderChannel distinguishes where an order originated.
type OrderChannel string

const (
	OrderChannelGallery OrderChannel = "gallery"
	OrderChannelAuction OrderChannel = "auction"
)

type Address struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Order is a commerce backend order. This service never creates orders, it only
// reads them and moves their status.
type Order struct {
	ID                 int64        `json:"id"`
	Key                string       `json:"key"`
	Status             OrderStatus  `json:"status"`
	PaymentMethod      string       `json:"paymentMethod,omitempty"`
	PaymentMethodTitle string       `json:"paymentMethodTitle,omitempty"`
	CustomerID         int64        `json:"customerId"`
	LineItems          []LineItem   `json:"lineItems"`
	CustomerNote       string       `json:"customerNote,omitempty"`
	Channel            OrderChannel `json:"channel"`
	Currency           string       `json:"currency"`
	TotalCents         int64        `json:"totalCents"`
	Billing            Address      `json:"billing"`
	Shipping           Address      `json:"shipping"`
	CreatedAt          time.Time    `json:"createdAt"`
}

type LineItem struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"productId"`
	Name          string `json:"name,omitempty"`
	Quantity      int    `json:"quantity"`
	SubtotalCents int64  `json:"subtotalCents"`
	TotalCents    int64  `json:"totalCents"`
}

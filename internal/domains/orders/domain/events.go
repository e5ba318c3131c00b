package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for all order events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	// AggregateID keys the event on the order it belongs to.
	AggregateID() string
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"-"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised after a checkout commits.
type OrderPlaced struct {
	BaseEvent
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	DealerID      string          `json:"dealer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

func (e OrderPlaced) AggregateID() string { return e.OrderID }

// NewOrderPlaced describes a committed order.
func NewOrderPlaced(o *Order) OrderPlaced {
	return OrderPlaced{
		BaseEvent:     BaseEvent{Timestamp: o.CreatedAt},
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		DealerID:      o.DealerID,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		ItemCount:     len(o.Items),
	}
}

// OrderStatusChanged is raised when fulfilment moves an order.
type OrderStatusChanged struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	DealerID   string `json:"dealer_id"`
	FromStatus Status `json:"from_status"`
	ToStatus   Status `json:"to_status"`
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "orders.order.status_changed"
}

func (e OrderStatusChanged) AggregateID() string { return e.OrderID }

// NewOrderStatusChanged describes a transition that has been stored.
func NewOrderStatusChanged(o *Order, from Status) OrderStatusChanged {
	return OrderStatusChanged{
		BaseEvent:  BaseEvent{Timestamp: o.UpdatedAt},
		OrderID:    o.ID,
		DealerID:   o.DealerID,
		FromStatus: from,
		ToStatus:   o.Status,
	}
}

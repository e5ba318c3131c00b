package types

import "github.com/shopspring/decimal"

// PlaceOrderInput is the checkout command. It travels through Temporal, so fields stay plain.
type PlaceOrderInput struct {
	DealerID        string
	PaymentMethod   string
	DeliveryAddress string
	Notes           string
	IdempotencyKey  string
}

// DashboardStats summarises a dealer's orders and credit line.
type DashboardStats struct {
	TotalOrders        int
	PendingOrders      int
	DeliveredOrders    int
	TotalSpent         decimal.Decimal
	CreditAvailable    decimal.Decimal
	OutstandingBalance decimal.Decimal
}

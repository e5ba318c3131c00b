package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
)

// PlaceOrderRequest is the body of POST /orders.
type PlaceOrderRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	Notes           string `json:"notes"`
}

// StatusUpdate is the body of the administrative status endpoint.
type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
}

type LineItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

type Order struct {
	ID              string     `json:"id"`
	OrderNumber     string     `json:"order_number"`
	DealerID        string     `json:"dealer_id"`
	Items           []LineItem `json:"items"`
	TotalAmount     float64    `json:"total_amount"`
	PaymentMethod   string     `json:"payment_method"`
	PaymentStatus   string     `json:"payment_status"`
	Status          string     `json:"status"`
	DeliveryAddress string     `json:"delivery_address"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type DashboardStats struct {
	TotalOrders        int     `json:"total_orders"`
	PendingOrders      int     `json:"pending_orders"`
	DeliveredOrders    int     `json:"delivered_orders"`
	TotalSpent         float64 `json:"total_spent"`
	CreditAvailable    float64 `json:"credit_available"`
	OutstandingBalance float64 `json:"outstanding_balance"`
}

// ToPlaceOrderInput builds the checkout command; the dealer comes from the session.
func ToPlaceOrderInput(dealerID, idempotencyKey string, req PlaceOrderRequest) ordertypes.PlaceOrderInput {
	return ordertypes.PlaceOrderInput{
		DealerID:        dealerID,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		IdempotencyKey:  idempotencyKey,
	}
}

func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       money(item.UnitPrice),
			Subtotal:    money(item.Subtotal),
		})
	}
	return Order{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		DealerID:        order.DealerID,
		Items:           items,
		TotalAmount:     money(order.TotalAmount),
		PaymentMethod:   string(order.PaymentMethod),
		PaymentStatus:   string(order.PaymentStatus),
		Status:          string(order.Status),
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

func FromDashboardStats(stats *ordertypes.DashboardStats) DashboardStats {
	if stats == nil {
		return DashboardStats{}
	}
	return DashboardStats{
		TotalOrders:        stats.TotalOrders,
		PendingOrders:      stats.PendingOrders,
		DeliveredOrders:    stats.DeliveredOrders,
		TotalSpent:         money(stats.TotalSpent),
		CreditAvailable:    money(stats.CreditAvailable),
		OutstandingBalance: money(stats.OutstandingBalance),
	}
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

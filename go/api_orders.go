package portalserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

// OrderAPI wires checkout, order history and fulfilment to the orders context.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.CheckoutWorkflows
}

// NewOrderAPI creates an OrderAPI. Checkout runs through workflows when it is non-nil.
func NewOrderAPI(service ordersports.Service, workflows ordersports.CheckoutWorkflows) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /api/orders
// Checks out the dealer's cart. An Idempotency-Key header makes retries safe.
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	var idempotencyKey string
	if !optionalHeader(c, IdempotencyKeyHeader, &idempotencyKey) {
		return
	}
	var payload ordermapper.PlaceOrderRequest
	if !bindJSON(c, &payload) {
		return
	}
	order, err := api.placeOrder(c.Request.Context(), ordermapper.ToPlaceOrderInput(dealer.ID, idempotencyKey, payload))
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

func (api *OrderAPI) placeOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*orderdomain.Order, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.PlaceOrder(ctx, input)
}

// Get /api/orders
func (api *OrderAPI) ListOrders(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	orders, err := api.service.ListOrders(c.Request.Context(), dealer.ID)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders))
}

// Get /api/orders/:id
func (api *OrderAPI) GetOrder(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	var orderID string
	if !bindPathParam(c, "id", &orderID) {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), dealer.ID, orderID)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Get /api/dashboard/stats
func (api *OrderAPI) DashboardStats(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	stats, err := api.service.DashboardStats(c.Request.Context(), dealer.ID)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDashboardStats(stats))
}

// Patch /api/admin/orders/:id/status
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	var orderID string
	if !bindPathParam(c, "id", &orderID) {
		return
	}
	var payload ordermapper.StatusUpdate
	if !bindJSON(c, &payload) {
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), orderID, payload.Status)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

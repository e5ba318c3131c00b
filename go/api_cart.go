package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
)

// CartAPI manages the authenticated dealer's cart.
type CartAPI struct {
	service cartports.Service
}

// NewCartAPI wires dependencies.
func NewCartAPI(service cartports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /api/cart
func (api *CartAPI) GetCart(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	lines, err := api.service.View(c.Request.Context(), dealer.ID)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromLines(lines))
}

// Post /api/cart
// Adds a product or replaces the quantity of its existing line.
func (api *CartAPI) AddToCart(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	var payload cartmapper.AddItemRequest
	if !bindJSON(c, &payload) {
		return
	}
	item, err := api.service.AddItem(c.Request.Context(), dealer.ID, payload.ProductID, payload.Quantity)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainItem(item))
}

// Put /api/cart/:itemId?quantity=N
func (api *CartAPI) UpdateCartItem(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	var itemID string
	if !bindPathParam(c, "itemId", &itemID) {
		return
	}
	var quantity int
	if !bindQueryParam(c, "quantity", true, &quantity) {
		return
	}
	if _, err := api.service.UpdateQuantity(c.Request.Context(), dealer.ID, itemID, quantity); err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated successfully"})
}

// Delete /api/cart/:itemId
func (api *CartAPI) RemoveCartItem(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	var itemID string
	if !bindPathParam(c, "itemId", &itemID) {
		return
	}
	if err := api.service.RemoveItem(c.Request.Context(), dealer.ID, itemID); err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// Delete /api/cart
func (api *CartAPI) ClearCart(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	if err := api.service.Clear(c.Request.Context(), dealer.ID); err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}

package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI, relative to /api.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Access selects the middleware guarding the route.
	Access Access
}

// Access names who may call a route.
type Access int

const (
	Public Access = iota
	Dealer
	Admin
)

// ApiHandleFunctions bundles the handlers of every API section.
type ApiHandleFunctions struct {
	AuthAPI    AuthAPI
	CatalogAPI CatalogAPI
	CartAPI    CartAPI
	OrderAPI   OrderAPI
	ChatAPI    ChatAPI
}

// Options toggle the optional surfaces of the router.
type Options struct {
	// AdminKey enables the fulfilment routes when non-empty.
	AdminKey string
	// SeedEnabled exposes POST /api/seed-data.
	SeedEnabled bool
	// CORSOrigins lists allowed origins; empty or "*" allows any.
	CORSOrigins []string
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, opts Options) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, opts)
}

// NewRouterWithGinEngine adds the portal routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts Options) *gin.Engine {
	router.Use(CORS(opts.CORSOrigins))

	api := router.Group("/api")
	requireDealer := RequireDealer(handleFunctions.AuthAPI.service)
	requireAdmin := RequireAdminKey(opts.AdminKey)

	for _, route := range getRoutes(handleFunctions, opts) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{}
		switch route.Access {
		case Dealer:
			handlers = append(handlers, requireDealer)
		case Admin:
			handlers = append(handlers, requireAdmin)
		}
		handlers = append(handlers, route.HandlerFunc)
		api.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc answers routes without a bound handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions, opts Options) []Route {
	routes := []Route{
		{"Index", http.MethodGet, "/", Index, Public},

		{"Register", http.MethodPost, "/auth/register", h.AuthAPI.Register, Public},
		{"SendOTP", http.MethodPost, "/auth/send-otp", h.AuthAPI.SendOTP, Public},
		{"VerifyOTP", http.MethodPost, "/auth/verify-otp", h.AuthAPI.VerifyOTP, Public},
		{"Me", http.MethodGet, "/auth/me", h.AuthAPI.Me, Dealer},
		{"Logout", http.MethodPost, "/auth/logout", h.AuthAPI.Logout, Dealer},

		{"ListProducts", http.MethodGet, "/products", h.CatalogAPI.ListProducts, Public},
		{"GetProduct", http.MethodGet, "/products/:id", h.CatalogAPI.GetProduct, Public},

		{"GetCart", http.MethodGet, "/cart", h.CartAPI.GetCart, Dealer},
		{"AddToCart", http.MethodPost, "/cart", h.CartAPI.AddToCart, Dealer},
		{"UpdateCartItem", http.MethodPut, "/cart/:itemId", h.CartAPI.UpdateCartItem, Dealer},
		{"RemoveCartItem", http.MethodDelete, "/cart/:itemId", h.CartAPI.RemoveCartItem, Dealer},
		{"ClearCart", http.MethodDelete, "/cart", h.CartAPI.ClearCart, Dealer},

		{"PlaceOrder", http.MethodPost, "/orders", h.OrderAPI.PlaceOrder, Dealer},
		{"ListOrders", http.MethodGet, "/orders", h.OrderAPI.ListOrders, Dealer},
		{"GetOrder", http.MethodGet, "/orders/:id", h.OrderAPI.GetOrder, Dealer},
		{"DashboardStats", http.MethodGet, "/dashboard/stats", h.OrderAPI.DashboardStats, Dealer},

		{"Chat", http.MethodPost, "/chat", h.ChatAPI.Chat, Dealer},
	}
	if opts.AdminKey != "" {
		routes = append(routes, Route{"UpdateOrderStatus", http.MethodPatch, "/admin/orders/:id/status", h.OrderAPI.UpdateOrderStatus, Admin})
	}
	if opts.SeedEnabled {
		routes = append(routes, Route{"SeedData", http.MethodPost, "/seed-data", h.CatalogAPI.SeedData, Public})
	}
	return routes
}

// Get /api/
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Cement Dealer Management API"})
}

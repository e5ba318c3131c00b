package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
)

// Line is a cart item joined with its current product.
type Line struct {
	Item     *domain.Item
	Product  *catalogdomain.Product
	Subtotal decimal.Decimal
}

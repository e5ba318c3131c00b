package mapper

import (
	"time"

	carttypes "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application/types"
	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	catalogmapper "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/http/mapper"
)

// AddItemRequest is the body of POST /cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// Item represents a stored cart line.
type Item struct {
	ID        string    `json:"id"`
	DealerID  string    `json:"dealer_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Line is a cart line joined with its product for display.
type Line struct {
	ID        string                `json:"id"`
	ProductID string                `json:"product_id"`
	Quantity  int                   `json:"quantity"`
	Product   catalogmapper.Product `json:"product"`
	Subtotal  float64               `json:"subtotal"`
}

func FromDomainItem(item *cartdomain.Item) Item {
	if item == nil {
		return Item{}
	}
	return Item{
		ID:        item.ID,
		DealerID:  item.DealerID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
	}
}

// FromLines converts the cart view.
func FromLines(lines []carttypes.Line) []Line {
	result := make([]Line, 0, len(lines))
	for _, line := range lines {
		subtotal, _ := line.Subtotal.Round(2).Float64()
		result = append(result, Line{
			ID:        line.Item.ID,
			ProductID: line.Item.ProductID,
			Quantity:  line.Item.Quantity,
			Product:   catalogmapper.FromDomainProduct(line.Product),
			Subtotal:  subtotal,
		})
	}
	return result
}

package mapper

import (
	"time"

	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// Product represents the transport-level product payload.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Grade          string            `json:"grade"`
	Packaging      string            `json:"packaging"`
	Price          float64           `json:"price"`
	Stock          int               `json:"stock"`
	ImageURL       string            `json:"image_url,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// FromDomainProduct converts a domain product into a transport representation.
func FromDomainProduct(product *catalogdomain.Product) Product {
	if product == nil {
		return Product{}
	}
	price, _ := product.Price.Round(2).Float64()
	return Product{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Category:       product.Category,
		Grade:          product.Grade,
		Packaging:      product.Packaging,
		Price:          price,
		Stock:          product.Stock,
		ImageURL:       product.ImageURL,
		Specifications: product.Specifications,
		Tags:           product.Tags,
	}
}

// FromProjection converts a stored product including its creation time.
func FromProjection(p *projection.Projection[*catalogdomain.Product]) Product {
	if p == nil {
		return Product{}
	}
	out := FromDomainProduct(p.Entity)
	out.CreatedAt = p.Metadata.CreatedAt
	return out
}

// FromProjections converts a listing.
func FromProjections(list []*projection.Projection[*catalogdomain.Product]) []Product {
	result := make([]Product, 0, len(list))
	for _, p := range list {
		result = append(result, FromProjection(p))
	}
	return result
}

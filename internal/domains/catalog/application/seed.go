package application

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
)

const seedImageURL = "https://images.unsplash.com/photo-1590642916589-592bca10dfbf?w=400"

type seedProduct struct {
	name, description, category, grade, packaging string
	price                                         int64
	stock                                         int
	strength, fineness                            string
	tags                                          []string
}

var seedProducts = []seedProduct{
	{
		name:        "OPC 43 Grade Cement",
		description: "Ordinary Portland Cement 43 Grade - Ideal for all types of construction work including RCC work, plastering, and masonry.",
		category:    "OPC", grade: "43", packaging: "50kg bag",
		price: 350, stock: 5000,
		strength: "43 MPa", fineness: "225 m2/kg",
		tags: []string{"rcc", "plastering", "masonry"},
	},
	{
		name:        "OPC 53 Grade Cement",
		description: "Ordinary Portland Cement 53 Grade - High strength cement for high-rise buildings and heavy-duty construction.",
		category:    "OPC", grade: "53", packaging: "50kg bag",
		price: 380, stock: 4500,
		strength: "53 MPa", fineness: "225 m2/kg",
		tags: []string{"rcc", "high-rise"},
	},
	{
		name:        "PPC Cement",
		description: "Portland Pozzolana Cement - Eco-friendly cement with improved workability and lower heat of hydration.",
		category:    "PPC", grade: "PPC", packaging: "50kg bag",
		price: 340, stock: 6000,
		strength: "33 MPa (28 days)", fineness: "300 m2/kg",
		tags: []string{"plastering", "masonry", "eco-friendly"},
	},
	{
		name:        "PSC Cement",
		description: "Portland Slag Cement - Durable cement with better resistance to chemicals and sulfates.",
		category:    "PSC", grade: "PSC", packaging: "50kg bag",
		price: 345, stock: 3500,
		strength: "33 MPa (28 days)", fineness: "325 m2/kg",
		tags: []string{"marine", "foundations"},
	},
	{
		name:        "OPC 43 Grade (25kg)",
		description: "Ordinary Portland Cement 43 Grade in smaller 25kg packaging for small projects.",
		category:    "OPC", grade: "43", packaging: "25kg bag",
		price: 185, stock: 3000,
		strength: "43 MPa", fineness: "225 m2/kg",
		tags: []string{"plastering", "repairs"},
	},
	{
		name:        "OPC 53 Grade (25kg)",
		description: "Ordinary Portland Cement 53 Grade in smaller 25kg packaging.",
		category:    "OPC", grade: "53", packaging: "25kg bag",
		price: 200, stock: 2500,
		strength: "53 MPa", fineness: "225 m2/kg",
		tags: []string{"rcc", "repairs"},
	},
}

// DefaultProducts builds the starter catalog with identifiers from newID.
func DefaultProducts(newID func() string) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(seedProducts))
	for _, seed := range seedProducts {
		p, err := domain.NewProduct(newID(), seed.name, decimal.NewFromInt(seed.price), seed.stock)
		if err != nil {
			return nil, err
		}
		p.Describe(seed.description, seed.category, seed.grade, seed.packaging, seedImageURL)
		p.SetSpecifications(map[string]string{
			"compressive_strength": seed.strength,
			"setting_time":         "30 min - 10 hours",
			"fineness":             seed.fineness,
		})
		p.SetTags(seed.tags)
		products = append(products, p)
	}
	return products, nil
}

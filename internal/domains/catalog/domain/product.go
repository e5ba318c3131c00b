package domain

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName         = errors.New("product name is required")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrNegativeStock     = errors.New("stock must not be negative")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is a cement SKU offered to dealers.
type Product struct {
	ID             string
	Name           string
	Description    string
	Category       string
	Grade          string
	Packaging      string
	Price          decimal.Decimal
	Stock          int
	ImageURL       string
	Specifications map[string]string
	Tags           []string
}

// NewProduct validates the commercial fields of a product.
func NewProduct(id, name string, price decimal.Decimal, stock int) (*Product, error) {
	p := &Product{ID: id, Name: strings.TrimSpace(name)}
	if err := p.Reprice(price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	p.Stock = stock
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	return p, nil
}

// Describe sets the descriptive attributes shown in the catalog.
func (p *Product) Describe(description, category, grade, packaging, imageURL string) {
	p.Description = strings.TrimSpace(description)
	p.Category = strings.TrimSpace(category)
	p.Grade = strings.TrimSpace(grade)
	p.Packaging = strings.TrimSpace(packaging)
	p.ImageURL = strings.TrimSpace(imageURL)
}

// SetSpecifications replaces the technical specification sheet.
func (p *Product) SetSpecifications(specs map[string]string) {
	if len(specs) == 0 {
		p.Specifications = nil
		return
	}
	p.Specifications = make(map[string]string, len(specs))
	for k, v := range specs {
		p.Specifications[k] = v
	}
}

// SetTags stores lower-cased, de-duplicated, sorted tags.
func (p *Product) SetTags(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	p.Tags = out
}

// HasTag reports whether the product carries tag, case-insensitively.
func (p *Product) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Reprice sets a positive price rounded to two places.
func (p *Product) Reprice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	p.Price = price.Round(2)
	return nil
}

// Reserve takes quantity units out of stock.
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

// Restock returns quantity units to stock.
func (p *Product) Restock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	return nil
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.SetSpecifications(p.Specifications)
	if p.Tags != nil {
		clone.Tags = append([]string(nil), p.Tags...)
	}
	return &clone
}

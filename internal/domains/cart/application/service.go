package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	carttypes "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
)

// Service implements cart management. Re-adding a product replaces the line quantity.
type Service struct {
	repo     ports.Repository
	products ports.ProductReader
	now      func() time.Time
}

// NewService wires the cart service with its repository and the catalog.
func NewService(repo ports.Repository, products ports.ProductReader) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

// View joins every line with its current product. Lines whose product is gone are skipped.
func (s *Service) View(ctx context.Context, dealerID string) ([]carttypes.Line, error) {
	items, err := s.repo.ListByDealer(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	lines := make([]carttypes.Line, 0, len(items))
	for _, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				continue
			}
			return nil, err
		}
		lines = append(lines, carttypes.Line{
			Item:     item,
			Product:  product.Entity,
			Subtotal: product.Entity.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		})
	}
	return lines, nil
}

func (s *Service) AddItem(ctx context.Context, dealerID, productID string, quantity int) (*domain.Item, error) {
	item, err := domain.NewItem(uuid.NewString(), dealerID, productID, quantity, s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.products.GetByID(ctx, item.ProductID); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, item)
}

func (s *Service) UpdateQuantity(ctx context.Context, dealerID, itemID string, quantity int) (*domain.Item, error) {
	if quantity < 1 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	item, err := s.repo.GetByID(ctx, dealerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.SetQuantity(quantity, s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, item)
}

func (s *Service) RemoveItem(ctx context.Context, dealerID, itemID string) error {
	return s.repo.Delete(ctx, dealerID, itemID)
}

func (s *Service) Clear(ctx context.Context, dealerID string) error {
	return s.repo.Clear(ctx, dealerID)
}

var _ ports.Service = (*Service)(nil)

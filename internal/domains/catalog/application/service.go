package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// Service implements catalog browsing and seeding.
type Service struct {
	repo  ports.Repository
	newID func() string
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString}
}

func (s *Service) ListProducts(ctx context.Context, filter ports.Filter) ([]*projection.Projection[*domain.Product], error) {
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	return s.repo.List(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*projection.Projection[*domain.Product], error) {
	if strings.TrimSpace(id) == "" {
		return nil, ports.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Seed loads DefaultProducts into an empty catalog; a populated catalog is left alone.
func (s *Service) Seed(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	products, err := DefaultProducts(s.newID)
	if err != nil {
		return 0, mapError(err)
	}
	for i, product := range products {
		if _, err := s.repo.Save(ctx, product); err != nil {
			return i, fmt.Errorf("seed %q: %w", product.Name, err)
		}
	}
	return len(products), nil
}

var _ ports.Service = (*Service)(nil)

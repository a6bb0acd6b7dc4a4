package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/ports"
)

const searchLimit = 20

// Service resolves product mentions from voice commands against the catalog.
type Service struct {
	products ports.ProductRepository
	log      *zap.Logger
}

func NewService(products ports.ProductRepository, log *zap.Logger) *Service {
	return &Service{
		products: products,
		log:      log,
	}
}

var _ ports.CatalogService = (*Service)(nil)

// FindByName resolves a spoken product mention to a single product. Returns
// nil when nothing matches; voice responses handle that case themselves.
func (s *Service) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return s.products.FindByNameLike(ctx, name)
}

func (s *Service) Search(ctx context.Context, term string) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Product{}, nil
	}
	return s.products.Search(ctx, term, searchLimit)
}

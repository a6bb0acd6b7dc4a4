package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/observability/telemetry"
	"github.com/seu-repo/voxmart/internal/ports"
)

type ProductRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewProductRepository(db *gorm.DB, log *zap.Logger) ports.ProductRepository {
	return &ProductRepository{
		db:  db,
		log: log,
	}
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindByNameLike matches a product by a case-insensitive substring of its
// English or Arabic name. The first active match wins.
func (r *ProductRepository) FindByNameLike(ctx context.Context, name string) (*domain.Product, error) {
	start := time.Now()
	defer func() { telemetry.DatabaseLatency.Observe(time.Since(start).Seconds()) }()

	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("name ILIKE ? OR name_ar ILIKE ?", "%"+name+"%", "%"+name+"%").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Search(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	start := time.Now()
	defer func() { telemetry.DatabaseLatency.Observe(time.Since(start).Seconds()) }()

	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("name ILIKE ? OR name_ar ILIKE ? OR description ILIKE ?",
			"%"+term+"%", "%"+term+"%", "%"+term+"%").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/ports"
)

type CartRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCartRepository(db *gorm.DB, log *zap.Logger) ports.CartRepository {
	return &CartRepository{
		db:  db,
		log: log,
	}
}

func (r *CartRepository) Save(ctx context.Context, cart *domain.ShoppingCart) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(cart).Error
}

func (r *CartRepository) FindByUserID(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	var cart domain.ShoppingCart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Clear removes every item from the cart. The cart row itself stays.
func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&domain.CartItem{}).Error
}

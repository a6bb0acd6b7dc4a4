package ports

import (
	"context"

	"github.com/seu-repo/voxmart/internal/domain"
)

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByNameLike(ctx context.Context, name string) (*domain.Product, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Product, error)
}

type CartRepository interface {
	Save(ctx context.Context, cart *domain.ShoppingCart) error
	FindByUserID(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	Clear(ctx context.Context, cartID int64) error
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByUserID(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}

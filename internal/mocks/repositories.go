package mocks

import (
	"context"

	"github.com/seu-repo/voxmart/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	SaveFunc           func(ctx context.Context, product *domain.Product) error
	FindByIDFunc       func(ctx context.Context, id int64) (*domain.Product, error)
	FindByNameLikeFunc func(ctx context.Context, name string) (*domain.Product, error)
	SearchFunc         func(ctx context.Context, term string, limit int) ([]domain.Product, error)
}

func (m *MockProductRepository) Save(ctx context.Context, product *domain.Product) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, product)
	}
	return nil
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockProductRepository) FindByNameLike(ctx context.Context, name string) (*domain.Product, error) {
	if m.FindByNameLikeFunc != nil {
		return m.FindByNameLikeFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockProductRepository) Search(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, term, limit)
	}
	return []domain.Product{}, nil
}

// MockCartRepository is a mock implementation of CartRepository
type MockCartRepository struct {
	SaveFunc         func(ctx context.Context, cart *domain.ShoppingCart) error
	FindByUserIDFunc func(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	ClearFunc        func(ctx context.Context, cartID int64) error
}

func (m *MockCartRepository) Save(ctx context.Context, cart *domain.ShoppingCart) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, cart)
	}
	return nil
}

func (m *MockCartRepository) FindByUserID(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockCartRepository) Clear(ctx context.Context, cartID int64) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, cartID)
	}
	return nil
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	SaveFunc         func(ctx context.Context, order *domain.Order) error
	FindByIDFunc     func(ctx context.Context, id int64) (*domain.Order, error)
	FindByUserIDFunc func(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID, limit)
	}
	return []domain.Order{}, nil
}

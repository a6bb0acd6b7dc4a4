package cart

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestAddItem_BumpsQuantityForExistingProduct(t *testing.T) {
	// Arrange
	products := &mocks.MockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			return &domain.Product{ID: id, Name: "Milk", Stock: 10, Price: 2.5}, nil
		},
	}
	var saved *domain.ShoppingCart
	carts := &mocks.MockCartRepository{
		FindByUserIDFunc: func(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
			return &domain.ShoppingCart{
				ID:     1,
				UserID: userID,
				Items:  []domain.CartItem{{CartID: 1, ProductID: 5, Quantity: 1}},
			}, nil
		},
		SaveFunc: func(ctx context.Context, cart *domain.ShoppingCart) error {
			saved = cart
			return nil
		},
	}
	svc := NewService(carts, &mocks.MockOrderRepository{}, products, newTestLogger())

	// Act
	_, err := svc.AddItem(context.Background(), "u1", 5, 1)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(saved.Items))
	}
	if saved.Items[0].Quantity != 2 {
		t.Errorf("expected quantity bumped to 2, got %d", saved.Items[0].Quantity)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	// Arrange
	svc := NewService(&mocks.MockCartRepository{}, &mocks.MockOrderRepository{}, &mocks.MockProductRepository{}, newTestLogger())

	// Act
	_, err := svc.AddItem(context.Background(), "u1", 99, 1)

	// Assert
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCheckout_DecrementsStockAndClearsCart(t *testing.T) {
	// Arrange
	stock := map[int64]int{5: 10, 7: 3}
	products := &mocks.MockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			return &domain.Product{ID: id, Name: "P", Stock: stock[id], Price: 2.0}, nil
		},
		SaveFunc: func(ctx context.Context, p *domain.Product) error {
			stock[p.ID] = p.Stock
			return nil
		},
	}
	var cleared int64
	carts := &mocks.MockCartRepository{
		FindByUserIDFunc: func(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
			return &domain.ShoppingCart{
				ID:     1,
				UserID: userID,
				Items: []domain.CartItem{
					{CartID: 1, ProductID: 5, Quantity: 2},
					{CartID: 1, ProductID: 7, Quantity: 1},
				},
			}, nil
		},
		ClearFunc: func(ctx context.Context, cartID int64) error {
			cleared = cartID
			return nil
		},
	}
	var savedOrder *domain.Order
	orders := &mocks.MockOrderRepository{
		SaveFunc: func(ctx context.Context, order *domain.Order) error {
			order.ID = 42
			savedOrder = order
			return nil
		},
	}
	svc := NewService(carts, orders, products, newTestLogger())

	// Act
	order, err := svc.Checkout(context.Background(), "u1")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 42 {
		t.Errorf("expected order id 42, got %d", order.ID)
	}
	if order.Total != 6.0 {
		t.Errorf("expected total 6.0, got %f", order.Total)
	}
	if stock[5] != 8 || stock[7] != 2 {
		t.Errorf("stock not decremented: %v", stock)
	}
	if cleared != 1 {
		t.Errorf("expected cart 1 cleared, got %d", cleared)
	}
	if len(savedOrder.Items) != 2 {
		t.Errorf("expected 2 order lines, got %d", len(savedOrder.Items))
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	// Arrange
	carts := &mocks.MockCartRepository{
		FindByUserIDFunc: func(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
			return &domain.ShoppingCart{ID: 1, UserID: userID}, nil
		},
	}
	svc := NewService(carts, &mocks.MockOrderRepository{}, &mocks.MockProductRepository{}, newTestLogger())

	// Act
	_, err := svc.Checkout(context.Background(), "u1")

	// Assert
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	// Arrange
	products := &mocks.MockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			return &domain.Product{ID: id, Name: "Milk", Stock: 1, Price: 2.0}, nil
		},
	}
	carts := &mocks.MockCartRepository{
		FindByUserIDFunc: func(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
			return &domain.ShoppingCart{
				ID:     1,
				UserID: userID,
				Items:  []domain.CartItem{{CartID: 1, ProductID: 5, Quantity: 3}},
			}, nil
		},
	}
	svc := NewService(carts, &mocks.MockOrderRepository{}, products, newTestLogger())

	// Act
	_, err := svc.Checkout(context.Background(), "u1")

	// Assert
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Errorf("expected ErrOutOfStock, got %v", err)
	}
}

func TestGetCart_CreatesCartOnFirstUse(t *testing.T) {
	// Arrange
	var saved *domain.ShoppingCart
	carts := &mocks.MockCartRepository{
		SaveFunc: func(ctx context.Context, cart *domain.ShoppingCart) error {
			saved = cart
			return nil
		},
	}
	svc := NewService(carts, &mocks.MockOrderRepository{}, &mocks.MockProductRepository{}, newTestLogger())

	// Act
	cart, err := svc.GetCart(context.Background(), "u1")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.UserID != "u1" || saved == nil {
		t.Errorf("expected a fresh cart persisted for u1, got %+v", cart)
	}
}

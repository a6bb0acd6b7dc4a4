package cart

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/ports"
)

const orderHistoryLimit = 20

// Service owns the shopping cart and checkout flow behind voice commands.
type Service struct {
	carts    ports.CartRepository
	orders   ports.OrderRepository
	products ports.ProductRepository
	log      *zap.Logger
}

func NewService(
	carts ports.CartRepository,
	orders ports.OrderRepository,
	products ports.ProductRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		products: products,
		log:      log,
	}
}

var _ ports.CartService = (*Service)(nil)

// GetCart returns the user's cart, creating an empty one on first use.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.ShoppingCart{UserID: userID}
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// AddItem puts a product in the cart. An item already present has its
// quantity bumped instead of a duplicate row.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*domain.ShoppingCart, error) {
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	s.log.Info("cart item added",
		zap.String("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return cart, nil
}

// Checkout turns the cart into an order: verify stock, decrement it, total
// the items, clear the cart.
func (s *Service) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := &domain.Order{
		UserID: userID,
		Status: domain.OrderStatusConfirmed,
	}

	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, item.ProductID)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s", domain.ErrOutOfStock, product.Name)
		}

		product.Stock -= item.Quantity
		if err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}

		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		order.Total += product.Price * float64(item.Quantity)
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		s.log.Error("clearing cart after checkout failed",
			zap.Int64("cart_id", cart.ID),
			zap.Error(err),
		)
	}

	s.log.Info("order placed",
		zap.String("user_id", userID),
		zap.Int64("order_id", order.ID),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.FindByUserID(ctx, userID, orderHistoryLimit)
}

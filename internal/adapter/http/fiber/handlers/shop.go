package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/ports"
)

// ShopHandler exposes the storefront reads the mobile client renders after
// a voice action: search results, the cart, order history.
type ShopHandler struct {
	catalog ports.CatalogService
	cart    ports.CartService
	log     *zap.Logger
}

func NewShopHandler(catalog ports.CatalogService, cart ports.CartService, log *zap.Logger) *ShopHandler {
	return &ShopHandler{
		catalog: catalog,
		cart:    cart,
		log:     log,
	}
}

func (h *ShopHandler) SearchProducts(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameter q is required"})
	}

	products, err := h.catalog.Search(c.Context(), term)
	if err != nil {
		h.log.Error("Product search failed", zap.String("term", term), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Search failed"})
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *ShopHandler) GetCart(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	cart, err := h.cart.GetCart(c.Context(), userID)
	if err != nil {
		h.log.Error("Cart fetch failed", zap.String("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Cannot load cart"})
	}
	return c.JSON(cart)
}

func (h *ShopHandler) ListOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	orders, err := h.cart.ListOrders(c.Context(), userID)
	if err != nil {
		h.log.Error("Order list failed", zap.String("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Cannot load orders"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

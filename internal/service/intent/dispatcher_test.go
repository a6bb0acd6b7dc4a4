package intent

import (
	"testing"

	"github.com/seu-repo/voxmart/internal/domain"
)

func TestDispatch_SearchProduct(t *testing.T) {
	// Arrange
	d := NewDispatcher()
	entities := []domain.Entity{{Kind: "subject", Value: "milk"}}

	// Act
	action := d.Dispatch("search_product", entities)

	// Assert
	if action.Type != domain.ActionSetSearchTerm {
		t.Fatalf("expected set-search-term action, got %v", action.Type)
	}
	if action.SearchTerm != "milk" {
		t.Errorf("expected search term 'milk', got '%s'", action.SearchTerm)
	}
}

func TestDispatch_SearchProductMissingSubject(t *testing.T) {
	// Arrange
	d := NewDispatcher()

	// Act
	action := d.Dispatch("search_product", nil)

	// Assert
	if action.Type != domain.ActionNone {
		t.Errorf("expected no action without a subject entity, got %v", action.Type)
	}
}

func TestDispatch_SearchProductEmptySubject(t *testing.T) {
	// Arrange
	d := NewDispatcher()
	entities := []domain.Entity{{Kind: "subject", Value: "  "}}

	// Act
	action := d.Dispatch("search_product", entities)

	// Assert
	if action.Type != domain.ActionNone {
		t.Errorf("expected no action for a blank subject, got %v", action.Type)
	}
}

func TestDispatch_ViewCart(t *testing.T) {
	// Arrange
	d := NewDispatcher()

	// Act
	action := d.Dispatch("view_cart", nil)

	// Assert
	if action.Type != domain.ActionNavigate {
		t.Fatalf("expected navigate action, got %v", action.Type)
	}
	if action.Screen != domain.ScreenCart {
		t.Errorf("expected cart screen, got '%s'", action.Screen)
	}
}

func TestDispatch_ViewOrders(t *testing.T) {
	// Arrange
	d := NewDispatcher()

	// Act
	action := d.Dispatch("view_orders", nil)

	// Assert
	if action.Type != domain.ActionNavigate || action.Screen != domain.ScreenOrders {
		t.Errorf("expected navigation to orders, got %+v", action)
	}
}

func TestDispatch_CheckoutWithOrderID(t *testing.T) {
	// Arrange
	d := NewDispatcher()
	entities := []domain.Entity{{Kind: "order_id", Value: "42"}}

	// Act
	action := d.Dispatch("checkout", entities)

	// Assert
	if action.Type != domain.ActionNavigate || action.Screen != domain.ScreenOrderDetail {
		t.Fatalf("expected navigation to order detail, got %+v", action)
	}
	if action.Params["order_id"] != "42" {
		t.Errorf("expected order_id param '42', got '%s'", action.Params["order_id"])
	}
}

func TestDispatch_CheckoutWithoutOrderID(t *testing.T) {
	// Arrange
	d := NewDispatcher()

	// Act
	action := d.Dispatch("checkout", nil)

	// Assert
	if action.Type != domain.ActionNavigate || action.Screen != domain.ScreenOrders {
		t.Errorf("expected fallback navigation to orders, got %+v", action)
	}
}

func TestDispatch_AddToCartIsServerSide(t *testing.T) {
	// Arrange
	d := NewDispatcher()
	entities := []domain.Entity{{Kind: "subject", Value: "rice"}}

	// Act
	action := d.Dispatch("add_to_cart", entities)

	// Assert
	if action.Type != domain.ActionNone {
		t.Errorf("expected no client action for add_to_cart, got %v", action.Type)
	}
}

func TestDispatch_UnknownIntent(t *testing.T) {
	// Arrange
	d := NewDispatcher()
	entities := []domain.Entity{{Kind: "subject", Value: "milk"}}

	// Act
	action := d.Dispatch("order_pizza", entities)

	// Assert
	if action.Type != domain.ActionNone {
		t.Errorf("expected no action for unknown intent, got %v", action.Type)
	}
}

func TestDispatch_FirstEntityOfKindWins(t *testing.T) {
	// Arrange
	d := NewDispatcher()
	entities := []domain.Entity{
		{Kind: "subject", Value: "milk"},
		{Kind: "subject", Value: "bread"},
	}

	// Act
	action := d.Dispatch("search_product", entities)

	// Assert
	if action.SearchTerm != "milk" {
		t.Errorf("expected first subject entity to win, got '%s'", action.SearchTerm)
	}
}

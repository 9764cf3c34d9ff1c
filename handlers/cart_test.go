package handlers

import (
	"net/http"
	"testing"

	"github.com/giygas/telehealth-api/cart"
)

func TestAddCartItem(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	rr := env.do(t, http.MethodPost, "/cart/items", sid, AddCartItemRequest{MedicineID: 2})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp AddCartItemResponse
	decode(t, rr, &resp)
	if resp.Message != "Paracetamol added to cart" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if resp.Line.Quantity != 1 || resp.Cart.ItemCount != 1 {
		t.Errorf("Unexpected cart %+v", resp.Cart)
	}

	// adding again increments the same line
	qty := 2
	rr = env.do(t, http.MethodPost, "/cart/items", sid, AddCartItemRequest{MedicineID: 2, Quantity: &qty})
	decode(t, rr, &resp)
	if resp.Line.Quantity != 3 || len(resp.Cart.Lines) != 1 {
		t.Errorf("Expected one line with quantity 3, got %+v", resp.Cart.Lines)
	}
	if resp.Cart.Total != 75 {
		t.Errorf("Expected total 75, got %v", resp.Cart.Total)
	}
}

func TestAddCartItemUsesSelectedQuantity(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	rr := env.do(t, http.MethodPost, "/cart/quantity/4", sid, QuantityRequest{Delta: 2})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var q map[string]int
	decode(t, rr, &q)
	if q["quantity"] != 3 {
		t.Fatalf("Expected selector at 3, got %d", q["quantity"])
	}

	rr = env.do(t, http.MethodPost, "/cart/items", sid, AddCartItemRequest{MedicineID: 4})
	var resp AddCartItemResponse
	decode(t, rr, &resp)
	if resp.Line.Quantity != 3 {
		t.Errorf("Expected quantity 3 from the selector, got %d", resp.Line.Quantity)
	}
}

func TestChangeQuantityFloorsAtOne(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	rr := env.do(t, http.MethodPost, "/cart/quantity/2", sid, QuantityRequest{Delta: -5})
	var q map[string]int
	decode(t, rr, &q)
	if q["quantity"] != 1 {
		t.Errorf("Expected 1, got %d", q["quantity"])
	}

	if rr := env.do(t, http.MethodPost, "/cart/quantity/abc", sid, QuantityRequest{Delta: 1}); rr.Code != http.StatusBadRequest {
		t.Errorf("Bad id: expected 400, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/cart/quantity/9999", sid, QuantityRequest{Delta: 1}); rr.Code != http.StatusNotFound {
		t.Errorf("Unknown id: expected 404, got %d", rr.Code)
	}
}

func TestAddCartItemErrors(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	if rr := env.do(t, http.MethodPost, "/cart/items", sid, AddCartItemRequest{MedicineID: 9999}); rr.Code != http.StatusNotFound {
		t.Errorf("Unknown medicine: expected 404, got %d", rr.Code)
	}

	zero := 0
	if rr := env.do(t, http.MethodPost, "/cart/items", sid, AddCartItemRequest{MedicineID: 2, Quantity: &zero}); rr.Code != http.StatusBadRequest {
		t.Errorf("Zero quantity: expected 400, got %d", rr.Code)
	}
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	if rr := env.do(t, http.MethodPost, "/cart/checkout", sid, nil); rr.Code != http.StatusConflict {
		t.Errorf("Empty cart: expected 409, got %d", rr.Code)
	}

	env.do(t, http.MethodPost, "/cart/items", sid, AddCartItemRequest{MedicineID: 2})
	rr := env.do(t, http.MethodPost, "/cart/checkout", sid, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp struct {
		Message string       `json:"message"`
		Cart    cart.Summary `json:"cart"`
	}
	decode(t, rr, &resp)
	if resp.Message != "Proceeding to checkout. Total: "+cart.FormatPrice(25) {
		t.Errorf("Unexpected message %q", resp.Message)
	}

	// the cart survives checkout
	rr = env.do(t, http.MethodGet, "/cart", sid, nil)
	var summary cart.Summary
	decode(t, rr, &summary)
	if summary.ItemCount != 1 {
		t.Errorf("Expected cart to be kept, got %d items", summary.ItemCount)
	}
}

func TestCameraPermission(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	var resp PermissionResponse
	decode(t, env.do(t, http.MethodGet, "/camera/permission", sid, nil), &resp)
	if resp.State != "unasked" || !resp.ShouldPrompt {
		t.Errorf("Unexpected initial state %+v", resp)
	}

	if rr := env.do(t, http.MethodPost, "/camera/permission", sid, PermissionRequest{Action: "retry"}); rr.Code != http.StatusConflict {
		t.Errorf("Retry before deny: expected 409, got %d", rr.Code)
	}

	decode(t, env.do(t, http.MethodPost, "/camera/permission", sid, PermissionRequest{Action: "deny"}), &resp)
	if resp.State != "denied" || resp.ShouldPrompt {
		t.Errorf("Unexpected state after deny %+v", resp)
	}

	rr := env.do(t, http.MethodPost, "/camera/permission", sid, PermissionRequest{Action: "retry"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Retry after deny: expected 200, got %d", rr.Code)
	}

	if rr := env.do(t, http.MethodPost, "/camera/permission", sid, PermissionRequest{Action: "shrug"}); rr.Code != http.StatusBadRequest {
		t.Errorf("Unknown action: expected 400, got %d", rr.Code)
	}
}

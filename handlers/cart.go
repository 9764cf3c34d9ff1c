package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/telehealth-api/cart"
	"github.com/giygas/telehealth-api/entities"
	"github.com/giygas/telehealth-api/metrics"
	"github.com/giygas/telehealth-api/session"
)

type AddCartItemRequest struct {
	MedicineID int  `json:"medicine_id"`
	Quantity   *int `json:"quantity,omitempty"`
}

type AddCartItemResponse struct {
	Message string            `json:"message"`
	Line    entities.CartLine `json:"line"`
	Cart    cart.Summary      `json:"cart"`
}

type QuantityRequest struct {
	Delta int `json:"delta"`
}

type PermissionRequest struct {
	Action string `json:"action"`
}

type PermissionResponse struct {
	State        session.PermissionState `json:"state"`
	ShouldPrompt bool                    `json:"should_prompt"`
}

func (h *HTTPHandlerImpl) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, s.CartSummary())
}

// AddCartItem adds a catalog medicine. Without a quantity the session's
// selected quantity for that medicine is used.
func (h *HTTPHandlerImpl) AddCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, found := h.catalog.GetCatalog().FindMedicine(req.MedicineID)
	if !found {
		h.RespondWithError(w, http.StatusNotFound, "medicine not found")
		return
	}

	var (
		line entities.CartLine
		qty  int
		err  error
	)
	if req.Quantity != nil {
		qty = *req.Quantity
		line, err = s.AddToCartQuantity(record, qty)
	} else {
		line, qty, err = s.AddToCart(record)
	}
	if errors.Is(err, cart.ErrInvalidQuantity) {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	metrics.CartAdditionsTotal.Add(float64(qty))

	h.RespondWithJSON(w, http.StatusOK, AddCartItemResponse{
		Message: record.Name + " added to cart",
		Line:    line,
		Cart:    s.CartSummary(),
	})
}

// ChangeQuantity moves the quantity selector of a medicine, never below 1
func (h *HTTPHandlerImpl) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		h.RespondWithError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	if _, found := h.catalog.GetCatalog().FindMedicine(id); !found {
		h.RespondWithError(w, http.StatusNotFound, "medicine not found")
		return
	}

	var req QuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]int{
		"medicine_id": id,
		"quantity":    s.ChangeQuantity(id, req.Delta),
	})
}

// Checkout confirms the totals. The cart is kept, payment is out of scope.
func (h *HTTPHandlerImpl) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	summary := s.CartSummary()
	if !summary.CheckoutEnabled {
		h.RespondWithError(w, http.StatusConflict, "cart is empty")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Proceeding to checkout. Total: " + summary.FormattedTotal,
		"cart":    summary,
	})
}

func (h *HTTPHandlerImpl) GetCameraPermission(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, PermissionResponse{State: s.Permission(), ShouldPrompt: s.ShouldPrompt()})
}

// SetCameraPermission applies grant, deny or retry. Retry is only valid
// after a denial.
func (h *HTTPHandlerImpl) SetCameraPermission(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req PermissionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	action, err := session.ParsePermissionAction(req.Action)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.ApplyPermission(action)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, session.ErrRetryNotDenied) {
			code = http.StatusConflict
		}
		h.RespondWithError(w, code, err.Error())
		return
	}
	h.RespondWithJSON(w, http.StatusOK, PermissionResponse{State: state, ShouldPrompt: s.ShouldPrompt()})
}

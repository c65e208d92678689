package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type CartHandler struct {
	Carts    *cart.Repo
	Products *catalog.Repo
	Log      zerolog.Logger
}

func (h *CartHandler) Register(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.list)
		r.Delete("/", h.clear)
		r.Post("/items", h.addItem)
		r.Patch("/items/{id}", h.setQuantity)
		r.Delete("/items/{id}", h.removeItem)
	})
}

// scope picks the cart owner: the authenticated user, else the guest session
// header. No owner means there is no cart to talk about.
func (h *CartHandler) scope(w http.ResponseWriter, r *http.Request) (cart.Scope, bool) {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		return cart.UserScope(id.UserID), true
	}
	if sid := auth.SessionID(r); sid != "" {
		return cart.SessionScope(sid), true
	}
	writeErrorCode(w, http.StatusBadRequest, CodeValidation,
		"authentication or an "+auth.HeaderSessionID+" header is required", nil)
	return cart.Scope{}, false
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	items, err := h.Carts.List(r.Context(), s)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if items == nil {
		items = []cart.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid json body", nil)
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	p, err := h.Products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if !p.IsActive {
		writeErrorCode(w, http.StatusNotFound, CodeProductNotFound, "product not found or inactive", nil)
		return
	}
	if p.StockQuantity < req.Quantity {
		writeError(w, h.Log, &orders.InsufficientStockError{
			ProductID: p.ID, Name: p.Name, Requested: req.Quantity, Available: p.StockQuantity,
		})
		return
	}

	item, err := h.Carts.Add(r.Context(), s, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "quantity must be at least 1", nil)
		return
	}
	item, err := h.Carts.SetQuantity(r.Context(), s, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.Carts.Remove(r.Context(), s, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.Carts.Clear(r.Context(), s); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

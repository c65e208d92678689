package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

type OrderAdminStore interface {
	UpdateStatusTx(ctx context.Context, orderID string, to orders.Status, changedBy, notes string) (*orders.Order, orders.Status, error)
	AdjustStock(ctx context.Context, productID string, change int, reason, adminID string) (*orders.InventoryAdjustment, error)
}

type AdminHandler struct {
	Store      OrderAdminStore
	Dispatcher *notify.Dispatcher
	Redis      *redis.Client
	Log        zerolog.Logger
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Patch("/orders/{id}/status", h.updateStatus)
		r.Post("/products/{id}/stock", h.adjustStock)
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid json body", nil)
		return
	}
	to, ok := orders.ParseStatus(req.Status)
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation,
			"unknown status "+req.Status, nil)
		return
	}

	admin, _ := auth.IdentityFrom(r.Context())
	orderID := chi.URLParam(r, "id")

	o, from, err := h.Store.UpdateStatusTx(r.Context(), orderID, to, admin.UserID, req.Notes)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	if h.Redis != nil {
		_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyOrderCache, o.ID)).Err()
	}
	if h.Dispatcher != nil {
		h.Dispatcher.OrderStatusChanged(o, from, o.Status)
	}
	writeJSON(w, http.StatusOK, o)
}

type adjustStockRequest struct {
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
}

func (h *AdminHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid json body", nil)
		return
	}
	if req.QuantityChange == 0 {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "quantity_change must be non-zero", nil)
		return
	}

	admin, _ := auth.IdentityFrom(r.Context())
	adj, err := h.Store.AdjustStock(r.Context(), chi.URLParam(r, "id"),
		req.QuantityChange, req.Reason, admin.UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, adj)
}

package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*orders.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]orders.Order, error)
}

type OrdersHandler struct {
	Checkout *checkout.Service
	Orders   OrderReader
	Redis    *redis.Client
	Log      zerolog.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.With(auth.RequireUser).Get("/orders", h.listOrders)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid json body", nil)
		return
	}

	var userID string
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		userID = id.UserID
	}

	ctx := r.Context()

	// replay shortcut: a retried checkout with the same key returns the
	// order it already created instead of charging again. Keys are scoped
	// to the caller, and the replayed order still has to pass the ownership
	// check; anything else falls through to a normal checkout.
	idemKey := r.Header.Get(headerIdempotencyKey)
	idemOwner := userID
	if idemOwner == "" {
		idemOwner = auth.SessionID(r)
	}
	if idemKey != "" && h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyIdemCheckout, idemOwner, idemKey)
		if orderID, err := h.Redis.Get(ctx, key).Result(); err == nil && orderID != "" {
			if existing, err := h.Orders.GetOrder(ctx, orderID); err == nil && h.mayRead(r, existing) {
				writeJSON(w, http.StatusOK, existing)
				return
			}
		}
	}

	order, err := h.Checkout.PlaceOrder(ctx, userID, req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	if h.Redis != nil {
		if idemKey != "" {
			key := fmt.Sprintf(redisx.KeyIdemCheckout, idemOwner, idemKey)
			_ = h.Redis.Set(ctx, key, order.ID, redisx.TTLIdempotency).Err()
		}
		h.cacheOrder(ctx, order)
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx := r.Context()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderCache, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			var o orders.Order
			if json.Unmarshal([]byte(s), &o) == nil && h.mayRead(r, &o) {
				writeJSON(w, http.StatusOK, &o)
				return
			}
		}
	}

	o, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if !h.mayRead(r, o) {
		// hide existence from strangers
		writeErrorCode(w, http.StatusNotFound, CodeOrderNotFound, "order not found", nil)
		return
	}
	if h.Redis != nil {
		h.cacheOrder(ctx, o)
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	out, err := h.Orders.ListByUser(r.Context(), id.UserID, limit, offset)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

// mayRead: admins see everything; owners see their own orders; guest orders
// are readable by anyone holding the order id, which doubles as the secret.
func (h *OrdersHandler) mayRead(r *http.Request, o *orders.Order) bool {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return o.UserID == ""
	}
	return id.Admin || o.UserID == id.UserID
}

func (h *OrdersHandler) cacheOrder(ctx context.Context, o *orders.Order) {
	key := fmt.Sprintf(redisx.KeyOrderCache, o.ID)
	_ = h.Redis.Set(ctx, key, string(mustJSON(o)), redisx.TTLOrderCache).Err()
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

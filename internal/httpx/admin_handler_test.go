package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type stubAdminStore struct {
	status     orders.Status
	lastActor  string
	lastNotes  string
	adjustment *orders.InventoryAdjustment
}

func (s *stubAdminStore) UpdateStatusTx(_ context.Context, orderID string, to orders.Status, changedBy, notes string) (*orders.Order, orders.Status, error) {
	if orderID != "o1" {
		return nil, "", orders.ErrOrderNotFound
	}
	from := s.status
	if !orders.CanTransition(from, to) {
		return nil, "", &orders.InvalidTransitionError{From: from, To: to}
	}
	s.status = to
	s.lastActor = changedBy
	s.lastNotes = notes
	return &orders.Order{ID: orderID, OrderNumber: "ORD-2026-000001", Status: to}, from, nil
}

func (s *stubAdminStore) AdjustStock(_ context.Context, productID string, change int, reason, adminID string) (*orders.InventoryAdjustment, error) {
	if productID != "p1" {
		return nil, orders.ErrProductNotFound
	}
	typ := orders.AdjustmentRestock
	if change < 0 {
		typ = orders.AdjustmentManual
	}
	s.adjustment = &orders.InventoryAdjustment{
		ID: "adj-1", ProductID: productID, AdjustmentType: typ,
		QuantityChange: change, OldQuantity: 5, NewQuantity: 5 + change,
		Reason: reason, AdminID: adminID,
	}
	return s.adjustment, nil
}

func newAdminRouter(store *stubAdminStore) *chi.Mux {
	r := chi.NewRouter()
	r.Use(auth.Middleware(testSecret))
	(&AdminHandler{Store: store, Log: zerolog.Nop()}).Register(r)
	return r
}

func patchStatus(t *testing.T, router http.Handler, token, orderID, status string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"status": status, "notes": "packed"})
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPatch, "/admin/orders/"+orderID+"/status", bytes.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(rec, r)
	return rec
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	router := newAdminRouter(&stubAdminStore{status: orders.StatusPending})

	rec := patchStatus(t, router, "", "o1", "processing")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = patchStatus(t, router, signToken(t, "user-1", false), "o1", "processing")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	store := &stubAdminStore{status: orders.StatusPending}
	router := newAdminRouter(store)

	rec := patchStatus(t, router, signToken(t, "admin-1", true), "o1", "processing")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var o orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, orders.StatusProcessing, o.Status)
	assert.Equal(t, "admin-1", store.lastActor)
	assert.Equal(t, "packed", store.lastNotes)
}

func TestUpdateStatusRejectsUnknownState(t *testing.T) {
	router := newAdminRouter(&stubAdminStore{status: orders.StatusPending})

	rec := patchStatus(t, router, signToken(t, "admin-1", true), "o1", "misplaced")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeValidation, decodeError(t, rec).Code)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	router := newAdminRouter(&stubAdminStore{status: orders.StatusDelivered})

	rec := patchStatus(t, router, signToken(t, "admin-1", true), "o1", "pending")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeInvalidTransition, decodeError(t, rec).Code)
}

func TestAdjustStock(t *testing.T) {
	store := &stubAdminStore{}
	router := newAdminRouter(store)

	body, _ := json.Marshal(map[string]any{"quantity_change": 10, "reason": "weekly restock"})
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/products/p1/stock", bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", true))
	router.ServeHTTP(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var adj orders.InventoryAdjustment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adj))
	assert.Equal(t, orders.AdjustmentRestock, adj.AdjustmentType)
	assert.Equal(t, 10, adj.QuantityChange)
	assert.Equal(t, 15, adj.NewQuantity)
	assert.Equal(t, "admin-1", adj.AdminID)
}

func TestAdjustStockRejectsZero(t *testing.T) {
	router := newAdminRouter(&stubAdminStore{})

	body, _ := json.Marshal(map[string]any{"quantity_change": 0, "reason": "noop"})
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/products/p1/stock", bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", true))
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
	CodeCartItemNotFound  = "CART_ITEM_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeSubtotalMismatch  = "SUBTOTAL_MISMATCH"
	CodePaymentFailed     = "PAYMENT_FAILED"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL"
)

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorBody struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	writeJSON(w, status, errorBody{Error: apiError{Code: code, Message: msg, Details: details}})
}

// writeError maps domain errors onto the stable error envelope the
// storefront branches on. Unknown errors become a generic 500; the full
// detail stays in the server log.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		ve *checkout.ValidationError
		se *orders.InsufficientStockError
		me *orders.SubtotalMismatchError
		pe *checkout.PaymentDeclinedError
		te *orders.InvalidTransitionError
	)
	switch {
	case errors.As(err, &ve):
		details := make(map[string]any, len(ve.Fields))
		for k, v := range ve.Fields {
			details[k] = v
		}
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid request", details)
	case errors.As(err, &se):
		writeErrorCode(w, http.StatusConflict, CodeInsufficientStock, se.Error(), map[string]any{
			"product_id": se.ProductID,
			"requested":  se.Requested,
			"available":  se.Available,
		})
	case errors.As(err, &me):
		writeErrorCode(w, http.StatusBadRequest, CodeSubtotalMismatch, me.Error(), nil)
	case errors.As(err, &pe):
		writeErrorCode(w, http.StatusBadRequest, CodePaymentFailed, pe.Error(), nil)
	case errors.As(err, &te):
		writeErrorCode(w, http.StatusConflict, CodeInvalidTransition, te.Error(), nil)
	case errors.Is(err, orders.ErrProductNotFound), errors.Is(err, catalog.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, CodeProductNotFound, "product not found or inactive", nil)
	case errors.Is(err, orders.ErrOrderNotFound):
		writeErrorCode(w, http.StatusNotFound, CodeOrderNotFound, "order not found", nil)
	case errors.Is(err, cart.ErrItemNotFound):
		writeErrorCode(w, http.StatusNotFound, CodeCartItemNotFound, "cart item not found", nil)
	default:
		log.Error().Err(err).Msg("internal error")
		writeErrorCode(w, http.StatusInternalServerError, CodeInternal, "something went wrong", nil)
	}
}

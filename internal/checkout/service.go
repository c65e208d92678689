package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/payment"
)

var knownPaymentMethods = map[string]bool{
	"card": true, "paypal": true, "bank_transfer": true, "cod": true,
}

// ValidationError collects static request problems before any product read.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid order request: " + strings.Join(parts, "; ")
}

// PaymentDeclinedError is a business outcome, not an infrastructure failure.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Reason == "" {
		return "payment was declined"
	}
	return "payment was declined: " + e.Reason
}

type OrderStore interface {
	CreateOrderTx(ctx context.Context, in orders.NewOrder) (*orders.Order, error)
}

// EventSink receives post-commit notifications. Implementations must be
// best-effort; a sink failure never unwinds a committed order.
type EventSink interface {
	OrderConfirmed(o *orders.Order)
}

// Service runs the order placement pipeline: static validation, price/stock
// validation, payment authorization, the atomic write, then notification.
type Service struct {
	Validator      *Validator
	Gateway        payment.Gateway
	Store          OrderStore
	Events         EventSink
	Log            zerolog.Logger
	MaxItems       int
	PaymentTimeout time.Duration
}

// PlaceOrder executes one checkout. userID is empty for guest checkout, in
// which case the request must carry a guest email.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req Request) (*orders.Order, error) {
	if err := s.checkRequest(userID, req); err != nil {
		return nil, err
	}

	lines, subtotal, err := s.Validator.Validate(ctx, req.Items, req.Subtotal)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	auth, err := s.authorize(ctx, payment.AuthRequest{
		Amount:    req.TotalAmount,
		Currency:  currency,
		Method:    req.PaymentMethod,
		Reference: fmt.Sprintf("checkout:%s:%d", userID, time.Now().UnixMilli()),
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Store.CreateOrderTx(ctx, orders.NewOrder{
		UserID:            userID,
		GuestEmail:        req.GuestEmail,
		Items:             lines,
		Subtotal:          subtotal,
		ShippingCost:      req.ShippingCost,
		TaxAmount:         req.TaxAmount,
		DiscountAmount:    req.DiscountAmount,
		TotalAmount:       req.TotalAmount,
		Currency:          currency,
		PaymentMethod:     req.PaymentMethod,
		PaymentRef:        auth.TransactionID,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		ShippingMethod:    req.ShippingMethod,
		PromoCode:         req.PromoCode,
		Notes:             req.Notes,
	})
	if err != nil {
		// the mock gateway has nothing to void; a real one would get a
		// reversal call here
		return nil, err
	}

	if s.Events != nil {
		s.Events.OrderConfirmed(order)
	}
	s.Log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Float64("total", order.TotalAmount).
		Int("items", len(order.Items)).
		Bool("guest", userID == "").
		Msg("order placed")
	return order, nil
}

func (s *Service) checkRequest(userID string, req Request) error {
	fields := map[string]string{}
	if len(req.Items) == 0 {
		fields["order_items"] = "at least one item is required"
	}
	if s.MaxItems > 0 && len(req.Items) > s.MaxItems {
		fields["order_items"] = fmt.Sprintf("at most %d items per order", s.MaxItems)
	}
	for i, it := range req.Items {
		if it.ProductID == "" {
			fields[fmt.Sprintf("order_items[%d].product_id", i)] = "required"
		}
		if it.Quantity < 1 {
			fields[fmt.Sprintf("order_items[%d].quantity", i)] = "must be at least 1"
		}
	}
	if !knownPaymentMethods[req.PaymentMethod] {
		fields["payment_method"] = "unknown payment method"
	}
	if req.ShippingAddressID == "" {
		fields["shipping_address_id"] = "required"
	}
	if req.BillingAddressID == "" {
		fields["billing_address_id"] = "required"
	}
	if req.ShippingMethod == "" {
		fields["shipping_method"] = "required"
	}
	if req.TotalAmount <= 0 {
		fields["total_amount"] = "must be positive"
	}
	if userID == "" && req.GuestEmail == "" {
		fields["guest_email"] = "required for guest checkout"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, req payment.AuthRequest) (payment.AuthResult, error) {
	// a hung gateway must not pin the request forever
	timeout := s.PaymentTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := s.Gateway.Authorize(ctx, req)
	if err != nil {
		return payment.AuthResult{}, fmt.Errorf("payment gateway: %w", err)
	}
	if !res.Authorized {
		return payment.AuthResult{}, &PaymentDeclinedError{Reason: res.Reason}
	}
	return res, nil
}

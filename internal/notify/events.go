package notify

import (
	"encoding/json"
	"time"
)

const (
	EventOrderConfirmed     = "OrderConfirmed"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Envelope wraps every published event; payload is event-specific.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ConfirmedItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
}

type OrderConfirmedPayload struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      string          `json:"user_id,omitempty"`
	GuestEmail  string          `json:"guest_email,omitempty"`
	Items       []ConfirmedItem `json:"items"`
	TotalAmount float64         `json:"total_amount"`
	Currency    string          `json:"currency"`
}

type StatusChangedPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id,omitempty"`
	GuestEmail  string `json:"guest_email,omitempty"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

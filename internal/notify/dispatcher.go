package notify

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

// Dispatcher publishes post-commit order events. Everything here is
// fire-and-forget: the order is already committed and a lost notification
// must not fail the request.
type Dispatcher struct {
	Confirmed     *kafkax.Producer // storefront.order.confirmed
	StatusChanged *kafkax.Producer // storefront.order.status
	Service       string
}

func (d *Dispatcher) OrderConfirmed(o *orders.Order) {
	items := make([]ConfirmedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ConfirmedItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		})
	}
	d.publish(d.Confirmed, EventOrderConfirmed, o.ID, OrderConfirmedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		GuestEmail:  o.GuestEmail,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
	})
}

func (d *Dispatcher) OrderStatusChanged(o *orders.Order, from, to orders.Status) {
	d.publish(d.StatusChanged, EventOrderStatusChanged, o.ID, StatusChangedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		GuestEmail:  o.GuestEmail,
		OldStatus:   string(from),
		NewStatus:   string(to),
	})
}

func (d *Dispatcher) publish(p *kafkax.Producer, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      d.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

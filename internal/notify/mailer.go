package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

// Mailer turns order events into customer messages. The transport is a
// stand-in that logs instead of sending; swapping in SMTP or a provider API
// only touches deliver.
type Mailer struct {
	Redis *redis.Client
	Log   zerolog.Logger
	Name  string // dedup namespace, usually the consumer group
}

// Handle is the kafka consumer handler for both order topics.
func (m *Mailer) Handle(ctx context.Context, msg kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// poison message: log and commit so it is not redelivered forever
		m.Log.Error().Err(err).Msg("undecodable event, skipping")
		return nil
	}

	if m.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, m.Name, env.EventID)
		if seen, _ := redisx.Exists(ctx, m.Redis, dkey); seen {
			return nil
		}
		_ = m.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	switch env.EventType {
	case EventOrderConfirmed:
		p, err := kafkax.UnwrapPayload[OrderConfirmedPayload](env.Payload)
		if err != nil {
			return err
		}
		return m.deliver(recipient(p.UserID, p.GuestEmail),
			fmt.Sprintf("Order %s confirmed", p.OrderNumber),
			fmt.Sprintf("%d item(s), %.2f %s", len(p.Items), p.TotalAmount, p.Currency))
	case EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[StatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return m.deliver(recipient(p.UserID, p.GuestEmail),
			fmt.Sprintf("Order %s update", p.OrderNumber),
			fmt.Sprintf("status changed from %s to %s", p.OldStatus, p.NewStatus))
	default:
		return nil
	}
}

func (m *Mailer) deliver(to, subject, body string) error {
	m.Log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("notification sent")
	return nil
}

func recipient(userID, guestEmail string) string {
	if guestEmail != "" {
		return guestEmail
	}
	return "user:" + userID
}

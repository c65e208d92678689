package kafka

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when the message was fully processed and the
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     zerolog.Logger
	commit  func(ctx context.Context, msgs ...kafka.Message) error
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log zerolog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     group,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		// manual commit after the handler succeeds
		CommitInterval: 0,
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:       r,
		workers: workers,
		log:     log.With().Str("group", group).Logger(),
		commit:  r.CommitMessages,
	}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 256)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.work(ctx, jobs, h)
		}()
	}

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			wg.Wait()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil
		}
	}
}

// work processes jobs until the channel closes. Errors are logged right here
// so a failing handler can never back up the dispatch loop; the message is
// simply not committed and will be redelivered.
func (c *Consumer) work(ctx context.Context, jobs <-chan kafka.Message, h Handler) {
	for m := range jobs {
		if err := h(ctx, m); err != nil {
			c.log.Error().Err(err).
				Str("topic", m.Topic).
				Int64("offset", m.Offset).
				Msg("handler failed, message not committed")
			continue
		}
		if err := c.commit(ctx, m); err != nil {
			c.log.Error().Err(err).
				Str("topic", m.Topic).
				Int64("offset", m.Offset).
				Msg("offset commit failed")
		}
	}
}

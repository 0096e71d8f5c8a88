package worker

import (
	"context"

	"ahliwaris/internal/platform/kafka/consumer"
	"ahliwaris/internal/platform/kafka/producer"
)

// Loopback hands relayed messages straight to a consumer handler. It stands in
// for Kafka when no brokers are configured, so the outbox still drains into the
// audit trail.
type Loopback struct {
	handler consumer.Handler
}

func NewLoopback(handler consumer.Handler) *Loopback {
	return &Loopback{handler: handler}
}

func (l *Loopback) Publish(ctx context.Context, msgs ...producer.Message) error {
	for _, m := range msgs {
		headers := make(map[string]string, len(m.Headers))
		for k, v := range m.Headers {
			headers[k] = v
		}
		if err := l.handler.Handle(ctx, &consumer.Message{
			Topic:   m.Topic,
			Key:     m.Key,
			Value:   m.Value,
			Headers: headers,
		}); err != nil {
			return err
		}
	}
	return nil
}

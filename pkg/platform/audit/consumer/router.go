package consumer

import (
	"context"
	"log/slog"
	"slices"

	"ahliwaris/internal/platform/kafka/consumer"
	"ahliwaris/pkg/platform/audit/worker"
)

// TopicHandler handles messages from a specific topic.
type TopicHandler interface {
	Handle(ctx context.Context, msg *consumer.Message) error
}

// Router dispatches messages by topic. Messages on an unrouted topic go to
// the fallback, or are logged and committed when there is none.
type Router struct {
	handlers map[string]TopicHandler
	fallback TopicHandler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger, fallback TopicHandler) *Router {
	return &Router{
		handlers: make(map[string]TopicHandler),
		fallback: fallback,
		logger:   logger,
	}
}

// NewAuditRouter routes both audit topics into store.
func NewAuditRouter(store EventStore, logger *slog.Logger) *Router {
	r := NewRouter(logger, nil)
	r.Register(worker.TopicCompliance, NewComplianceHandler(store, logger))
	r.Register(worker.TopicOperations, NewOpsHandler(store, logger))
	return r
}

func (r *Router) Register(topic string, handler TopicHandler) {
	r.handlers[topic] = handler
}

// Topics lists the routed topics in sorted order, for subscribing.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

func (r *Router) Handle(ctx context.Context, msg *consumer.Message) error {
	if handler, ok := r.handlers[msg.Topic]; ok {
		return handler.Handle(ctx, msg)
	}
	if r.fallback != nil {
		return r.fallback.Handle(ctx, msg)
	}
	r.logger.WarnContext(ctx, "no handler for topic, committing message",
		"topic", msg.Topic,
		"key", string(msg.Key),
	)
	return nil
}

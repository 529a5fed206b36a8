package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pawnworks/origination/internal/domain/port"
	"github.com/pawnworks/origination/internal/platform/kafka"
)

// CustomerUpdateFeed implements port.CustomerUpdateSource on top of a Kafka
// topic carrying customer-data-updated notifications. Subscribers are scoped
// to a workflow instance; unsubscribing stops deliveries for that instance
// without affecting others.
type CustomerUpdateFeed struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(port.CustomerUpdate)
}

// NewCustomerUpdateFeed creates an empty feed; wire it to Kafka with Consumer.
func NewCustomerUpdateFeed(logger *slog.Logger) *CustomerUpdateFeed {
	return &CustomerUpdateFeed{
		logger: logger,
		subs:   map[int]func(port.CustomerUpdate){},
	}
}

// Subscribe registers a handler and returns its unsubscribe func.
func (f *CustomerUpdateFeed) Subscribe(fn func(port.CustomerUpdate)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Dispatch fans a notification out to all current subscribers. Exposed so
// in-process producers (and tests) can feed the same pipe as Kafka.
func (f *CustomerUpdateFeed) Dispatch(update port.CustomerUpdate) {
	f.mu.Lock()
	handlers := make([]func(port.CustomerUpdate), 0, len(f.subs))
	for _, fn := range f.subs {
		handlers = append(handlers, fn)
	}
	f.mu.Unlock()

	for _, fn := range handlers {
		fn(update)
	}
}

// Consumer returns a Kafka consumer that decodes customer-updated messages
// into the feed. Run its Start in a goroutine; it stops with the context.
func (f *CustomerUpdateFeed) Consumer(cfg kafka.Config, topic string) *kafka.Consumer {
	handler := func(_ context.Context, msg kafka.Message) error {
		var update port.CustomerUpdate
		if err := json.Unmarshal(msg.Value, &update); err != nil {
			f.logger.Warn("dropping malformed customer update", "error", err)
			return nil
		}
		if update.CustomerID == "" {
			return nil
		}
		f.Dispatch(update)
		return nil
	}
	return kafka.NewConsumer(cfg, topic, handler, f.logger)
}

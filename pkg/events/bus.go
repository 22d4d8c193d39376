package events

import (
	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// AllTopic receives every published event regardless of its name.
const AllTopic = "safe:all"

// Bus delivers committed events to in-process subscribers.
// Handlers run synchronously in the publishing goroutine.
type Bus struct {
	logger *zap.Logger
	bus    evbus.Bus
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger,
		bus:    evbus.New(),
	}
}

// Publish delivers events in the order they were raised.
func (b *Bus) Publish(events []Event) {
	for _, e := range events {
		b.logger.Debug("publish event",
			zap.Stringer("name", e.Name),
			zap.Uint64("transaction", e.TransactionID),
			zap.Uint64("owner", e.OwnerID))
		b.bus.Publish(e.Name.String(), e)
		b.bus.Publish(AllTopic, e)
		eventPublished(e.Name)
	}
}

// Subscribe registers fn for events with the given name.
func (b *Bus) Subscribe(name Name, fn func(Event)) error {
	return b.bus.Subscribe(name.String(), fn)
}

// SubscribeAll registers fn for every event.
func (b *Bus) SubscribeAll(fn func(Event)) error {
	return b.bus.Subscribe(AllTopic, fn)
}

func (b *Bus) Unsubscribe(name Name, fn func(Event)) error {
	return b.bus.Unsubscribe(name.String(), fn)
}

package sources

import (
	"github.com/arnac-io/safekeeper/pkg/events"
)

// DeliveryFn receives a JSON encoded event.
type DeliveryFn func(name events.Name, eventData []byte)

// CancelFn has to be called to unsubscribe.
type CancelFn func()

type SubscribeToEventsOptions struct {
	// Names limits delivery to the given events. Empty means all events.
	Names []events.Name
}

// EventSource provides a way to subscribe to committed safe events.
type EventSource interface {
	SubscribeToEvents(deliveryFn DeliveryFn, opts SubscribeToEventsOptions) CancelFn
}

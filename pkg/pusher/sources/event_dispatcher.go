package sources

import (
	"sync"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/events"
)

type subscriberID int64

// EventDispatcher implements the fan-out pattern delivering every event
// published on the bus to the subscribers interested in it.
type EventDispatcher struct {
	logger *zap.Logger

	mu        sync.RWMutex
	byName    map[events.Name]map[subscriberID]DeliveryFn
	allEvents map[subscriberID]DeliveryFn
	options   map[subscriberID]SubscribeToEventsOptions
	currentID subscriberID
}

var _ EventSource = (*EventDispatcher)(nil)

func NewEventDispatcher(logger *zap.Logger) *EventDispatcher {
	return &EventDispatcher{
		logger:    logger,
		byName:    map[events.Name]map[subscriberID]DeliveryFn{},
		allEvents: map[subscriberID]DeliveryFn{},
		options:   map[subscriberID]SubscribeToEventsOptions{},
		currentID: 1,
	}
}

// Attach starts receiving events of the bus.
func (disp *EventDispatcher) Attach(bus *events.Bus) error {
	return bus.SubscribeAll(disp.Dispatch)
}

func (disp *EventDispatcher) Dispatch(event events.Event) {
	eventData := EncodeEvent(event)

	disp.mu.RLock()
	defer disp.mu.RUnlock()

	for _, deliveryFn := range disp.allEvents {
		deliveryFn(event.Name, eventData)
	}
	for _, deliveryFn := range disp.byName[event.Name] {
		deliveryFn(event.Name, eventData)
	}
}

func (disp *EventDispatcher) SubscribeToEvents(fn DeliveryFn, options SubscribeToEventsOptions) CancelFn {
	disp.mu.Lock()
	defer disp.mu.Unlock()

	id := disp.currentID
	disp.currentID += 1
	disp.options[id] = options

	if len(options.Names) == 0 {
		disp.allEvents[id] = fn
		return func() { disp.unsubscribe(id) }
	}
	for _, name := range options.Names {
		subscribers, ok := disp.byName[name]
		if !ok {
			subscribers = map[subscriberID]DeliveryFn{}
			disp.byName[name] = subscribers
		}
		subscribers[id] = fn
	}
	return func() { disp.unsubscribe(id) }
}

func (disp *EventDispatcher) unsubscribe(id subscriberID) {
	disp.mu.Lock()
	defer disp.mu.Unlock()

	options, ok := disp.options[id]
	if !ok {
		return
	}
	delete(disp.options, id)
	if len(options.Names) == 0 {
		delete(disp.allEvents, id)
		return
	}
	for _, name := range options.Names {
		subscribers, ok := disp.byName[name]
		if !ok {
			continue
		}
		delete(subscribers, id)
		if len(subscribers) == 0 {
			delete(disp.byName, name)
		}
	}
}

// EncodeEvent renders the fields set on event as a JSON object.
func EncodeEvent(event events.Event) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(event.Name.String())
	if event.OwnerID != 0 {
		e.FieldStart("owner_id")
		e.UInt64(event.OwnerID)
	}
	if event.TransactionID != 0 {
		e.FieldStart("transaction_id")
		e.UInt64(event.TransactionID)
	}
	if event.BalanceHistoryID != 0 {
		e.FieldStart("balance_history_id")
		e.UInt64(event.BalanceHistoryID)
	}
	if event.Token != nil {
		e.FieldStart("token")
		e.Str(event.Token.ToRaw())
	}
	if event.Error != "" {
		e.FieldStart("error")
		e.Str(event.Error)
	}
	e.ObjEnd()
	return e.Bytes()
}

package sse

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"

	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/pusher/sources"
)

var errUnknownEvent = errors.New("unknown event name")

var knownEvents = map[events.Name]struct{}{
	events.WalletOwnerAddition:         {},
	events.WalletOwnerRemoval:          {},
	events.TransactionCreated:          {},
	events.TransactionConfirmed:        {},
	events.TransactionRevoked:          {},
	events.TransactionRejected:         {},
	events.TransactionCancelled:        {},
	events.TransactionExecutionSuccess: {},
	events.TransactionExecutionFailure: {},
	events.TransactionRejectionSuccess: {},
	events.BalanceHistoryCreated:       {},
}

// Handler handles http methods for sse.
type Handler struct {
	source         sources.EventSource
	pingInterval   time.Duration
	currentEventID int64
}

func NewHandler(source sources.EventSource, pingInterval time.Duration) *Handler {
	return &Handler{
		source:         source,
		pingInterval:   pingInterval,
		currentEventID: time.Now().UnixNano(),
	}
}

// parseNames reads a comma separated list of event names. Empty means all.
func parseNames(namesStr string) ([]events.Name, error) {
	if namesStr == "" {
		return nil, nil
	}
	var names []events.Name
	for _, s := range strings.Split(namesStr, ",") {
		name := events.Name(strings.TrimSpace(s))
		if _, ok := knownEvents[name]; !ok {
			return nil, errors.Wrapf(errUnknownEvent, "%q", name)
		}
		names = append(names, name)
	}
	return names, nil
}

func (h *Handler) SubscribeToEvents(session *session, request *http.Request) error {
	names, err := parseNames(request.URL.Query().Get("events"))
	if err != nil {
		return err
	}
	cancelFn := h.source.SubscribeToEvents(func(name events.Name, data []byte) {
		session.SendEvent(Event{
			Name:    name,
			EventID: h.nextID(),
			Data:    data,
		})
	}, sources.SubscribeToEventsOptions{Names: names})
	session.SetCancelFn(cancelFn)
	return nil
}

// ServeHTTP streams the events selected by the "events" query parameter.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	_ = Stream(h.pingInterval, h.SubscribeToEvents)(writer, request)
}

func (h *Handler) nextID() int64 {
	return atomic.AddInt64(&h.currentEventID, 1)
}

package sse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/arnac-io/safekeeper/pkg/pusher/metrics"
	"github.com/arnac-io/safekeeper/pkg/pusher/sources"
)

const sessionQueueSize = 100

// session represents an HTTP connection from a client and
// implements a loop to stream events from a channel to http.ResponseWriter.
type session struct {
	eventCh      chan Event
	cancel       sources.CancelFn
	pingInterval time.Duration
}

func newSession(pingInterval time.Duration) *session {
	return &session{
		eventCh:      make(chan Event, sessionQueueSize),
		cancel:       func() {},
		pingInterval: pingInterval,
	}
}

// SendEvent never blocks the publisher: a client that can't keep up loses events.
func (s *session) SendEvent(event Event) {
	select {
	case s.eventCh <- event:
		metrics.SseEventSent(event.Name)
	default:
		metrics.SseEventDropped(event.Name)
	}
}

func (s *session) SetCancelFn(cancel sources.CancelFn) {
	s.cancel = cancel
}

func (s *session) StreamEvents(ctx context.Context, writer http.ResponseWriter) error {
	defer s.cancel()

	flusher := writer.(http.Flusher)
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case msg := <-s.eventCh:
			_, err = fmt.Fprintf(writer, "event: %v\nid: %v\ndata: %s\n\n", msg.Name, msg.EventID, msg.Data)
		case <-ticker.C:
			_, err = fmt.Fprintf(writer, "event: heartbeat\n\n")
		}
		if err != nil {
			// closing a connection
			return err
		}
		flusher.Flush()
	}
}

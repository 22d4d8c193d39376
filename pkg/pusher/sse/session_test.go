package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/pusher/sources"
)

func Test_session_StreamEvents(t *testing.T) {
	cancelIsCalled := atomic.Bool{}
	s := newSession(time.Hour)
	s.SetCancelFn(func() { cancelIsCalled.Store(true) })
	s.SendEvent(Event{Name: events.TransactionCreated, EventID: 1, Data: []byte(`{"a":1}`)})
	s.SendEvent(Event{Name: events.TransactionConfirmed, EventID: 2, Data: []byte(`{"a":2}`)})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	require.Nil(t, s.StreamEvents(ctx, rec))
	require.True(t, cancelIsCalled.Load())

	expectedBody := "event: TransactionCreated\nid: 1\ndata: {\"a\":1}\n\n" +
		"event: TransactionConfirmed\nid: 2\ndata: {\"a\":2}\n\n"
	require.Equal(t, expectedBody, rec.Body.String())
}

func Test_session_Heartbeat(t *testing.T) {
	s := newSession(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	require.Nil(t, s.StreamEvents(ctx, rec))
	require.Contains(t, rec.Body.String(), "event: heartbeat\n\n")
}

func Test_session_SendEventDoesNotBlock(t *testing.T) {
	s := newSession(time.Hour)
	for i := 0; i < sessionQueueSize+10; i++ {
		s.SendEvent(Event{Name: events.TransactionCreated, EventID: int64(i)})
	}
	require.Len(t, s.eventCh, sessionQueueSize)
}

type mockSource struct {
	opts      sources.SubscribeToEventsOptions
	deliver   chan sources.DeliveryFn
	cancelled atomic.Bool
}

func (m *mockSource) SubscribeToEvents(fn sources.DeliveryFn, opts sources.SubscribeToEventsOptions) sources.CancelFn {
	m.opts = opts
	m.deliver <- fn
	return func() { m.cancelled.Store(true) }
}

func TestHandler_ServeHTTP(t *testing.T) {
	source := &mockSource{deliver: make(chan sources.DeliveryFn, 1)}
	h := NewHandler(source, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/v1/events?events=TransactionCreated", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(rec, req)
	}()

	deliver := <-source.deliver
	require.Equal(t, []events.Name{events.TransactionCreated}, source.opts.Names)
	deliver(events.TransactionCreated, []byte(`{"name":"TransactionCreated"}`))
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	require.True(t, source.cancelled.Load())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "event: TransactionCreated\n")
	require.Contains(t, rec.Body.String(), `data: {"name":"TransactionCreated"}`)
}

func TestHandler_UnknownEvent(t *testing.T) {
	h := NewHandler(&mockSource{deliver: make(chan sources.DeliveryFn, 1)}, time.Hour)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events?events=Nope", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

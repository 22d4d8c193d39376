package sse

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/arnac-io/safekeeper/pkg/pusher/metrics"
)

type handlerFunc func(session *session, request *http.Request) error

func writeError(writer http.ResponseWriter, code int, err error) {
	writer.WriteHeader(code)
	writer.Write([]byte(err.Error()))
}

func Stream(pingInterval time.Duration, handler handlerFunc) func(http.ResponseWriter, *http.Request) error {
	return func(writer http.ResponseWriter, request *http.Request) error {
		if _, ok := writer.(http.Flusher); !ok {
			err := errors.New("streaming unsupported")
			writeError(writer, http.StatusInternalServerError, err)
			return err
		}
		session := newSession(pingInterval)
		if err := handler(session, request); err != nil {
			writeError(writer, http.StatusBadRequest, err)
			return err
		}

		writer.Header().Set("Content-Type", "text/event-stream")
		writer.Header().Set("Cache-Control", "no-cache")
		writer.Header().Set("Connection", "keep-alive")
		writer.WriteHeader(http.StatusOK)
		writer.(http.Flusher).Flush()

		metrics.OpenSseConnection()
		defer metrics.CloseSseConnection()

		return session.StreamEvents(request.Context(), writer)
	}
}

package sse

import (
	"github.com/arnac-io/safekeeper/pkg/events"
)

type Event struct {
	Name    events.Name
	EventID int64
	Data    []byte
}

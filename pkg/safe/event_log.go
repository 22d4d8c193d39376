package safe

import (
	"context"

	"github.com/arnac-io/safekeeper/pkg/events"
)

// Events lists the hashes of calls that raised events, most recent first.
func (s *Safe) Events(ctx context.Context, offset int) (entries []events.LogEntry, err error) {
	err = s.view(ctx, "get_events", func(st *state) error {
		entries, err = st.eventLog.Entries(offset, s.pageSize)
		return err
	})
	return entries, err
}

func (s *Safe) EventsCount(ctx context.Context) (count int, err error) {
	err = s.view(ctx, "get_events_count", func(st *state) error {
		count, err = st.eventLog.Len()
		return err
	})
	return count, err
}

package sources

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/events"
)

func TestEventDispatcher(t *testing.T) {
	tests := []struct {
		name      string
		opts      SubscribeToEventsOptions
		published []events.Event
		want      []events.Name
	}{
		{
			name: "all events",
			published: []events.Event{
				{Name: events.TransactionCreated, TransactionID: 1},
				{Name: events.TransactionConfirmed, TransactionID: 1, OwnerID: 2},
			},
			want: []events.Name{events.TransactionCreated, events.TransactionConfirmed},
		},
		{
			name: "filtered by name",
			opts: SubscribeToEventsOptions{Names: []events.Name{events.TransactionExecutionFailure}},
			published: []events.Event{
				{Name: events.TransactionCreated, TransactionID: 1},
				{Name: events.TransactionExecutionFailure, TransactionID: 1, Error: "boom"},
			},
			want: []events.Name{events.TransactionExecutionFailure},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := NewEventDispatcher(zap.NewNop())
			var got []events.Name
			cancel := disp.SubscribeToEvents(func(name events.Name, _ []byte) {
				got = append(got, name)
			}, tt.opts)
			for _, e := range tt.published {
				disp.Dispatch(e)
			}
			require.Equal(t, tt.want, got)

			cancel()
			disp.Dispatch(tt.published[len(tt.published)-1])
			require.Equal(t, tt.want, got)
			require.Empty(t, disp.options)
			require.Empty(t, disp.byName)
		})
	}
}

func TestEventDispatcher_Attach(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	disp := NewEventDispatcher(zap.NewNop())
	require.Nil(t, disp.Attach(bus))

	var data []string
	disp.SubscribeToEvents(func(_ events.Name, eventData []byte) {
		data = append(data, string(eventData))
	}, SubscribeToEventsOptions{})
	bus.Publish([]events.Event{{Name: events.WalletOwnerAddition, OwnerID: 3}})
	require.Equal(t, []string{`{"name":"WalletOwnerAddition","owner_id":3}`}, data)
}

func TestEncodeEvent(t *testing.T) {
	token := tongo.AccountID{Address: [32]byte{0xf}}
	got := EncodeEvent(events.Event{
		Name:             events.BalanceHistoryCreated,
		BalanceHistoryID: 4,
		Token:            &token,
	})
	require.Equal(t, `{"name":"BalanceHistoryCreated","balance_history_id":4,"token":"`+token.ToRaw()+`"}`, string(got))

	got = EncodeEvent(events.Event{Name: events.TransactionExecutionFailure, TransactionID: 2, Error: `bad "call"`})
	require.Equal(t, `{"name":"TransactionExecutionFailure","transaction_id":2,"error":"bad \"call\""}`, string(got))
}

package events

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBus_Publish(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var all []Name
	var created []uint64
	require.Nil(t, bus.SubscribeAll(func(e Event) {
		all = append(all, e.Name)
	}))
	require.Nil(t, bus.Subscribe(TransactionCreated, func(e Event) {
		created = append(created, e.TransactionID)
	}))

	var buf Buffer
	buf.Emit(Event{Name: TransactionCreated, TransactionID: 1, OwnerID: 2})
	buf.Emit(Event{Name: TransactionConfirmed, TransactionID: 1, OwnerID: 2})
	buf.Emit(Event{Name: TransactionCreated, TransactionID: 2, OwnerID: 3})
	bus.Publish(buf.Events())

	require.Equal(t, []Name{TransactionCreated, TransactionConfirmed, TransactionCreated}, all)
	require.Equal(t, []uint64{1, 2}, created)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	calls := 0
	fn := func(Event) { calls++ }
	require.Nil(t, bus.Subscribe(WalletOwnerAddition, fn))
	bus.Publish([]Event{{Name: WalletOwnerAddition}})
	require.Nil(t, bus.Unsubscribe(WalletOwnerAddition, fn))
	bus.Publish([]Event{{Name: WalletOwnerAddition}})
	require.Equal(t, 1, calls)
}

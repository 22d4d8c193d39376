package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

func withTxn(t *testing.T, fn func(txn kvstore.Txn)) {
	store, err := kvstore.NewBadgerStore(zap.NewNop())
	require.Nil(t, err)
	defer store.Close()
	require.Nil(t, store.Update(context.Background(), func(txn kvstore.Txn) error {
		fn(txn)
		return nil
	}))
}

func TestIDFactory(t *testing.T) {
	withTxn(t, func(txn kvstore.Txn) {
		owners := NewIDFactory(txn, "owner")
		txs := NewIDFactory(txn, "transaction")
		for want := uint64(1); want <= 3; want++ {
			id, err := owners.Next()
			require.Nil(t, err)
			require.Equal(t, want, id)
		}
		id, err := txs.Next()
		require.Nil(t, err)
		require.Equal(t, uint64(1), id)
		id, err = NewIDFactory(txn, "owner").Next()
		require.Nil(t, err)
		require.Equal(t, uint64(4), id)
	})
}

func TestLinkedSet_Page(t *testing.T) {
	tests := []struct {
		name     string
		appended []uint64
		removed  []uint64
		offset   int
		size     int
		want     []uint64
	}{
		{
			name:     "all most recent first",
			appended: []uint64{1, 2, 3, 4},
			offset:   0,
			size:     4,
			want:     []uint64{4, 3, 2, 1},
		},
		{
			name:     "offset and limit",
			appended: []uint64{1, 2, 3, 4, 5},
			offset:   1,
			size:     2,
			want:     []uint64{4, 3},
		},
		{
			name:     "offset past the end",
			appended: []uint64{1, 2},
			offset:   2,
			size:     10,
			want:     nil,
		},
		{
			name:     "remove head middle and tail",
			appended: []uint64{1, 2, 3, 4, 5},
			removed:  []uint64{5, 3, 1},
			offset:   0,
			size:     10,
			want:     []uint64{4, 2},
		},
		{
			name:     "remove everything",
			appended: []uint64{7, 8},
			removed:  []uint64{7, 8},
			offset:   0,
			size:     10,
			want:     nil,
		},
		{
			name:   "empty",
			offset: 0,
			size:   10,
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTxn(t, func(txn kvstore.Txn) {
				l := NewLinkedSet(txn, "test")
				for _, id := range tt.appended {
					require.Nil(t, l.Append(id))
				}
				for _, id := range tt.removed {
					require.Nil(t, l.Remove(id))
				}
				got, err := l.Page(tt.offset, tt.size)
				require.Nil(t, err)
				require.Equal(t, tt.want, got)
				size, err := l.Len()
				require.Nil(t, err)
				require.Equal(t, len(tt.appended)-len(tt.removed), size)
			})
		})
	}
}

func TestLinkedSet_AppendAfterRemove(t *testing.T) {
	withTxn(t, func(txn kvstore.Txn) {
		l := NewLinkedSet(txn, "test")
		require.Nil(t, l.Append(1))
		require.Nil(t, l.Append(2))
		require.Nil(t, l.Remove(2))
		require.Nil(t, l.Append(3))
		require.Nil(t, l.Append(2))

		got, err := l.Page(0, 10)
		require.Nil(t, err)
		require.Equal(t, []uint64{2, 3, 1}, got)

		head, ok, err := l.Head()
		require.Nil(t, err)
		require.True(t, ok)
		require.Equal(t, uint64(2), head)
	})
}

func TestLinkedSet_Errors(t *testing.T) {
	withTxn(t, func(txn kvstore.Txn) {
		l := NewLinkedSet(txn, "test")
		_, ok, err := l.Head()
		require.Nil(t, err)
		require.False(t, ok)

		require.Nil(t, l.Append(1))
		require.ErrorIs(t, l.Append(1), ErrDuplicateID)
		require.ErrorIs(t, l.Remove(2), ErrNotFound)
		require.NotNil(t, l.Append(0))

		ok, err = l.Contains(1)
		require.Nil(t, err)
		require.True(t, ok)
		require.Nil(t, l.Remove(1))
		ok, err = l.Contains(1)
		require.Nil(t, err)
		require.False(t, ok)
	})
}

func TestLinkedSet_Isolation(t *testing.T) {
	withTxn(t, func(txn kvstore.Txn) {
		a := NewLinkedSet(txn, "a")
		b := NewLinkedSet(txn, "b")
		require.Nil(t, a.Append(1))
		require.Nil(t, b.Append(2))
		got, err := a.Page(0, 10)
		require.Nil(t, err)
		require.Equal(t, []uint64{1}, got)
	})
}

func TestSet(t *testing.T) {
	withTxn(t, func(txn kvstore.Txn) {
		s := NewSet(txn, "confirmations")
		added, err := s.Add(3)
		require.Nil(t, err)
		require.True(t, added)
		added, err = s.Add(3)
		require.Nil(t, err)
		require.False(t, added)
		_, err = s.Add(1)
		require.Nil(t, err)

		size, err := s.Len()
		require.Nil(t, err)
		require.Equal(t, 2, size)
		members, err := s.Members()
		require.Nil(t, err)
		require.ElementsMatch(t, []uint64{1, 3}, members)

		removed, err := s.Remove(3)
		require.Nil(t, err)
		require.True(t, removed)
		removed, err = s.Remove(3)
		require.Nil(t, err)
		require.False(t, removed)
		ok, err := s.Contains(1)
		require.Nil(t, err)
		require.True(t, ok)
		size, err = s.Len()
		require.Nil(t, err)
		require.Equal(t, 1, size)
	})
}

func TestDict(t *testing.T) {
	withTxn(t, func(txn kvstore.Txn) {
		d := NewDict(txn, "addresses")
		_, ok, err := d.Get("x")
		require.Nil(t, err)
		require.False(t, ok)

		require.Nil(t, d.Set("b", 2))
		require.Nil(t, d.Set("a", 1))
		v, ok, err := d.Get("b")
		require.Nil(t, err)
		require.True(t, ok)
		require.Equal(t, uint64(2), v)

		keys, err := d.Keys()
		require.Nil(t, err)
		require.Equal(t, []string{"a", "b"}, keys)

		require.Nil(t, d.Delete("a"))
		_, ok, err = d.Get("a")
		require.Nil(t, err)
		require.False(t, ok)
	})
}

func TestVar(t *testing.T) {
	withTxn(t, func(txn kvstore.Txn) {
		n := NewVar(txn, "required")
		v, err := n.Uint64()
		require.Nil(t, err)
		require.Equal(t, uint64(0), v)
		require.Nil(t, n.SetUint64(2))
		v, err = NewVar(txn, "required").Uint64()
		require.Nil(t, err)
		require.Equal(t, uint64(2), v)

		s := NewVar(txn, "name")
		_, ok, err := s.Text()
		require.Nil(t, err)
		require.False(t, ok)
		require.Nil(t, s.SetText("treasury"))
		name, ok, err := s.Text()
		require.Nil(t, err)
		require.True(t, ok)
		require.Equal(t, "treasury", name)
	})
}

func TestRecordKey(t *testing.T) {
	require.NotEqual(t, RecordKey("a", 1), RecordKey("a", 2))
	require.NotEqual(t, RecordKey("a", 1), RecordKey("b", 1))
	require.Less(t, string(RecordKey("a", 255)), string(RecordKey("a", 256)))
}

package collection

import (
	"encoding/binary"
	"errors"

	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

var (
	ErrDuplicateID = errors.New("id already in collection")
	ErrNotFound    = errors.New("id not in collection")
)

func key(name string, parts ...string) []byte {
	k := []byte(name)
	for _, p := range parts {
		k = append(k, '|')
		k = append(k, p...)
	}
	return k
}

func idKey(prefix []byte, id uint64) []byte {
	k := make([]byte, len(prefix), len(prefix)+8)
	copy(k, prefix)
	return binary.BigEndian.AppendUint64(k, id)
}

func encodeUint64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.New("corrupted integer value")
	}
	return binary.BigEndian.Uint64(b), nil
}

// getUint64 treats a missing key as zero.
func getUint64(txn kvstore.Txn, k []byte) (uint64, error) {
	raw, err := txn.Get(k)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeUint64(raw)
}

func setUint64(txn kvstore.Txn, k []byte, v uint64) error {
	return txn.Set(k, encodeUint64(v))
}

// RecordKey is the key of the entity with the given id in namespace name.
func RecordKey(name string, id uint64) []byte {
	return idKey(key(name, "record", ""), id)
}

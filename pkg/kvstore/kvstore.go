package kvstore

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// Txn is a read or read-write view of the keyspace. A Txn must not be used
// after the function it was handed to returns.
type Txn interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Iterate walks all keys with the given prefix in ascending order.
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

type Store interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Txn) error) error
	// Update runs fn in a read-write transaction. The transaction is
	// committed only if fn returns nil.
	Update(ctx context.Context, fn func(Txn) error) error
	Close() error
}

// GetRecord loads the JSON record stored under key into v.
func GetRecord(txn Txn, key []byte, v any) error {
	raw, err := txn.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func SetRecord(txn Txn, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, raw)
}

// Exists reports whether key is present.
func Exists(txn Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

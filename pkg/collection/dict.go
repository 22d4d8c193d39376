package collection

import (
	"errors"

	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

// Dict maps string keys to ids.
type Dict struct {
	txn    kvstore.Txn
	prefix []byte
}

func NewDict(txn kvstore.Txn, name string) *Dict {
	return &Dict{txn: txn, prefix: key(name, "entry", "")}
}

func (d *Dict) entry(k string) []byte {
	e := make([]byte, 0, len(d.prefix)+len(k))
	return append(append(e, d.prefix...), k...)
}

// Get returns 0 and false when k is absent.
func (d *Dict) Get(k string) (uint64, bool, error) {
	raw, err := d.txn.Get(d.entry(k))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := decodeUint64(raw)
	return v, err == nil, err
}

func (d *Dict) Set(k string, v uint64) error {
	return d.txn.Set(d.entry(k), encodeUint64(v))
}

func (d *Dict) Delete(k string) error {
	return d.txn.Delete(d.entry(k))
}

// Keys returns all keys in ascending byte order.
func (d *Dict) Keys() ([]string, error) {
	var keys []string
	err := d.txn.Iterate(d.prefix, func(k, _ []byte) error {
		keys = append(keys, string(k[len(d.prefix):]))
		return nil
	})
	return keys, err
}

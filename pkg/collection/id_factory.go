package collection

import "github.com/arnac-io/safekeeper/pkg/kvstore"

// IDFactory allocates strictly increasing ids for one namespace. The first
// id is 1, 0 is never returned and means "no id".
type IDFactory struct {
	txn kvstore.Txn
	key []byte
}

func NewIDFactory(txn kvstore.Txn, namespace string) *IDFactory {
	return &IDFactory{txn: txn, key: key("id_factory", namespace)}
}

func (f *IDFactory) Next() (uint64, error) {
	last, err := getUint64(f.txn, f.key)
	if err != nil {
		return 0, err
	}
	next := last + 1
	if err := setUint64(f.txn, f.key, next); err != nil {
		return 0, err
	}
	return next, nil
}

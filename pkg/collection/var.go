package collection

import (
	"errors"

	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

// Var is a single named persistent value.
type Var struct {
	txn kvstore.Txn
	key []byte
}

func NewVar(txn kvstore.Txn, name string) *Var {
	return &Var{txn: txn, key: key(name, "value")}
}

// Uint64 returns 0 when the value was never set.
func (v *Var) Uint64() (uint64, error) {
	return getUint64(v.txn, v.key)
}

func (v *Var) SetUint64(x uint64) error {
	return setUint64(v.txn, v.key, x)
}

// Text returns false when the value was never set.
func (v *Var) Text() (string, bool, error) {
	raw, err := v.txn.Get(v.key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(raw), true, nil
}

func (v *Var) SetText(s string) error {
	return v.txn.Set(v.key, []byte(s))
}

package params

import (
	"math/big"

	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
)

// Args gives named, typed access to decoded params.
type Args map[string]core.Value

func NewArgs(params []core.Param) Args {
	args := make(Args, len(params))
	for _, p := range params {
		args[p.Name] = p.Value
	}
	return args
}

func lookup[T core.Value](a Args, name string) (T, error) {
	var zero T
	v, ok := a[name]
	if !ok {
		return zero, errors.Wrapf(core.ErrMalformedParams, "missing param %q", name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(core.ErrMalformedParams, "param %q has type %v, expected %v", name, v.Type(), zero.Type())
	}
	return t, nil
}

func (a Args) Int(name string) (*big.Int, error) {
	v, err := lookup[core.IntValue](a, name)
	return v.V, err
}

func (a Args) Str(name string) (string, error) {
	v, err := lookup[core.StrValue](a, name)
	return v.V, err
}

func (a Args) Bool(name string) (bool, error) {
	v, err := lookup[core.BoolValue](a, name)
	return v.V, err
}

func (a Args) Address(name string) (tongo.AccountID, error) {
	v, err := lookup[core.AddressValue](a, name)
	return v.V, err
}

func (a Args) Bytes(name string) ([]byte, error) {
	v, err := lookup[core.BytesValue](a, name)
	return v.V, err
}

// Uint64 reads an int param that must fit an id or a counter.
func (a Args) Uint64(name string) (uint64, error) {
	i, err := a.Int(name)
	if err != nil {
		return 0, err
	}
	if i.Sign() < 0 || !i.IsUint64() {
		return 0, errors.Wrapf(core.ErrMalformedParams, "param %q is out of range", name)
	}
	return i.Uint64(), nil
}

package core

import (
	"math/big"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimals of the native currency.
const NativeDecimals = 9

// ParseAmount converts a human readable amount like "1.5" into base units.
func ParseAmount(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "parse %q", s)
	}
	units := d.Shift(decimals)
	if !units.IsInteger() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimals", s, decimals)
	}
	if units.IsNegative() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is negative", s)
	}
	return units.BigInt(), nil
}

// FormatAmount is the inverse of ParseAmount.
func FormatAmount(units *big.Int, decimals int32) string {
	if units == nil {
		return "0"
	}
	return decimal.NewFromBigInt(units, -decimals).String()
}

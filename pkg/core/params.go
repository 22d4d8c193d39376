package core

import (
	"math/big"

	"github.com/tonkeeper/tongo"
)

// ParamType is the declared type of a call parameter.
type ParamType string

const (
	ParamInt     ParamType = "int"
	ParamStr     ParamType = "str"
	ParamBool    ParamType = "bool"
	ParamAddress ParamType = "Address"
	ParamBytes   ParamType = "bytes"
)

// Value is a decoded call parameter. The set of implementations is closed.
type Value interface {
	Type() ParamType
	isValue()
}

type IntValue struct{ V *big.Int }

type StrValue struct{ V string }

type BoolValue struct{ V bool }

type AddressValue struct{ V tongo.AccountID }

type BytesValue struct{ V []byte }

func (IntValue) Type() ParamType     { return ParamInt }
func (StrValue) Type() ParamType     { return ParamStr }
func (BoolValue) Type() ParamType    { return ParamBool }
func (AddressValue) Type() ParamType { return ParamAddress }
func (BytesValue) Type() ParamType   { return ParamBytes }

func (IntValue) isValue()     {}
func (StrValue) isValue()     {}
func (BoolValue) isValue()    {}
func (AddressValue) isValue() {}
func (BytesValue) isValue()   {}

type Param struct {
	Name  string
	Value Value
}

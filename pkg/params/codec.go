// Package params converts the JSON list of typed call parameters attached to
// an outgoing transaction into core values and back.
//
// The wire format is a list of objects, each holding three strings:
//
//	[{"name": "_to", "type": "Address", "value": "0:6ccd...d220"},
//	 {"name": "_value", "type": "int", "value": "0x10"}]
package params

import (
	"encoding/hex"
	"io"
	"math/big"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
)

// Decode parses raw params. An empty string means no params.
func Decode(raw string) ([]core.Param, error) {
	if raw == "" {
		return nil, nil
	}
	var params []core.Param
	d := jx.DecodeStr(raw)
	err := d.Arr(func(d *jx.Decoder) error {
		var name, typ, value string
		var hasName, hasType, hasValue bool
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				name, err = d.Str()
				hasName = true
			case "type":
				typ, err = d.Str()
				hasType = true
			case "value":
				if d.Next() != jx.String {
					return errors.New("value type must be str")
				}
				value, err = d.Str()
				hasValue = true
			default:
				return d.Skip()
			}
			return err
		})
		if err != nil {
			return err
		}
		if !hasName || !hasType || !hasValue {
			return errors.New("param requires name, type and value")
		}
		v, err := Convert(core.ParamType(typ), value)
		if err != nil {
			return errors.Wrapf(err, "param %q", name)
		}
		params = append(params, core.Param{Name: name, Value: v})
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrMalformedParams) {
			return nil, err
		}
		return nil, errors.Wrapf(core.ErrMalformedParams, "%v", err)
	}
	if err := d.Skip(); err != io.EOF {
		return nil, errors.Wrap(core.ErrMalformedParams, "unexpected trailing data")
	}
	return params, nil
}

// Convert decodes a single string value of the given type.
func Convert(typ core.ParamType, value string) (core.Value, error) {
	switch typ {
	case core.ParamInt:
		if isOctalLiteral(value) {
			return nil, convertError(typ, value)
		}
		i, ok := new(big.Int).SetString(value, 0)
		if !ok {
			return nil, convertError(typ, value)
		}
		return core.IntValue{V: i}, nil
	case core.ParamStr:
		return core.StrValue{V: value}, nil
	case core.ParamBool:
		switch value {
		case "True", "0x1", "1":
			return core.BoolValue{V: true}, nil
		case "False", "0x0", "0":
			return core.BoolValue{V: false}, nil
		}
		return nil, convertError(typ, value)
	case core.ParamAddress:
		a, err := tongo.ParseAccountID(value)
		if err != nil {
			return nil, convertError(typ, value)
		}
		return core.AddressValue{V: a}, nil
	case core.ParamBytes:
		b, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
		if err != nil {
			return nil, convertError(typ, value)
		}
		return core.BytesValue{V: b}, nil
	}
	return nil, errors.Wrapf(errors.Join(core.ErrMalformedParams, core.ErrUnsupportedType), "%q", typ)
}

func convertError(typ core.ParamType, value string) error {
	return errors.Wrapf(core.ErrMalformedParams, "cannot convert %q from type %v", value, typ)
}

// isOctalLiteral reports a decimal with a leading zero such as "010". Only
// prefixed literals (0x, 0o, 0b) may start with zero, unless the value is zero.
func isOctalLiteral(value string) bool {
	digits := strings.TrimPrefix(strings.TrimPrefix(value, "-"), "+")
	if len(digits) < 2 || digits[0] != '0' {
		return false
	}
	switch digits[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}
	return strings.Trim(digits, "0_") != ""
}

// Format renders v the way Convert expects it.
func Format(v core.Value) string {
	switch x := v.(type) {
	case core.IntValue:
		return x.V.String()
	case core.StrValue:
		return x.V
	case core.BoolValue:
		if x.V {
			return "True"
		}
		return "False"
	case core.AddressValue:
		return x.V.ToRaw()
	case core.BytesValue:
		return "0x" + hex.EncodeToString(x.V)
	}
	return ""
}

// Encode is the inverse of Decode.
func Encode(params []core.Param) string {
	if len(params) == 0 {
		return ""
	}
	var e jx.Encoder
	e.ArrStart()
	for _, p := range params {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(p.Name)
		e.FieldStart("type")
		e.Str(string(p.Value.Type()))
		e.FieldStart("value")
		e.Str(Format(p.Value))
		e.ObjEnd()
	}
	e.ArrEnd()
	return string(e.Bytes())
}

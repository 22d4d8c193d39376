package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
)

const testAddress = "0:6ccd325a858c379693fae2bcaab1c2906831a4e10a6c3bb44ee8b615bca1d220"

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      []core.Param
		wantErr   error
		wantErrIs []error
	}{
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
		{
			name: "all types",
			raw: `[{"name":"a","type":"int","value":"0x10"},
				{"name":"b","type":"str","value":"hello"},
				{"name":"c","type":"bool","value":"0x1"},
				{"name":"d","type":"Address","value":"` + testAddress + `"},
				{"name":"e","type":"bytes","value":"0xdead"}]`,
			want: []core.Param{
				{Name: "a", Value: core.IntValue{V: big.NewInt(16)}},
				{Name: "b", Value: core.StrValue{V: "hello"}},
				{Name: "c", Value: core.BoolValue{V: true}},
				{Name: "d", Value: core.AddressValue{V: tongo.MustParseAccountID(testAddress)}},
				{Name: "e", Value: core.BytesValue{V: []byte{0xde, 0xad}}},
			},
		},
		{
			name: "negative decimal int and false bool",
			raw:  `[{"name":"a","type":"int","value":"-42"},{"name":"b","type":"bool","value":"False"}]`,
			want: []core.Param{
				{Name: "a", Value: core.IntValue{V: big.NewInt(-42)}},
				{Name: "b", Value: core.BoolValue{V: false}},
			},
		},
		{
			name:      "unsupported type",
			raw:       `[{"name":"a","type":"float","value":"1.5"}]`,
			wantErrIs: []error{core.ErrMalformedParams, core.ErrUnsupportedType},
		},
		{
			name:      "bad int",
			raw:       `[{"name":"a","type":"int","value":"ten"}]`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name:      "bad bool",
			raw:       `[{"name":"a","type":"bool","value":"yes"}]`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name:      "value is not a string",
			raw:       `[{"name":"a","type":"int","value":10}]`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name:      "missing type",
			raw:       `[{"name":"a","value":"10"}]`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name:      "trailing garbage",
			raw:       `[{"name":"a","type":"int","value":"1"}] garbage`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name:      "extra closing brackets",
			raw:       `[{"name":"a","type":"int","value":"1"}]]]`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name:      "second array",
			raw:       `[] []`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name: "trailing whitespace",
			raw:  "[{\"name\":\"a\",\"type\":\"int\",\"value\":\"0o10\"}]\n ",
			want: []core.Param{{Name: "a", Value: core.IntValue{V: big.NewInt(8)}}},
		},
		{
			name:      "leading zero decimal",
			raw:       `[{"name":"a","type":"int","value":"010"}]`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name:      "negative leading zero decimal",
			raw:       `[{"name":"a","type":"int","value":"-07"}]`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
		{
			name: "prefixed literals",
			raw:  `[{"name":"a","type":"int","value":"0b101"},{"name":"b","type":"int","value":"-0x1F"}]`,
			want: []core.Param{
				{Name: "a", Value: core.IntValue{V: big.NewInt(5)}},
				{Name: "b", Value: core.IntValue{V: big.NewInt(-31)}},
			},
		},
		{
			name:      "not json",
			raw:       `{name`,
			wantErrIs: []error{core.ErrMalformedParams},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if len(tt.wantErrIs) > 0 {
				require.NotNil(t, err)
				for _, target := range tt.wantErrIs {
					require.ErrorIs(t, err, target)
				}
				return
			}
			require.Nil(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_Zero(t *testing.T) {
	for _, value := range []string{"0", "00", "-0", "0x0"} {
		v, err := Convert(core.ParamInt, value)
		require.Nil(t, err, value)
		require.Equal(t, 0, v.(core.IntValue).V.Sign(), value)
	}
}

func TestEncodeDecode(t *testing.T) {
	in := []core.Param{
		{Name: "wallet_owner_uid", Value: core.IntValue{V: big.NewInt(3)}},
		{Name: "new_address", Value: core.AddressValue{V: tongo.MustParseAccountID(testAddress)}},
		{Name: "new_name", Value: core.StrValue{V: `quoted "name"`}},
	}
	out, err := Decode(Encode(in))
	require.Nil(t, err)
	require.Equal(t, in, out)
	require.Equal(t, "", Encode(nil))
}

func TestArgs(t *testing.T) {
	args := NewArgs([]core.Param{
		{Name: "uid", Value: core.IntValue{V: big.NewInt(7)}},
		{Name: "name", Value: core.StrValue{V: "bob"}},
		{Name: "neg", Value: core.IntValue{V: big.NewInt(-1)}},
	})
	uid, err := args.Uint64("uid")
	require.Nil(t, err)
	require.Equal(t, uint64(7), uid)

	name, err := args.Str("name")
	require.Nil(t, err)
	require.Equal(t, "bob", name)

	_, err = args.Address("name")
	require.ErrorIs(t, err, core.ErrMalformedParams)
	_, err = args.Str("missing")
	require.ErrorIs(t, err, core.ErrMalformedParams)
	_, err = args.Uint64("neg")
	require.ErrorIs(t, err, core.ErrMalformedParams)
}

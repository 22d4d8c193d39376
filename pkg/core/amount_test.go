package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int32
		want     *big.Int
		wantErr  bool
	}{
		{name: "integer units", input: "100", decimals: 0, want: big.NewInt(100)},
		{name: "native", input: "1.5", decimals: NativeDecimals, want: big.NewInt(1_500_000_000)},
		{name: "zero", input: "0", decimals: NativeDecimals, want: big.NewInt(0)},
		{name: "too many decimals", input: "0.5", decimals: 0, wantErr: true},
		{name: "negative", input: "-1", decimals: 0, wantErr: true},
		{name: "garbage", input: "ten", decimals: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.decimals)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.Nil(t, err)
			require.Equal(t, 0, tt.want.Cmp(got))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "1.5", FormatAmount(big.NewInt(1_500_000_000), NativeDecimals))
	require.Equal(t, "0.0000001", FormatAmount(big.NewInt(100), NativeDecimals))
	require.Equal(t, "0", FormatAmount(nil, NativeDecimals))
}

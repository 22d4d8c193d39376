package g

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"event", "event"},
		{"TransactionCreated", "transaction_created"},
		{"WalletOwnerAddition", "wallet_owner_addition"},
		{"Balance2History", "balance2_history"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, CamelToSnake(tt.input))
		})
	}
}

func TestNilToNil(t *testing.T) {
	require.Nil(t, NilToNil(strconv.Itoa, nil))
	require.Equal(t, Pointer("7"), NilToNil(strconv.Itoa, Pointer(7)))

	_, err := NilToNilError(strconv.Atoi, Pointer("x"))
	require.NotNil(t, err)
	got, err := NilToNilError(strconv.Atoi, Pointer("12"))
	require.Nil(t, err)
	require.Equal(t, 12, *got)
}

type color string

func TestStrings(t *testing.T) {
	colors := []color{"red", "blue"}
	require.Equal(t, []string{"red", "blue"}, ToStrings(colors))
	require.Equal(t, colors, FromStrings[color]([]string{"red", "blue"}))
}

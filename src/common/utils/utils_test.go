package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x1000000000000000000000000000000000000001")
	require.NoError(t, err)
	require.Equal(t, "0x1000000000000000000000000000000000000001", addr.Hex())

	for _, bad := range []string{"", "0x123", "1000000000000000000000000000000000000001", "0xZZ00000000000000000000000000000000000001"} {
		_, err := ParseAddress(bad)
		require.Error(t, err, bad)
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("1000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000", amount.String())

	amount, err = ParseAmount("0")
	require.NoError(t, err)
	require.Zero(t, amount.Sign())

	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		_, err := ParseAmount(bad)
		require.Error(t, err, bad)
	}
}

func TestParseTokenID(t *testing.T) {
	id, err := ParseTokenID("42")
	require.NoError(t, err)
	require.Equal(t, int64(42), id.Int64())

	for _, bad := range []string{"", "-1", "0x1", "forty-two"} {
		_, err := ParseTokenID(bad)
		require.Error(t, err, bad)
	}
}

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	var raw [AddressLength]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	encoded := Format(raw)
	require.Contains(t, encoded, "rwd1")

	parsed, err := ParseAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, raw, parsed)

	decoded, err := DecodeAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, LedgerPrefix, decoded.Prefix())
	require.Equal(t, raw[:], decoded.Bytes())
}

func TestParseAddressHex(t *testing.T) {
	parsed, err := ParseAddress("0x00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	require.Equal(t, byte(0xff), parsed[19])

	_, err = ParseAddress("0x1234")
	require.Error(t, err)
}

func TestParseAddressRejectsForeignPrefix(t *testing.T) {
	var raw [AddressLength]byte
	raw[0] = 9
	foreign := NewAddress("other", raw[:]).String()
	_, err := ParseAddress(foreign)
	require.Error(t, err)

	_, err = ParseAddress("   ")
	require.Error(t, err)
}

package compact

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/beamterm/term"
)

func TestUintFromBytes(t *testing.T) {
	tests := []struct {
		input []byte
		want  uint64
		ok    bool
	}{
		{[]byte{0x00}, 0, true},
		{[]byte{0xFF}, 0xFF, true},
		{[]byte{0x01, 0x00}, 0x100, true},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, 0xFFFFFFFFFFFFFFFF, true},
		{[]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, 0xFFFFFFFFFFFFFFFF, true},
		{[]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 0, false},
	}

	for _, tc := range tests {
		got, ok := uintFromBytes(tc.input)
		require.Equal(t, tc.ok, ok, "input %x", tc.input)
		if tc.ok {
			require.Equal(t, tc.want, got, "input %x", tc.input)
		}
	}
}

func TestSignedFromBytes(t *testing.T) {
	tests := []struct {
		input []byte
		want  int64
	}{
		{[]byte{0xFF, 0xFF}, -1},
		{[]byte{0x80, 0x00}, -32768},
		{[]byte{0x7F, 0xFF}, 32767},
		{[]byte{0xFF, 0x7F, 0xFF}, -32769},
		{[]byte{0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, -0x8000000000000000},
	}

	for _, tc := range tests {
		got := signedFromBytes(tc.input)
		require.True(t, term.Equal(term.NewInt(tc.want), got), "input %x: got %s", tc.input, got)
	}
}

func TestSignedFromBytes_Wide(t *testing.T) {
	// Nine 0xFF bytes are -1 at width 72.
	got := signedFromBytes([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.True(t, term.Equal(term.NewInt(-1), got))

	// 0xFF then eight zero bytes is -2^64 at width 72.
	want := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 64))
	got = signedFromBytes([]byte{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	require.True(t, term.Equal(term.NewBigInt(want), got))
}

func TestUnsignedBytes(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{2048, []byte{0x08, 0x00}},
		{0xFFFF, []byte{0x00, 0xFF, 0xFF}},
		{0x7FFF, []byte{0x7F, 0xFF}},
		{0x8000, []byte{0x00, 0x80, 0x00}},
		{0x10000, []byte{0x01, 0x00, 0x00}},
		{0xFFFFFFFFFFFFFFFF, []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, unsignedBytes(tc.value), "value %#x", tc.value)
	}
}

func TestNegativeBytes(t *testing.T) {
	tests := []struct {
		value int64
		want  []byte
	}{
		{-1, []byte{0xFF, 0xFF}},
		{-128, []byte{0xFF, 0x80}},
		{-129, []byte{0xFF, 0x7F}},
		{-32768, []byte{0x80, 0x00}},
		{-32769, []byte{0xFF, 0x7F, 0xFF}},
		{-65536, []byte{0xFF, 0x00, 0x00}},
		{-8388608, []byte{0x80, 0x00, 0x00}},
	}

	for _, tc := range tests {
		got := negativeBytes(term.NewInt(tc.value))
		require.Equal(t, tc.want, got, "value %d", tc.value)
		require.NotZero(t, got[0]&0x80, "value %d must keep its sign bit", tc.value)
	}
}

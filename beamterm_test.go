package beamterm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/beamterm/errs"
	"github.com/arloliu/beamterm/term"
)

func TestDecode(t *testing.T) {
	got, rest, err := Decode([]byte{0x53, 0x0B, 0x64})
	require.NoError(t, err)
	require.Equal(t, term.XReg(5), got)
	require.Equal(t, []byte{0x0B, 0x64}, rest)

	_, _, err = Decode(nil)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestDecodeAll(t *testing.T) {
	terms, err := DecodeAll([]byte{0x53, 0x0B, 0x64})
	require.NoError(t, err)
	require.Len(t, terms, 2)
	require.Equal(t, term.XReg(5), terms[0])
	require.Equal(t, term.XReg(100), terms[1])
}

func TestEncodeRoundtrip(t *testing.T) {
	enc := Encode(term.List{term.Atom(1), term.NewInt(-2)})
	require.True(t, Roundtrip(enc))

	got, rest, err := Decode(enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, term.Equal(term.List{term.Atom(1), term.NewInt(-2)}, got))
}

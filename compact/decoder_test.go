package compact

import (
	"encoding/binary"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/beamterm/errs"
	"github.com/arloliu/beamterm/term"
)

func TestDecode_SmallForm(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  term.Term
	}{
		{"x0", []byte{0x03}, term.XReg(0)},
		{"x5", []byte{0x53}, term.XReg(5)},
		{"x15", []byte{0xF3}, term.XReg(15)},
		{"y7", []byte{0x74}, term.YReg(7)},
		{"label5", []byte{0x55}, term.Label(5)},
		{"atom1", []byte{0x12}, term.Atom(1)},
		{"literal3", []byte{0x30}, term.Literal(3)},
		{"char10", []byte{0xA6}, term.Char(10)},
		{"integer0", []byte{0x01}, term.NewInt(0)},
		{"integer9", []byte{0x91}, term.NewInt(9)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, rest, err := Decode(tc.input)
			require.NoError(t, err)
			require.Empty(t, rest)
			require.True(t, term.Equal(tc.want, got), "got %s, want %s", got, tc.want)
		})
	}
}

func TestDecode_MediumForm(t *testing.T) {
	got, rest, err := Decode([]byte{0x0B, 0x64})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, term.XReg(100), got)

	got, rest, err = Decode([]byte{0x6B, 0xE8})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, term.XReg(1000), got)

	// Maximum medium value.
	got, _, err = Decode([]byte{0xEB, 0xFF})
	require.NoError(t, err)
	require.Equal(t, term.XReg(2047), got)
}

func TestDecode_LeavesRemainder(t *testing.T) {
	got, rest, err := Decode([]byte{0x03, 0xFF, 0xAB})
	require.NoError(t, err)
	require.Equal(t, term.XReg(0), got)
	require.Equal(t, []byte{0xFF, 0xAB}, rest)
}

func TestDecode_LargeForm(t *testing.T) {
	// 2 bytes, embedded size.
	got, _, err := Decode([]byte{0x1B, 0x08, 0x00})
	require.NoError(t, err)
	require.Equal(t, term.XReg(2048), got)

	// 3 bytes with leading zero pad.
	got, _, err = Decode([]byte{0x3B, 0x00, 0x80, 0x00})
	require.NoError(t, err)
	require.Equal(t, term.XReg(0x8000), got)

	// 8 bytes, the largest embedded size.
	got, _, err = Decode([]byte{0xDB, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)
	require.Equal(t, term.XReg(0x7FFFFFFFFFFFFFFF), got)
}

func TestDecode_LargeFormEscapeSize(t *testing.T) {
	// 9-byte field: escape starter, size term Integer(0), then the field.
	input := []byte{0xFB, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	got, rest, err := Decode(input)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, term.XReg(math.MaxUint64), got)
}

func TestDecode_SignRuleIntegerOnly(t *testing.T) {
	// The same 2-byte field is negative under the Integer tag and a large
	// unsigned index under every other tag.
	neg, _, err := Decode([]byte{0x19, 0xFF, 0xFF})
	require.NoError(t, err)
	require.True(t, term.Equal(term.NewInt(-1), neg))

	reg, _, err := Decode([]byte{0x1B, 0xFF, 0xFF})
	require.NoError(t, err)
	require.Equal(t, term.XReg(0xFFFF), reg)

	lbl, _, err := Decode([]byte{0x1D, 0x80, 0x00})
	require.NoError(t, err)
	require.Equal(t, term.Label(0x8000), lbl)
}

func TestDecode_NegativeIntegers(t *testing.T) {
	tests := []struct {
		input []byte
		want  int64
	}{
		{[]byte{0x19, 0xFF, 0xFF}, -1},
		{[]byte{0x19, 0xFF, 0x80}, -128},
		{[]byte{0x19, 0xFF, 0x7F}, -129},
		{[]byte{0x19, 0x80, 0x00}, -32768},
		{[]byte{0x39, 0xFF, 0x7F, 0xFF}, -32769},
	}

	for _, tc := range tests {
		got, rest, err := Decode(tc.input)
		require.NoError(t, err)
		require.Empty(t, rest)
		require.True(t, term.Equal(term.NewInt(tc.want), got), "input %x: got %s", tc.input, got)
	}
}

func TestDecode_WideInteger(t *testing.T) {
	// A positive value wider than 64 bits: 2^64 is nine significant bytes.
	input := []byte{0xF9, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	got, rest, err := Decode(input)
	require.NoError(t, err)
	require.Empty(t, rest)

	want := new(big.Int).Lsh(big.NewInt(1), 64)
	require.True(t, term.Equal(term.NewBigInt(want), got))
}

func TestDecode_WideIndexRejected(t *testing.T) {
	// Nine significant bytes under a register tag cannot fit a uint64.
	input := []byte{0xFB, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, _, err := Decode(input)
	require.ErrorIs(t, err, errs.ErrMalformedFraming)
}

func TestDecode_Float(t *testing.T) {
	// 1.0 is 0x3FF0000000000000.
	got, rest, err := Decode([]byte{0x07, 0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, term.Float(1.0), got)

	input := binary.BigEndian.AppendUint64([]byte{0x07}, math.Float64bits(3.14159))
	got, rest, err = Decode(input)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, term.Float(3.14159), got)
}

func TestDecode_List(t *testing.T) {
	// List of [atom1, integer2].
	got, rest, err := Decode([]byte{0x17, 0x21, 0x12, 0x21})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, term.Equal(term.List{term.Atom(1), term.NewInt(2)}, got))
}

func TestDecode_EmptyList(t *testing.T) {
	got, rest, err := Decode([]byte{0x17, 0x01})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, term.Equal(term.List{}, got))
}

func TestDecode_NestedList(t *testing.T) {
	// [x1 [x2]]
	got, _, err := Decode([]byte{0x17, 0x21, 0x13, 0x17, 0x11, 0x23})
	require.NoError(t, err)
	require.True(t, term.Equal(term.List{term.XReg(1), term.List{term.XReg(2)}}, got))
}

func TestDecode_FloatReg(t *testing.T) {
	got, rest, err := Decode([]byte{0x27, 0x31})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, term.FloatReg(3), got)
}

func TestDecode_Alloc(t *testing.T) {
	// Two (kind, count) pairs.
	got, rest, err := Decode([]byte{0x37, 0x21, 0x01, 0x21, 0x11, 0x31})
	require.NoError(t, err)
	require.Empty(t, rest)

	want := term.Alloc{
		{Kind: term.NewInt(0), Count: term.NewInt(2)},
		{Kind: term.NewInt(1), Count: term.NewInt(3)},
	}
	require.True(t, term.Equal(want, got))
}

func TestDecode_TypedReg(t *testing.T) {
	got, rest, err := Decode([]byte{0x57, 0x53, 0x09, 0x2A})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, term.Equal(term.TypedReg{Reg: term.XReg(5), Type: 42}, got))
}

func TestDecode_ExtendedLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  term.Literal
	}{
		{"inner integer", []byte{0x47, 0x51}, term.Literal(5)},
		{"inner literal", []byte{0x47, 0xC0}, term.Literal(12)},
		{"inner atom", []byte{0x47, 0x12}, term.Literal(1)},
		{"inner x register", []byte{0x47, 0x53}, term.Literal(5)},
		{"inner label", []byte{0x47, 0x25}, term.Literal(2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, rest, err := Decode(tc.input)
			require.NoError(t, err)
			require.Empty(t, rest)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_ExtendedLiteralRejectsNegative(t *testing.T) {
	_, _, err := Decode([]byte{0x47, 0x19, 0xFF, 0xFF})
	require.ErrorIs(t, err, errs.ErrMalformedFraming)
}

func TestDecode_ExtendedLiteralRejectsFloat(t *testing.T) {
	input := append([]byte{0x47, 0x07}, make([]byte, 8)...)
	_, _, err := Decode(input)
	require.ErrorIs(t, err, errs.ErrMalformedFraming)
}

func TestDecode_UnknownSubTag(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  term.Extended
	}{
		{"small form", []byte{0x67}, term.Extended{SubTag: 0x60, Value: 6}},
		{"medium form", []byte{0x2F, 0x2C}, term.Extended{SubTag: 0x28, Value: 300}},
		{"large form", []byte{0x3F, 0x00, 0x80, 0x00}, term.Extended{SubTag: 0x38, Value: 0x8000}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, rest, err := Decode(tc.input)
			require.NoError(t, err)
			require.Empty(t, rest)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_UnknownSubTagNeverSignExtends(t *testing.T) {
	// Large field with the high bit set stays unsigned under tag 7.
	got, _, err := Decode([]byte{0x1F, 0xFF, 0xFF})
	require.NoError(t, err)
	require.Equal(t, term.Extended{SubTag: 0x18, Value: 0xFFFF}, got)
}

func TestDecode_UnexpectedEOF(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"medium missing byte", []byte{0x0B}},
		{"large missing field", []byte{0x1B, 0x08}},
		{"escape missing size", []byte{0xFB}},
		{"escape missing field", []byte{0xFB, 0x01, 0x00, 0xFF}},
		{"float truncated", []byte{0x07, 0x40, 0x09}},
		{"list missing items", []byte{0x17, 0x21, 0x12}},
		{"alloc missing pair", []byte{0x37, 0x11, 0x01}},
		{"typed reg missing type", []byte{0x57, 0x53}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.input)
			require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
		})
	}
}

func TestDecode_MalformedFraming(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"list length is a register", []byte{0x17, 0x03}},
		{"alloc length is an atom", []byte{0x37, 0x12}},
		{"escape size is a register", []byte{0xFB, 0x03}},
		{"escape size is negative", []byte{0xFB, 0x19, 0xFF, 0xFF}},
		{"float reg index is a label", []byte{0x27, 0x15}},
		{"typed reg type is a list", []byte{0x57, 0x53, 0x17, 0x01}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.input)
			require.ErrorIs(t, err, errs.ErrMalformedFraming)
		})
	}
}

func TestDecode_ListLengthBoundedByInput(t *testing.T) {
	// Claims 2000 items with two bytes of input left.
	_, _, err := Decode([]byte{0x17, 0xE9, 0xD0, 0x11, 0x21})
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestDecode_NonCanonicalInput(t *testing.T) {
	// A value of 5 spelled in the medium form decodes fine; the canonical
	// form is one byte, so it does not round-trip.
	got, rest, err := Decode([]byte{0x0B, 0x05})
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, term.XReg(5), got)
	require.Equal(t, []byte{0x53}, Encode(got))
}

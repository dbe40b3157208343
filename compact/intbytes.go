package compact

import (
	"math/big"

	"github.com/arloliu/beamterm/term"
)

// This file centralizes the byte-to-integer conversions shared by the decoder
// and encoder. Sign extension is tag-conditional: only the Integer primary tag
// interprets the large-form byte field as two's-complement, and only when the
// high bit of its first byte is set. Every other tag reads the field as
// unsigned big-endian regardless of the high bit.

// uintFromBytes interprets b as an unsigned big-endian integer.
// Returns false when the significant width exceeds 64 bits.
func uintFromBytes(b []byte) (uint64, bool) {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}

	if len(b)-i > 8 {
		return 0, false
	}

	var v uint64
	for ; i < len(b); i++ {
		v = v<<8 | uint64(b[i])
	}

	return v, true
}

// signedFromBytes interprets b as a two's-complement big-endian integer of
// width len(b)*8 bits. The caller has already checked the high bit; b is
// always non-empty.
func signedFromBytes(b []byte) term.Integer {
	if len(b) <= 8 {
		var u uint64
		for _, c := range b {
			u = u<<8 | uint64(c)
		}

		shift := uint(64 - 8*len(b))

		return term.NewInt(int64(u<<shift) >> shift)
	}

	v := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}

	return term.NewBigInt(v)
}

// unsignedIntegerFromBytes interprets b as an unsigned big-endian integer of
// arbitrary width and wraps it as an Integer payload.
func unsignedIntegerFromBytes(b []byte) term.Integer {
	if u, ok := uintFromBytes(b); ok {
		if u <= maxInt64 {
			return term.NewInt(int64(u))
		}

		return term.NewBigInt(new(big.Int).SetUint64(u))
	}

	return term.NewBigInt(new(big.Int).SetBytes(b))
}

const maxInt64 = 1<<63 - 1

// unsignedBytes renders v as the minimal big-endian byte sequence, with a
// leading zero byte added when the natural rendering's high bit is set. The
// zero byte keeps the field unambiguously non-negative under the sign rule.
// Only called for v >= 2048, so the result is always at least two bytes.
func unsignedBytes(v uint64) []byte {
	n := 0
	for tmp := v; tmp != 0; tmp >>= 8 {
		n++
	}

	pad := 0
	if v>>(8*(n-1))&0x80 != 0 {
		pad = 1
	}

	b := make([]byte, pad+n)
	for i := pad + n - 1; i >= pad; i-- {
		b[i] = byte(v)
		v >>= 8
	}

	return b
}

// bigUnsignedBytes is unsignedBytes for values wider than 64 bits. v is
// strictly positive.
func bigUnsignedBytes(v *big.Int) []byte {
	b := v.Bytes()
	if b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}

	return b
}

// negativeBytes renders a negative Integer payload as the minimum-width
// two's-complement big-endian field whose high bit is set. The width is
// floored at two bytes because the large form cannot carry a single byte;
// values down to -0x8000 take the 16-bit fast path. When the magnitude's top
// bit straddles a byte boundary the natural rendering comes out with a clear
// high bit, and a 0xFF byte is prepended to restore the sign.
func negativeBytes(i term.Integer) []byte {
	if v, ok := i.Int64(); ok && v >= -0x8000 {
		return []byte{byte(uint16(v) >> 8), byte(v)}
	}

	n := i.BigInt()
	mag := new(big.Int).Neg(n)
	width := (mag.BitLen() + 7) / 8

	// n + 2^(8*width) is the two's-complement value in width bytes.
	tc := new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), uint(8*width)))
	b := tc.FillBytes(make([]byte, width))
	if b[0]&0x80 == 0 {
		b = append([]byte{0xFF}, b...)
	}

	return b
}

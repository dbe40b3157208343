package compact

import (
	"encoding/binary"
	"math"

	"github.com/arloliu/beamterm/term"
)

// Encode renders a term as its canonical compact encoding.
//
// The output is the shortest legal form, which is what the BEAM compiler
// emits; Decode(Encode(t)) yields t with an empty remainder for every term
// whose payloads satisfy the model invariants.
//
// Parameters:
//   - t: The term to encode
//
// Returns:
//   - []byte: Canonical encoded bytes
func Encode(t term.Term) []byte {
	return AppendTerm(nil, t)
}

// AppendTerm appends the canonical compact encoding of t to dst and returns
// the extended slice. This is the allocation-friendly form of Encode.
func AppendTerm(dst []byte, t term.Term) []byte {
	switch v := t.(type) {
	case term.Literal:
		return appendTagged(dst, term.TagLiteral, uint64(v))
	case term.Atom:
		return appendTagged(dst, term.TagAtom, uint64(v))
	case term.XReg:
		return appendTagged(dst, term.TagXReg, uint64(v))
	case term.YReg:
		return appendTagged(dst, term.TagYReg, uint64(v))
	case term.Label:
		return appendTagged(dst, term.TagLabel, uint64(v))
	case term.Char:
		return appendTagged(dst, term.TagChar, uint64(v))

	case term.Integer:
		return appendInteger(dst, v)

	case term.Float:
		dst = append(dst, term.SubFloat)
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(float64(v)))

	case term.FloatReg:
		dst = append(dst, term.SubFloatReg)
		return appendTagged(dst, term.TagInteger, uint64(v))

	case term.TypedReg:
		dst = append(dst, term.SubTypedReg)
		dst = AppendTerm(dst, v.Reg)
		return appendTagged(dst, term.TagInteger, v.Type)

	case term.List:
		dst = append(dst, term.SubList)
		dst = appendTagged(dst, term.TagInteger, uint64(len(v)))
		for _, item := range v {
			dst = AppendTerm(dst, item)
		}
		return dst

	case term.Alloc:
		dst = append(dst, term.SubAlloc)
		dst = appendTagged(dst, term.TagInteger, uint64(len(v)))
		for _, e := range v {
			dst = AppendTerm(dst, e.Kind)
			dst = AppendTerm(dst, e.Count)
		}
		return dst

	case term.Extended:
		return appendExtended(dst, v)

	default:
		// The term interface is sealed; this is unreachable for values
		// produced by Decode or the term constructors.
		panic("compact: unknown term variant")
	}
}

// appendTagged appends the canonical tagged encoding of a non-negative value.
func appendTagged(dst []byte, tag term.Tag, v uint64) []byte {
	switch {
	case v < 16:
		return append(dst, byte(v<<4)|byte(tag))
	case v < 2048:
		return append(dst, byte(v>>8<<5)|wordBit|byte(tag), byte(v))
	default:
		return appendLarge(dst, tag, unsignedBytes(v))
	}
}

// appendLarge appends a large-form starter for the given byte field, using
// the embedded size for up to 8 bytes and the escape size beyond that.
func appendLarge(dst []byte, tag term.Tag, field []byte) []byte {
	if n := len(field); n <= 8 {
		dst = append(dst, byte(n-2)<<5|wordBit|largeBit|byte(tag))
	} else {
		dst = append(dst, 0xE0|wordBit|largeBit|byte(tag))
		dst = appendTagged(dst, term.TagInteger, uint64(n-9))
	}

	return append(dst, field...)
}

// appendInteger encodes an Integer payload. Non-negative values take the
// shared tagged path; negative values always take the large form because the
// small and medium forms are unsigned by construction.
func appendInteger(dst []byte, v term.Integer) []byte {
	if v.Sign() < 0 {
		return appendLarge(dst, term.TagInteger, negativeBytes(v))
	}

	if u, ok := v.Uint64(); ok {
		return appendTagged(dst, term.TagInteger, u)
	}

	return appendLarge(dst, term.TagInteger, bigUnsignedBytes(v.BigInt()))
}

// appendExtended re-emits a preserved unknown sub-tag. The value is encoded
// with the ordinary length forms and the starter byte's high five bits are
// then replaced with the original sub-tag bits, reproducing the starter the
// decoder saw.
func appendExtended(dst []byte, v term.Extended) []byte {
	start := len(dst)
	dst = appendTagged(dst, term.TagExtended, v.Value)
	dst[start] = v.SubTag&0xF8 | byte(term.TagExtended)

	return dst
}

package compact

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/beamterm/errs"
	"github.com/arloliu/beamterm/term"
)

const (
	tagMask = 0x07

	// Starter byte bits 3 and 4 discriminate the length form.
	wordBit  = 0x08 // set for the medium and large forms
	largeBit = 0x10 // set together with wordBit for the large forms
)

// Decode parses one compact term from the front of data and returns the term
// together with the unconsumed remainder.
//
// Parameters:
//   - data: Byte slice starting at a term boundary
//
// Returns:
//   - term.Term: The decoded operand term
//   - []byte: The remaining bytes after the term
//   - error: errs.ErrUnexpectedEOF when a read would pass the end of data,
//     errs.ErrMalformedFraming when an inner term violates its shape
func Decode(data []byte) (term.Term, []byte, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: term starter", errs.ErrUnexpectedEOF)
	}

	tag := term.Tag(data[0] & tagMask)
	if tag == term.TagExtended {
		return decodeExtended(data)
	}

	if tag == term.TagInteger {
		val, rest, err := decodeInteger(data)
		if err != nil {
			return nil, nil, err
		}

		return val, rest, nil
	}

	v, rest, err := decodeUnsigned(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s operand: %w", tag, err)
	}

	switch tag {
	case term.TagLiteral:
		return term.Literal(v), rest, nil
	case term.TagAtom:
		return term.Atom(v), rest, nil
	case term.TagXReg:
		return term.XReg(v), rest, nil
	case term.TagYReg:
		return term.YReg(v), rest, nil
	case term.TagLabel:
		return term.Label(v), rest, nil
	default: // term.TagChar
		return term.Char(v), rest, nil
	}
}

// decodeRaw parses the length-discriminated value field that starts at
// data[0]. For the small and medium forms the value is returned directly and
// field is nil. For both large forms the raw big-endian byte field is
// returned so the caller can apply the tag-conditional sign rule.
func decodeRaw(data []byte) (val uint64, field []byte, rest []byte, err error) {
	b0 := data[0]

	switch {
	case b0&wordBit == 0:
		// Small form: the value is the top nibble.
		return uint64(b0 >> 4), nil, data[1:], nil

	case b0&largeBit == 0:
		// Medium form: 3 high bits of the starter plus one following byte.
		if len(data) < 2 {
			return 0, nil, nil, fmt.Errorf("%w: medium form", errs.ErrUnexpectedEOF)
		}

		return uint64(b0&0xE0)<<3 | uint64(data[1]), nil, data[2:], nil

	default:
		n := int(b0>>5) + 2
		rest = data[1:]

		if b0>>5 == 7 {
			// Escape form: the byte count is itself a compact term.
			sizeTerm, sizeRest, err := Decode(rest)
			if err != nil {
				return 0, nil, nil, fmt.Errorf("escape size: %w", err)
			}

			k, err := requireLength(sizeTerm)
			if err != nil {
				return 0, nil, nil, fmt.Errorf("escape size: %w", err)
			}

			n = k + 9
			rest = sizeRest
		}

		if len(rest) < n {
			return 0, nil, nil, fmt.Errorf("%w: large form field (%d bytes)", errs.ErrUnexpectedEOF, n)
		}

		return 0, rest[:n], rest[n:], nil
	}
}

// decodeUnsigned parses a value field and interprets any large-form byte
// field as unsigned big-endian. Used for every tag except Integer, and for
// unknown extended sub-tags.
func decodeUnsigned(data []byte) (uint64, []byte, error) {
	val, field, rest, err := decodeRaw(data)
	if err != nil {
		return 0, nil, err
	}

	if field == nil {
		return val, rest, nil
	}

	v, ok := uintFromBytes(field)
	if !ok {
		return 0, nil, fmt.Errorf("%w: value wider than 64 bits", errs.ErrMalformedFraming)
	}

	return v, rest, nil
}

// decodeInteger parses a value field under the Integer tag. A large-form
// field whose first byte has the high bit set is two's-complement; everything
// else is unsigned.
func decodeInteger(data []byte) (term.Integer, []byte, error) {
	val, field, rest, err := decodeRaw(data)
	if err != nil {
		return term.Integer{}, nil, fmt.Errorf("integer operand: %w", err)
	}

	if field == nil {
		return term.NewInt(int64(val)), rest, nil
	}

	if field[0]&0x80 != 0 {
		return signedFromBytes(field), rest, nil
	}

	return unsignedIntegerFromBytes(field), rest, nil
}

// decodeExtended dispatches on the full starter byte when the primary tag is 7.
func decodeExtended(data []byte) (term.Term, []byte, error) {
	switch data[0] {
	case term.SubFloat:
		if len(data) < 9 {
			return nil, nil, fmt.Errorf("%w: float literal", errs.ErrUnexpectedEOF)
		}

		f := math.Float64frombits(binary.BigEndian.Uint64(data[1:9]))

		return term.Float(f), data[9:], nil

	case term.SubList:
		count, rest, err := decodeCount(data[1:], "list length")
		if err != nil {
			return nil, nil, err
		}

		items := make(term.List, 0, count)
		for i := 0; i < count; i++ {
			var item term.Term
			item, rest, err = Decode(rest)
			if err != nil {
				return nil, nil, fmt.Errorf("list item %d: %w", i, err)
			}

			items = append(items, item)
		}

		return items, rest, nil

	case term.SubFloatReg:
		idx, rest, err := decodeIndex(data[1:], "float register")
		if err != nil {
			return nil, nil, err
		}

		return term.FloatReg(idx), rest, nil

	case term.SubAlloc:
		count, rest, err := decodeCount(data[1:], "alloc length")
		if err != nil {
			return nil, nil, err
		}

		entries := make(term.Alloc, 0, count)
		for i := 0; i < count; i++ {
			var kind, amount term.Term

			kind, rest, err = Decode(rest)
			if err != nil {
				return nil, nil, fmt.Errorf("alloc entry %d kind: %w", i, err)
			}

			amount, rest, err = Decode(rest)
			if err != nil {
				return nil, nil, fmt.Errorf("alloc entry %d count: %w", i, err)
			}

			entries = append(entries, term.AllocEntry{Kind: kind, Count: amount})
		}

		return entries, rest, nil

	case term.SubLiteralExt:
		inner, rest, err := Decode(data[1:])
		if err != nil {
			return nil, nil, fmt.Errorf("extended literal: %w", err)
		}

		idx, ok := indexPayload(inner)
		if !ok {
			return nil, nil, fmt.Errorf("%w: extended literal index from %T", errs.ErrMalformedFraming, inner)
		}

		return term.Literal(idx), rest, nil

	case term.SubTypedReg:
		reg, rest, err := Decode(data[1:])
		if err != nil {
			return nil, nil, fmt.Errorf("typed register: %w", err)
		}

		typeIdx, rest, err := decodeIndex(rest, "type index")
		if err != nil {
			return nil, nil, err
		}

		return term.TypedReg{Reg: reg, Type: typeIdx}, rest, nil

	default:
		// Unknown sub-tag. The starter byte doubles as a length-form starter
		// with primary tag 7, so the value decodes with the ordinary rules
		// and sign extension suppressed. Preserving the sub-tag lets the
		// encoder re-emit the same bytes.
		v, rest, err := decodeUnsigned(data)
		if err != nil {
			return nil, nil, fmt.Errorf("extended sub-tag 0x%02X: %w", data[0]&0xF8, err)
		}

		return term.Extended{SubTag: data[0] & 0xF8, Value: v}, rest, nil
	}
}

// decodeCount decodes a length prefix, which is a full compact term
// constrained to a non-negative Integer. The count is additionally bounded by
// the remaining input so a corrupt prefix cannot trigger a huge allocation.
func decodeCount(data []byte, what string) (int, []byte, error) {
	t, rest, err := Decode(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", what, err)
	}

	n, err := requireLength(t)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", what, err)
	}

	// Every encoded term occupies at least one byte.
	if n > len(rest) {
		return 0, nil, fmt.Errorf("%w: %s %d exceeds remaining input", errs.ErrUnexpectedEOF, what, n)
	}

	return n, rest, nil
}

// decodeIndex decodes a term that must be a non-negative Integer and returns
// its payload as an index.
func decodeIndex(data []byte, what string) (uint64, []byte, error) {
	t, rest, err := Decode(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", what, err)
	}

	i, ok := t.(term.Integer)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s is %T, not an integer", errs.ErrMalformedFraming, what, t)
	}

	u, ok := i.Uint64()
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s out of range", errs.ErrMalformedFraming, what)
	}

	return u, rest, nil
}

// requireLength extracts a non-negative int from an Integer term.
func requireLength(t term.Term) (int, error) {
	i, ok := t.(term.Integer)
	if !ok {
		return 0, fmt.Errorf("%w: %T is not an integer", errs.ErrMalformedFraming, t)
	}

	v, ok := i.Int64()
	if !ok || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: length %s out of range", errs.ErrMalformedFraming, i)
	}

	return int(v), nil
}

// indexPayload extracts the numeric payload of any index-bearing variant.
// The extended literal escape accepts whichever variant the compiler used for
// the index; only shapes with no numeric payload are rejected.
func indexPayload(t term.Term) (uint64, bool) {
	switch v := t.(type) {
	case term.Integer:
		return v.Uint64()
	case term.Literal:
		return uint64(v), true
	case term.Atom:
		return uint64(v), true
	case term.XReg:
		return uint64(v), true
	case term.YReg:
		return uint64(v), true
	case term.Label:
		return uint64(v), true
	case term.Char:
		return uint64(v), true
	default:
		return 0, false
	}
}

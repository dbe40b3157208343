package compact

import (
	"bytes"
	"fmt"

	"github.com/arloliu/beamterm/term"
)

// DecodeAll decodes terms from data until no bytes remain.
//
// Parameters:
//   - data: Byte slice containing zero or more concatenated compact terms
//
// Returns:
//   - []term.Term: Decoded terms in input order; empty input yields an empty slice
//   - error: The first decode failure, wrapped with the term's position
func DecodeAll(data []byte) ([]term.Term, error) {
	terms := make([]term.Term, 0, 8)

	for len(data) > 0 {
		t, rest, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("term %d: %w", len(terms), err)
		}

		terms = append(terms, t)
		data = rest
	}

	return terms, nil
}

// EncodeAll concatenates the canonical encodings of terms.
func EncodeAll(terms []term.Term) []byte {
	var dst []byte
	for _, t := range terms {
		dst = AppendTerm(dst, t)
	}

	return dst
}

// Roundtrip reports whether data is the canonical encoding of exactly one
// term. It returns false on any decode failure, on trailing bytes, and on
// non-canonical input that decodes but re-encodes differently.
func Roundtrip(data []byte) bool {
	t, rest, err := Decode(data)
	if err != nil || len(rest) != 0 {
		return false
	}

	return bytes.Equal(Encode(t), data)
}

// ScanReport summarizes a best-effort scan of a code stream.
type ScanReport struct {
	// Terms is the number of positions that decoded as a term.
	Terms int
	// Canonical is the number of decoded terms whose re-encoding reproduced
	// the consumed bytes exactly.
	Canonical int
	// Skipped is the number of bytes stepped over because no term decoded at
	// that position. Opcode bytes interleaved with operands land here.
	Skipped int
}

// Scan walks a Code chunk stream, decoding a term at every position where one
// is recognizable and skipping single bytes elsewhere. Opcodes between
// operand terms are not modeled, so the scan is best-effort by construction:
// it measures how much of the stream decodes and whether every decoded term
// re-encodes byte-identically.
func Scan(data []byte) ScanReport {
	var report ScanReport

	for len(data) > 0 {
		t, rest, err := Decode(data)
		if err != nil {
			report.Skipped++
			data = data[1:]

			continue
		}

		report.Terms++
		if bytes.Equal(Encode(t), data[:len(data)-len(rest)]) {
			report.Canonical++
		}

		data = rest
	}

	return report
}

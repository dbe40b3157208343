// Package beamterm decodes and encodes the compact term format used for
// instruction operands in the Code chunk of BEAM object files.
//
// Every operand in a compiled Erlang or Elixir module is a tagged,
// variable-length compact term: a register reference, jump label, atom or
// literal table index, inline integer, character, float literal, typed
// register, or a nested list of such operands. This package round-trips those
// terms bit-exactly against compiler output: decoding yields a structured
// term.Term, and encoding produces the canonical minimal byte sequence the
// compiler itself would emit.
//
// # Basic Usage
//
// Decoding a single term and the remainder of the stream:
//
//	t, rest, err := beamterm.Decode(stream)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(t) // e.g. "x5"
//
// Driving the codec from a compiled module:
//
//	f, _ := beamfile.Parse(moduleBytes)
//	stream, _ := f.CodeStream()
//	report := compact.Scan(stream)
//	fmt.Printf("%d terms, %d canonical\n", report.Terms, report.Canonical)
//
// # Package Structure
//
// This package provides thin wrappers around the compact package for the
// common operations. The term package defines the operand model, beamfile
// reads the surrounding container, and archive stores term streams of many
// modules in one compressed artifact.
package beamterm

import (
	"github.com/arloliu/beamterm/compact"
	"github.com/arloliu/beamterm/term"
)

// Decode parses one compact term from the front of data and returns the term
// together with the unconsumed remainder.
func Decode(data []byte) (term.Term, []byte, error) {
	return compact.Decode(data)
}

// DecodeAll decodes terms until no bytes remain.
func DecodeAll(data []byte) ([]term.Term, error) {
	return compact.DecodeAll(data)
}

// Encode renders a term as its canonical compact encoding.
func Encode(t term.Term) []byte {
	return compact.Encode(t)
}

// Roundtrip reports whether data is the canonical encoding of exactly one
// term. It returns false on any decode failure and on trailing bytes.
func Roundtrip(data []byte) bool {
	return compact.Roundtrip(data)
}

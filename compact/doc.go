// Package compact implements the compact term format used for instruction
// operands in the Code chunk of BEAM object files.
//
// Each operand is a self-delimiting tagged value. The low three bits of the
// starter byte carry the primary tag; bits 3 and 4 discriminate between four
// length forms:
//
//   - Small: the value is the starter's top nibble (one byte total)
//   - Medium: 11 bits split across the starter and one following byte
//   - Large, embedded size: 2 to 8 big-endian bytes, count in the starter
//   - Large, escape size: 9 or more bytes, count encoded as a nested term
//
// Primary tag 7 escapes to the extended formats: float literals, lists,
// float registers, allocation lists, extended literal indices and typed
// registers. Unknown extended sub-tags decode to a neutral term.Extended
// value that re-encodes to the original bytes, so streams produced by newer
// compilers survive a decode/encode pass.
//
// Sign extension is tag-conditional. Only the Integer primary tag interprets
// a large-form byte field as two's-complement, and only when the field's high
// bit is set; every other tag reads the field as unsigned. The encoder keeps
// non-negative fields unambiguous by prepending a zero byte whenever the
// minimal rendering's high bit would be set.
//
// Encoding is canonical: Encode always emits the shortest legal form, which
// matches what the BEAM compiler produces. Non-canonical input decodes
// correctly but does not re-encode byte-identically.
package compact

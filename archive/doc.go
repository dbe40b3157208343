// Package archive stores the operand term streams of many BEAM modules in a
// single artifact.
//
// An archive is a fixed 32-byte header, a table of fixed-size index entries
// keyed by xxHash64 module IDs, and one payload holding the concatenated term
// streams, optionally compressed as a whole. The layout allows the index to
// be scanned without touching the payload, and the whole-payload compression
// exploits the redundancy between modules that per-stream compression would
// miss.
//
// Typical uses are corpus snapshots for codec verification and scan caches
// keyed by module name.
package archive

package archive

import (
	"fmt"
	"iter"

	"github.com/arloliu/beamterm/compress"
	"github.com/arloliu/beamterm/errs"
	"github.com/arloliu/beamterm/internal/hash"
)

// Decoder reads a term archive. The header is validated and the payload
// decompressed up front, so lookups after construction cannot fail.
type Decoder struct {
	header  Header
	entries []IndexEntry
	payload []byte
	byID    map[uint64]int
}

// NewDecoder parses and validates an archive.
//
// Parameters:
//   - data: Complete archive bytes
//
// Returns:
//   - *Decoder: Decoder with the payload decompressed and the index mapped
//   - error: Header validation, bounds or decompression errors
func NewDecoder(data []byte) (*Decoder, error) {
	d := &Decoder{}

	if err := d.header.Parse(data); err != nil {
		return nil, err
	}

	indexEnd := int64(HeaderSize) + int64(d.header.ModuleCount)*IndexEntrySize
	if indexEnd != int64(d.header.PayloadOffset) {
		return nil, errs.ErrInvalidPayloadOffset
	}

	if int64(d.header.PayloadOffset)+int64(d.header.PayloadSize) > int64(len(data)) {
		return nil, errs.ErrInvalidPayloadOffset
	}

	codec, err := compress.CodecFor(d.header.Compression)
	if err != nil {
		return nil, err
	}

	stored := data[d.header.PayloadOffset : uint64(d.header.PayloadOffset)+uint64(d.header.PayloadSize)]

	raw, err := codec.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("payload decompression: %w", err)
	}

	if uint32(len(raw)) != d.header.RawSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d",
			errs.ErrInvalidPayloadOffset, len(raw), d.header.RawSize)
	}

	d.payload = raw
	d.entries = make([]IndexEntry, d.header.ModuleCount)
	d.byID = make(map[uint64]int, d.header.ModuleCount)

	for i := range d.entries {
		off := HeaderSize + i*IndexEntrySize
		d.entries[i].Parse(data[off : off+IndexEntrySize])

		e := &d.entries[i]
		if int64(e.Offset)+int64(e.Length) > int64(len(raw)) {
			return nil, fmt.Errorf("%w: entry %d", errs.ErrInvalidEntryBounds, i)
		}

		d.byID[e.ModuleID] = i
	}

	return d, nil
}

// Header returns the parsed archive header.
func (d *Decoder) Header() Header {
	return d.header
}

// Modules returns the number of module streams stored.
func (d *Decoder) Modules() int {
	return len(d.entries)
}

// Stream returns the term stream stored for a module name.
func (d *Decoder) Stream(module string) ([]byte, bool) {
	return d.StreamByID(hash.ModuleID(module))
}

// StreamByID returns the term stream stored under a module ID.
func (d *Decoder) StreamByID(id uint64) ([]byte, bool) {
	i, ok := d.byID[id]
	if !ok {
		return nil, false
	}

	e := &d.entries[i]

	return d.payload[e.Offset : uint64(e.Offset)+uint64(e.Length)], true
}

// All returns an iterator over (module ID, stream) pairs in index order.
func (d *Decoder) All() iter.Seq2[uint64, []byte] {
	return func(yield func(uint64, []byte) bool) {
		for i := range d.entries {
			e := &d.entries[i]
			if !yield(e.ModuleID, d.payload[e.Offset:uint64(e.Offset)+uint64(e.Length)]) {
				return
			}
		}
	}
}

package archive

import "encoding/binary"

// IndexEntry locates one module's term stream inside the raw payload.
//
// Entries are fixed-size so the index can be scanned without decoding the
// payload. Offsets address the payload after decompression.
type IndexEntry struct {
	// ModuleID is the xxHash64 of the module name.
	ModuleID uint64 // byte offset 0-7
	// Offset is the stream's byte offset in the raw payload.
	Offset uint32 // byte offset 8-11
	// Length is the stream's byte length.
	Length uint32 // byte offset 12-15
}

// Parse reads an index entry from the front of data. The caller guarantees
// at least IndexEntrySize bytes.
func (e *IndexEntry) Parse(data []byte) {
	e.ModuleID = binary.BigEndian.Uint64(data[0:8])
	e.Offset = binary.BigEndian.Uint32(data[8:12])
	e.Length = binary.BigEndian.Uint32(data[12:16])
}

// AppendTo appends the serialized entry to dst.
func (e *IndexEntry) AppendTo(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint64(dst, e.ModuleID)
	dst = binary.BigEndian.AppendUint32(dst, e.Offset)
	dst = binary.BigEndian.AppendUint32(dst, e.Length)

	return dst
}

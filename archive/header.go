package archive

import (
	"encoding/binary"
	"time"

	"github.com/arloliu/beamterm/errs"
	"github.com/arloliu/beamterm/format"
)

const (
	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 32
	// IndexEntrySize is the fixed index entry size in bytes.
	IndexEntrySize = 16

	// MagicNumberMask selects the magic number bits of the options word.
	MagicNumberMask = 0xFFF0
	// ReservedBitsMask selects the flag bits, all reserved in version 1.
	ReservedBitsMask = 0x000F

	// MagicTermArchiveV1 is the version 1 magic number for term archives.
	MagicTermArchiveV1 = 0xB7A0

	// MaxPayloadSize bounds the raw payload so offsets fit the 32-bit index
	// entry fields.
	MaxPayloadSize = 1<<32 - 1
)

// Header is the fixed-size section at the start of a term archive.
//
// All fields are big-endian on the wire, matching the byte order of the term
// format the payload carries.
type Header struct {
	// Options packs the magic number (bits 4-15) and reserved flag bits.
	Options uint16 // byte offset 0-1
	// Compression is the whole-payload compression type.
	Compression format.CompressionType // byte offset 2
	// CreatedAt is the archive creation time, unix microseconds.
	CreatedAt int64 // byte offset 4-11
	// ModuleCount is the number of module streams stored.
	ModuleCount uint32 // byte offset 12-15
	// IndexOffset is the byte offset of the index section.
	IndexOffset uint32 // byte offset 16-19
	// PayloadOffset is the byte offset of the (possibly compressed) payload.
	PayloadOffset uint32 // byte offset 20-23
	// PayloadSize is the stored payload size in bytes.
	PayloadSize uint32 // byte offset 24-27
	// RawSize is the payload size after decompression.
	RawSize uint32 // byte offset 28-31
}

// NewHeader creates a header for an archive being encoded. Counts and offsets
// are filled in by the encoder's Finish.
func NewHeader(compression format.CompressionType, createdAt time.Time) Header {
	return Header{
		Options:     MagicTermArchiveV1,
		Compression: compression,
		CreatedAt:   createdAt.UnixMicro(),
		IndexOffset: HeaderSize,
	}
}

// Parse reads the header from the front of data.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Options = binary.BigEndian.Uint16(data[0:2])
	h.Compression = format.CompressionType(data[2])
	h.CreatedAt = int64(binary.BigEndian.Uint64(data[4:12]))
	h.ModuleCount = binary.BigEndian.Uint32(data[12:16])
	h.IndexOffset = binary.BigEndian.Uint32(data[16:20])
	h.PayloadOffset = binary.BigEndian.Uint32(data[20:24])
	h.PayloadSize = binary.BigEndian.Uint32(data[24:28])
	h.RawSize = binary.BigEndian.Uint32(data[28:32])

	return h.Validate()
}

// Validate checks the magic number, reserved bits and compression type.
func (h *Header) Validate() error {
	if h.Options&MagicNumberMask != MagicTermArchiveV1 {
		return errs.ErrInvalidMagicNumber
	}

	if h.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidMagicNumber
	}

	if !h.Compression.Valid() {
		return errs.ErrInvalidCompressionType
	}

	if h.IndexOffset != HeaderSize {
		return errs.ErrInvalidIndexOffset
	}

	return nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	binary.BigEndian.PutUint16(b[0:2], h.Options)
	b[2] = uint8(h.Compression)
	binary.BigEndian.PutUint64(b[4:12], uint64(h.CreatedAt))
	binary.BigEndian.PutUint32(b[12:16], h.ModuleCount)
	binary.BigEndian.PutUint32(b[16:20], h.IndexOffset)
	binary.BigEndian.PutUint32(b[20:24], h.PayloadOffset)
	binary.BigEndian.PutUint32(b[24:28], h.PayloadSize)
	binary.BigEndian.PutUint32(b[28:32], h.RawSize)

	return b
}

// CreatedAtTime returns the creation time as a time.Time.
func (h *Header) CreatedAtTime() time.Time {
	return time.UnixMicro(h.CreatedAt).UTC()
}

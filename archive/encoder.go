package archive

import (
	"fmt"
	"time"

	"github.com/arloliu/beamterm/compact"
	"github.com/arloliu/beamterm/compress"
	"github.com/arloliu/beamterm/errs"
	"github.com/arloliu/beamterm/format"
	"github.com/arloliu/beamterm/internal/collision"
	"github.com/arloliu/beamterm/internal/pool"
)

// Encoder builds a term archive from module streams.
//
// The encoder is not safe for concurrent use. After Finish it must not be
// reused; create a new encoder for the next archive.
type Encoder struct {
	header  Header
	buf     *pool.ByteBuffer
	entries []IndexEntry
	tracker *collision.Tracker
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder) error

// WithCompression selects the whole-payload compression type. The default is
// format.CompressionNone.
func WithCompression(typ format.CompressionType) EncoderOption {
	return func(e *Encoder) error {
		if !typ.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCompressionType, typ)
		}

		e.header.Compression = typ

		return nil
	}
}

// NewEncoder creates an archive encoder.
//
// Parameters:
//   - opts: Optional configuration functions
//
// Returns:
//   - *Encoder: The created encoder
//   - error: An error if an option is invalid
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{
		header:  NewHeader(format.CompressionNone, time.Now()),
		buf:     pool.GetBuffer(),
		tracker: collision.NewTracker(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			pool.PutBuffer(e.buf)
			return nil, err
		}
	}

	return e, nil
}

// Add appends one module's term stream to the archive.
//
// The stream is verified to be a decodable sequence of compact terms before
// it is accepted; a stream that fails to decode would be unreadable on the
// way out, so it is rejected here instead.
//
// Parameters:
//   - module: Module name, hashed into the index entry
//   - stream: Concatenated compact term encodings
//
// Returns:
//   - error: errs.ErrDuplicateModule when the name was already added,
//     errs.ErrHashCollision when a different name hashes to the same ID,
//     errs.ErrModuleTooLarge when the payload would overflow the index
//     fields, or the decode failure for a corrupt stream
func (e *Encoder) Add(module string, stream []byte) error {
	if _, err := compact.DecodeAll(stream); err != nil {
		return fmt.Errorf("module %s: %w", module, err)
	}

	if int64(e.buf.Len())+int64(len(stream)) > MaxPayloadSize {
		return fmt.Errorf("%w: module %s", errs.ErrModuleTooLarge, module)
	}

	id, err := e.tracker.Track(module)
	if err != nil {
		return fmt.Errorf("module %s: %w", module, err)
	}

	e.entries = append(e.entries, IndexEntry{
		ModuleID: id,
		Offset:   uint32(e.buf.Len()),
		Length:   uint32(len(stream)),
	})
	e.buf.MustWrite(stream)

	return nil
}

// Finish compresses the payload and assembles the final archive bytes.
//
// Returns:
//   - []byte: Header, index section and payload
//   - error: A compression failure
func (e *Encoder) Finish() ([]byte, error) {
	codec, err := compress.CodecFor(e.header.Compression)
	if err != nil {
		return nil, err
	}

	raw := e.buf.Bytes()

	stored, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("payload compression: %w", err)
	}

	indexSize := len(e.entries) * IndexEntrySize
	e.header.ModuleCount = uint32(len(e.entries))
	e.header.PayloadOffset = uint32(HeaderSize + indexSize)
	e.header.PayloadSize = uint32(len(stored))
	e.header.RawSize = uint32(len(raw))

	out := make([]byte, 0, HeaderSize+indexSize+len(stored))
	out = append(out, e.header.Bytes()...)
	for i := range e.entries {
		out = e.entries[i].AppendTo(out)
	}
	out = append(out, stored...)

	pool.PutBuffer(e.buf)
	e.buf = nil

	return out, nil
}

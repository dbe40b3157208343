package pool

import "sync"

const (
	// ArchiveBufferDefaultSize is the initial capacity of pooled buffers.
	ArchiveBufferDefaultSize = 64 * 1024
	// ArchiveBufferMaxThreshold caps the capacity of buffers returned to the
	// pool; larger buffers are dropped to avoid retaining oversized memory.
	ArchiveBufferMaxThreshold = 8 * 1024 * 1024
)

// ByteBuffer is a growable byte slice used by the archive encoder to
// accumulate payload data without per-write allocations.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given initial capacity.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes written.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer but keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// MustWrite appends data, growing the buffer as needed.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Grow ensures the buffer can hold n more bytes without reallocating.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	grown := make([]byte, len(bb.B), len(bb.B)+n)
	copy(grown, bb.B)
	bb.B = grown
}

var archivePool = sync.Pool{
	New: func() any {
		return NewByteBuffer(ArchiveBufferDefaultSize)
	},
}

// GetBuffer retrieves a ByteBuffer from the pool.
func GetBuffer() *ByteBuffer {
	bb, _ := archivePool.Get().(*ByteBuffer)
	return bb
}

// PutBuffer returns a ByteBuffer to the pool. Oversized buffers are dropped.
func PutBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > ArchiveBufferMaxThreshold {
		return
	}

	bb.Reset()
	archivePool.Put(bb)
}

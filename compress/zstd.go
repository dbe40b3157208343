package compress

// ZstdCompressor backs format.CompressionZstd.
//
// Two implementations exist behind build tags: a cgo binding (valyala/gozstd)
// used when cgo is available, and a pure Go fallback (klauspost/compress)
// otherwise. Both produce standard Zstandard frames, so archives written by
// one implementation decompress with the other.
type ZstdCompressor struct{}

var _ Codec = ZstdCompressor{}

// NewZstdCompressor creates a new Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

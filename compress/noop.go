package compress

// NoOpCompressor passes payloads through unchanged. It backs
// format.CompressionNone and is also useful as a baseline in benchmarks.
//
// Both methods return the input slice without copying, so callers must not
// modify the input while the result is in use.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

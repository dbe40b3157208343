// Package compress provides the whole-payload compression codecs used by
// term archives.
//
// A Codec compresses and decompresses one archive payload at a time. Payloads
// are decoded operand streams, which are dense but repetitive, so the fast
// codecs (S2, LZ4) already achieve useful ratios; Zstd trades speed for the
// best ratio and suits cold storage.
package compress

import (
	"fmt"

	"github.com/arloliu/beamterm/format"
)

// Codec compresses and decompresses archive payloads.
//
// Implementations are stateless values and safe for concurrent use. Returned
// slices are newly allocated and owned by the caller except where a codec
// documents pass-through behavior.
type Codec interface {
	// Compress compresses data and returns the result. The input is not
	// modified.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress. It returns an error when data is
	// corrupted or was produced by a different codec.
	Decompress(data []byte) ([]byte, error)
}

// CodecFor returns the codec for a compression type.
//
// Parameters:
//   - typ: One of the format.Compression* constants
//
// Returns:
//   - Codec: The matching codec
//   - error: An error when typ is not a known compression type
func CodecFor(typ format.CompressionType) (Codec, error) {
	switch typ {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("unknown compression type 0x%02x", uint8(typ))
	}
}

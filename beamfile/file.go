// Package beamfile reads the IFF container of compiled BEAM modules.
//
// A BEAM file is a "FOR1" form holding named chunks. This package walks the
// chunk table and exposes the pieces the term codec needs: the Code chunk's
// operand stream, the inflated literal table, and the atom table used to name
// the module. It makes no attempt to interpret opcodes.
package beamfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/beamterm/errs"
)

const (
	formMagic = "FOR1"
	formType  = "BEAM"

	// ChunkCode is the chunk holding opcodes and operand terms.
	ChunkCode = "Code"
	// ChunkAtomU8 is the UTF-8 atom table chunk used since OTP 20.
	ChunkAtomU8 = "AtU8"
	// ChunkAtomLatin1 is the legacy Latin-1 atom table chunk.
	ChunkAtomLatin1 = "Atom"
	// ChunkLiterals is the compressed literal table chunk.
	ChunkLiterals = "LitT"
)

// Chunk is one named section of a BEAM file.
type Chunk struct {
	Name string
	Data []byte
}

// File is a parsed BEAM container. Chunk payloads alias the input buffer; the
// caller must keep the buffer alive and unmodified while the File is in use.
type File struct {
	chunks []Chunk
}

// CodeInfo is the fixed header at the front of the Code chunk.
type CodeInfo struct {
	// InfoSize is the byte count of the header fields after this one.
	InfoSize uint32
	// Version is the instruction set version.
	Version uint32
	// MaxOpcode is the highest opcode used by the module.
	MaxOpcode uint32
	// LabelCount is the number of labels.
	LabelCount uint32
	// FunctionCount is the number of exported functions.
	FunctionCount uint32
}

// codeInfoSize covers the five uint32 header fields.
const codeInfoSize = 20

// Parse reads a BEAM container from data.
//
// Parameters:
//   - data: Complete file contents
//
// Returns:
//   - *File: Parsed container with its chunk table
//   - error: errs.ErrNotBeamFile when the outer form is wrong,
//     errs.ErrTruncatedChunk when a chunk passes the end of data
func Parse(data []byte) (*File, error) {
	if len(data) < 12 || string(data[0:4]) != formMagic {
		return nil, fmt.Errorf("%w: missing FOR1 form", errs.ErrNotBeamFile)
	}

	formSize := binary.BigEndian.Uint32(data[4:8])
	if string(data[8:12]) != formType {
		return nil, fmt.Errorf("%w: form type %q", errs.ErrNotBeamFile, data[8:12])
	}

	// The form size counts everything after the size field, starting with the
	// four form type bytes.
	if formSize < 4 || int64(formSize)+8 > int64(len(data)) {
		return nil, fmt.Errorf("%w: form size %d", errs.ErrTruncatedChunk, formSize)
	}

	f := &File{}
	body := data[12 : 8+formSize]

	for len(body) > 0 {
		if len(body) < 8 {
			return nil, fmt.Errorf("%w: chunk header", errs.ErrTruncatedChunk)
		}

		name := string(body[0:4])
		size := binary.BigEndian.Uint32(body[4:8])
		if int64(size)+8 > int64(len(body)) {
			return nil, fmt.Errorf("%w: chunk %q size %d", errs.ErrTruncatedChunk, name, size)
		}

		f.chunks = append(f.chunks, Chunk{Name: name, Data: body[8 : 8+size]})

		// Chunks are padded to 4-byte alignment.
		next := 8 + int(size+3)&^3
		if next > len(body) {
			next = len(body)
		}
		body = body[next:]
	}

	return f, nil
}

// Chunks returns the chunk table in file order.
func (f *File) Chunks() []Chunk {
	return f.chunks
}

// Chunk returns the payload of the named chunk.
func (f *File) Chunk(name string) ([]byte, bool) {
	for _, c := range f.chunks {
		if c.Name == name {
			return c.Data, true
		}
	}

	return nil, false
}

// CodeInfo parses the Code chunk's fixed header.
//
// Returns:
//   - CodeInfo: The five header fields
//   - error: errs.ErrChunkNotFound when there is no Code chunk,
//     errs.ErrInvalidCodeHeader when the header cannot be read
func (f *File) CodeInfo() (CodeInfo, error) {
	code, ok := f.Chunk(ChunkCode)
	if !ok {
		return CodeInfo{}, fmt.Errorf("%w: %q", errs.ErrChunkNotFound, ChunkCode)
	}

	if len(code) < codeInfoSize {
		return CodeInfo{}, fmt.Errorf("%w: code chunk is %d bytes", errs.ErrInvalidCodeHeader, len(code))
	}

	info := CodeInfo{
		InfoSize:      binary.BigEndian.Uint32(code[0:4]),
		Version:       binary.BigEndian.Uint32(code[4:8]),
		MaxOpcode:     binary.BigEndian.Uint32(code[8:12]),
		LabelCount:    binary.BigEndian.Uint32(code[12:16]),
		FunctionCount: binary.BigEndian.Uint32(code[16:20]),
	}

	// The opcode stream starts after the info size field plus InfoSize bytes,
	// so future header extensions are skipped rather than misread.
	if int64(info.InfoSize)+4 > int64(len(code)) {
		return CodeInfo{}, fmt.Errorf("%w: info size %d", errs.ErrInvalidCodeHeader, info.InfoSize)
	}

	return info, nil
}

// CodeStream returns the opcode and operand byte stream of the Code chunk,
// with the fixed header stripped. This is the input surface for the compact
// term codec.
func (f *File) CodeStream() ([]byte, error) {
	info, err := f.CodeInfo()
	if err != nil {
		return nil, err
	}

	code, _ := f.Chunk(ChunkCode)

	return code[info.InfoSize+4:], nil
}

// Atoms returns the module's atom table. The first atom is the module name.
// The AtU8 chunk is preferred; the legacy Atom chunk is used as a fallback.
func (f *File) Atoms() ([]string, error) {
	data, ok := f.Chunk(ChunkAtomU8)
	if !ok {
		data, ok = f.Chunk(ChunkAtomLatin1)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrChunkNotFound, ChunkAtomU8)
	}

	if len(data) < 4 {
		return nil, fmt.Errorf("%w: atom chunk is %d bytes", errs.ErrTruncatedChunk, len(data))
	}

	count := binary.BigEndian.Uint32(data[0:4])
	data = data[4:]

	atoms := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 1 {
			return nil, fmt.Errorf("%w: atom %d length", errs.ErrTruncatedChunk, i)
		}

		n := int(data[0])
		if len(data) < 1+n {
			return nil, fmt.Errorf("%w: atom %d body", errs.ErrTruncatedChunk, i)
		}

		name := data[1 : 1+n]
		if !utf8.Valid(name) {
			return nil, fmt.Errorf("atom %d is not valid UTF-8", i)
		}

		atoms = append(atoms, string(name))
		data = data[1+n:]
	}

	return atoms, nil
}

// ModuleName returns the first entry of the atom table.
func (f *File) ModuleName() (string, error) {
	atoms, err := f.Atoms()
	if err != nil {
		return "", err
	}

	if len(atoms) == 0 {
		return "", fmt.Errorf("%w: empty atom table", errs.ErrTruncatedChunk)
	}

	return atoms[0], nil
}

// UncompressedLiterals inflates the LitT chunk. The chunk starts with the
// big-endian uncompressed size followed by a zlib stream.
//
// Returns:
//   - []byte: The inflated literal table
//   - error: errs.ErrChunkNotFound when the module has no LitT chunk, or an
//     inflate error on corrupt data
func (f *File) UncompressedLiterals() ([]byte, error) {
	data, ok := f.Chunk(ChunkLiterals)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrChunkNotFound, ChunkLiterals)
	}

	if len(data) < 4 {
		return nil, fmt.Errorf("%w: literal chunk is %d bytes", errs.ErrTruncatedChunk, len(data))
	}

	want := binary.BigEndian.Uint32(data[0:4])

	r, err := zlib.NewReader(bytes.NewReader(data[4:]))
	if err != nil {
		return nil, fmt.Errorf("literal table inflate: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("literal table inflate: %w", err)
	}

	if uint32(len(out)) != want {
		return nil, fmt.Errorf("literal table is %d bytes, header says %d", len(out), want)
	}

	return out, nil
}

// Package codec serializes quantized meshes into a compact, text-safe byte
// stream.
//
// The stream has no magic or version. It starts with vertexCount-1, followed
// by one delta stream per attribute channel (all vertices of channel 0, then
// channel 1, ...) and finally the index stream. Each value is written with the
// variable-length primitive; AppendUTF8 is the default.
//
// Attribute deltas are taken against the previous vertex of the same channel
// with 16-bit wraparound and zigzag-mapped. Indices are written as the
// distance below the high-water mark, the smallest flat index not yet used,
// so every index must be at most that mark.
package codec

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/meshpack/pkg/mesh"
	"github.com/Faultbox/meshpack/pkg/quantize"
)

// MaxVertexCount is the largest vertex count the header can carry.
const MaxVertexCount = 65535

// Codec errors.
var (
	ErrMalformedInput  = errors.New("malformed input")
	ErrEncodingFailure = errors.New("encoding primitive failed")
)

// Codec compresses meshes with a given variable-length primitive.
type Codec struct {
	encode Encoder
}

// New creates a codec using enc, or AppendUTF8 when enc is nil.
func New(enc Encoder) *Codec {
	if enc == nil {
		enc = AppendUTF8
	}
	return &Codec{encode: enc}
}

var defaultCodec = New(nil)

// CompressMesh compresses with the default UTF-8 primitive.
func CompressMesh(attribs quantize.QuantizedAttribList, indices mesh.IndexList) ([]byte, error) {
	return defaultCodec.CompressMesh(attribs, indices)
}

// CompressMeshToFile compresses with the default primitive and writes the
// stream to path. Nothing is written if compression fails.
func CompressMeshToFile(attribs quantize.QuantizedAttribList, indices mesh.IndexList, path string) error {
	data, err := CompressMesh(attribs, indices)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CompressMesh returns the full stream for one batch. Any invariant
// violation or primitive failure aborts the whole stream.
func (c *Codec) CompressMesh(attribs quantize.QuantizedAttribList, indices mesh.IndexList) ([]byte, error) {
	if len(attribs)%quantize.Channels != 0 {
		return nil, fmt.Errorf("%w: %d attribute values is not a multiple of %d",
			ErrMalformedInput, len(attribs), quantize.Channels)
	}
	numVerts := len(attribs) / quantize.Channels
	if numVerts == 0 || numVerts > MaxVertexCount {
		return nil, fmt.Errorf("%w: vertex count %d outside [1, %d]", ErrMalformedInput, numVerts, MaxVertexCount)
	}

	out := make([]byte, 0, len(attribs)+len(indices))
	out, err := c.encode(out, uint16(numVerts-1))
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrEncodingFailure, err)
	}

	if out, err = c.CompressAttribs(out, attribs); err != nil {
		return nil, err
	}
	if out, err = c.CompressIndices(out, indices); err != nil {
		return nil, err
	}
	return out, nil
}

// CompressAttribs appends the channel-major delta streams of attribs to dst.
func (c *Codec) CompressAttribs(dst []byte, attribs quantize.QuantizedAttribList) ([]byte, error) {
	var err error
	for ch := 0; ch < quantize.Channels; ch++ {
		var prev uint16
		for j := ch; j < len(attribs); j += quantize.Channels {
			word := attribs[j]
			z := ZigZag(int16(word - prev))
			prev = word
			if dst, err = c.encode(dst, z); err != nil {
				return nil, fmt.Errorf("%w: channel %d vertex %d: %w",
					ErrEncodingFailure, ch, j/quantize.Channels, err)
			}
		}
	}
	return dst, nil
}

// CompressIndices appends the high-water-mark delta stream of indices to dst.
func (c *Codec) CompressIndices(dst []byte, indices mesh.IndexList) ([]byte, error) {
	var err error
	hwm := 0
	for i, idx := range indices {
		if idx < 0 || idx > hwm {
			return nil, fmt.Errorf("%w: index %d at position %d exceeds high-water mark %d",
				ErrMalformedInput, idx, i, hwm)
		}
		if hwm-idx > 0xFFFF {
			return nil, fmt.Errorf("%w: index %d at position %d is %d below high-water mark",
				ErrMalformedInput, idx, i, hwm-idx)
		}
		if dst, err = c.encode(dst, uint16(hwm-idx)); err != nil {
			return nil, fmt.Errorf("%w: index %d at position %d: %w", ErrEncodingFailure, idx, i, err)
		}
		if idx == hwm {
			hwm++
		}
	}
	return dst, nil
}

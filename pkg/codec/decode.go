package codec

import (
	"fmt"

	"github.com/Faultbox/meshpack/pkg/mesh"
	"github.com/Faultbox/meshpack/pkg/quantize"
)

// Decoded is the integer-level content of a compressed stream.
type Decoded struct {
	Attribs quantize.QuantizedAttribList
	Indices mesh.IndexList
}

// DecodeMesh decodes a stream written by CompressMesh with the default
// primitive. Everything after the attribute streams is read as indices.
func DecodeMesh(data []byte) (*Decoded, error) {
	r := &reader{data: data}

	header, err := r.next()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	numVerts := int(header) + 1

	attribs := make(quantize.QuantizedAttribList, numVerts*quantize.Channels)
	for ch := 0; ch < quantize.Channels; ch++ {
		var prev uint16
		for v := 0; v < numVerts; v++ {
			z, err := r.next()
			if err != nil {
				return nil, fmt.Errorf("reading channel %d vertex %d: %w", ch, v, err)
			}
			prev += uint16(UnZigZag(z))
			attribs[v*quantize.Channels+ch] = prev
		}
	}

	var indices mesh.IndexList
	hwm := 0
	for !r.done() {
		code, err := r.next()
		if err != nil {
			return nil, fmt.Errorf("reading index %d: %w", len(indices), err)
		}
		idx := hwm - int(code)
		if idx < 0 {
			return nil, fmt.Errorf("%w: index delta %d exceeds high-water mark %d", ErrInvalidEncoding, code, hwm)
		}
		if idx >= numVerts {
			return nil, fmt.Errorf("%w: index %d outside %d vertices", ErrInvalidEncoding, idx, numVerts)
		}
		if code == 0 {
			hwm++
		}
		indices = append(indices, idx)
	}

	return &Decoded{Attribs: attribs, Indices: indices}, nil
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) done() bool {
	return r.pos >= len(r.data)
}

func (r *reader) next() (uint16, error) {
	v, n, err := DecodeUTF8(r.data[r.pos:])
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", r.pos, err)
	}
	r.pos += n
	return v, nil
}

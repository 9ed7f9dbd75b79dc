package quantize

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/Faultbox/meshpack/pkg/mesh"
)

// QuantizedAttribList has the same interleaved layout as mesh.AttribList.
type QuantizedAttribList []uint16

// VertexCount returns the number of whole vertices in the list.
func (q QuantizedAttribList) VertexCount() int {
	return len(q) / Channels
}

// Quantize maps value into [0, 2^bits) for a range of width scale starting
// at -offset. The value is shifted by 2^bits exactly, then f/scale - 0.5 is
// truncated toward zero. Decoders depend on this exact rounding.
//
// A zero scale means the channel is constant and always maps to 0.
func Quantize(value, offset, scale float32, bits int) uint16 {
	if scale == 0 {
		return 0
	}
	shifted := float32(math.Ldexp(float64(value+offset), bits))
	f := shifted/scale - 0.5
	return uint16(int32(f))
}

// Dequantize returns a float that quantizes back to q with the same
// parameters: the center of the interval that truncates to q.
func Dequantize(q uint16, offset, scale float32, bits int) float32 {
	center := float32(math.Ldexp(float64(q)+1, -bits))
	return center*scale - offset
}

// Attribs quantizes every channel of an interleaved buffer.
func Attribs(attribs mesh.AttribList, p *BoundsParams) QuantizedAttribList {
	out := make(QuantizedAttribList, len(attribs))
	for i := 0; i+Channels <= len(attribs); i += Channels {
		for j := 0; j < Channels; j++ {
			out[i+j] = Quantize(attribs[i+j], p.Offsets[j], p.Scales[j], p.Bits[j])
		}
	}
	return out
}

// Dequantized reverses Attribs up to quantization error.
func Dequantized(q QuantizedAttribList, p *BoundsParams) mesh.AttribList {
	out := make(mesh.AttribList, len(q))
	for i := 0; i+Channels <= len(q); i += Channels {
		for j := 0; j < Channels; j++ {
			out[i+j] = Dequantize(q[i+j], p.Offsets[j], p.Scales[j], p.Bits[j])
		}
	}
	return out
}

// Mesh computes bounds and parameters for attribs and quantizes them.
func Mesh(attribs mesh.AttribList) (QuantizedAttribList, BoundsParams) {
	b := NewBounds()
	b.Enclose(attribs)
	p := FromBounds(b)
	return Attribs(attribs, &p), p
}

// DumpQuantized writes quantized attributes as a Uint16Array literal, one
// vertex per line.
func DumpQuantized(w io.Writer, q QuantizedAttribList) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "var attribs = new Uint16Array([")
	for i := 0; i+Channels <= len(q); i += Channels {
		a := q[i : i+Channels]
		fmt.Fprintf(bw, "%d,%d,%d,%d,%d,%d,%d,%d,\n", a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7])
	}
	fmt.Fprintln(bw, "]);")
	return bw.Flush()
}

package quantize

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/meshpack/pkg/mesh"
)

// BoundsParams holds the quantization offset, scale, and bit width of
// every channel.
type BoundsParams struct {
	Offsets [Channels]float32
	Scales  [Channels]float32
	Bits    [Channels]int
}

// FromBounds derives quantization parameters. Positions share one uniform
// scale so the model is not distorted; texcoords use their own extents;
// normals are assumed to be unit length and always map [-1, 1].
func FromBounds(b *Bounds) BoundsParams {
	var p BoundsParams
	scale := b.UniformScale()

	for i := 0; i < mesh.PositionDim; i++ {
		p.Offsets[i] = -b.Mins[i]
		p.Scales[i] = scale
		p.Bits[i] = PositionBits
	}

	for i := mesh.TexCoordOffset; i < mesh.NormalOffset; i++ {
		p.Offsets[i] = -b.Mins[i]
		p.Scales[i] = b.Extent(i)
		p.Bits[i] = TexCoordBits
	}

	for i := mesh.NormalOffset; i < Channels; i++ {
		p.Offsets[i] = 1
		p.Scales[i] = 2
		p.Bits[i] = NormalBits
	}
	return p
}

// DumpJSON writes the parameters as a JavaScript object literal, the form
// a decoder page embeds next to the compressed stream.
func (p *BoundsParams) DumpJSON(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "{")
	fmt.Fprintf(bw, "  offsets: [%s],\n", joinFloats(p.Offsets[:]))
	fmt.Fprintf(bw, "  scales: [%s],\n", joinFloats(p.Scales[:]))
	fmt.Fprint(bw, "  bits: [")
	for i, b := range p.Bits {
		if i > 0 {
			fmt.Fprint(bw, ",")
		}
		fmt.Fprintf(bw, "%d", b)
	}
	fmt.Fprintln(bw, "]")
	fmt.Fprintln(bw, "};")
	return bw.Flush()
}

func joinFloats(fs []float32) string {
	s := ""
	for i, f := range fs {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%f", f)
	}
	return s
}

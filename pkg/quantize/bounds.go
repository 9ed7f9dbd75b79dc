// Package quantize maps interleaved float vertex attributes onto fixed-width
// unsigned integers using per-channel bounds.
package quantize

import (
	"math"

	"github.com/Faultbox/meshpack/pkg/mesh"
)

// Channels is the number of attribute channels per vertex.
const Channels = mesh.Stride

// Bit widths per attribute kind.
const (
	PositionBits = 14
	TexCoordBits = 10
	NormalBits   = 10
)

// Bounds holds the per-channel minimum and maximum of a set of vertices.
type Bounds struct {
	Mins  [Channels]float32
	Maxes [Channels]float32
}

// NewBounds returns cleared bounds.
func NewBounds() *Bounds {
	b := &Bounds{}
	b.Clear()
	return b
}

// Clear resets every channel to an empty range.
func (b *Bounds) Clear() {
	for i := 0; i < Channels; i++ {
		b.Mins[i] = float32(math.Inf(1))
		b.Maxes[i] = float32(math.Inf(-1))
	}
}

// Enclose grows the bounds to contain every whole vertex in attribs.
func (b *Bounds) Enclose(attribs mesh.AttribList) {
	for i := 0; i+Channels <= len(attribs); i += Channels {
		for j := 0; j < Channels; j++ {
			a := attribs[i+j]
			if b.Mins[j] > a {
				b.Mins[j] = a
			}
			if b.Maxes[j] < a {
				b.Maxes[j] = a
			}
		}
	}
}

// Extent returns max - min for a channel.
func (b *Bounds) Extent(channel int) float32 {
	return b.Maxes[channel] - b.Mins[channel]
}

// UniformScale returns the largest of the three position extents.
func (b *Bounds) UniformScale() float32 {
	x, y, z := b.Extent(0), b.Extent(1), b.Extent(2)
	if x > y {
		if x > z {
			return x
		}
		return z
	}
	if y > z {
		return y
	}
	return z
}

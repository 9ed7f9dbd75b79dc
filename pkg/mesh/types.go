// Package mesh flattens multi-indexed triangle corners into a single
// interleaved vertex buffer and a flat index list.
package mesh

import "errors"

// Per-vertex attribute layout. Every interleaved buffer stores
// position(3), texcoord(2), normal(3) for each vertex in that order.
const (
	PositionDim = 3
	TexCoordDim = 2
	NormalDim   = 3

	// Stride is the number of floats per interleaved vertex.
	Stride = PositionDim + TexCoordDim + NormalDim

	TexCoordOffset = PositionDim
	NormalOffset   = PositionDim + TexCoordDim
)

// MaxVertices is the largest number of flat vertices a batch may hold.
// Flat indices must fit a 16-bit wire field.
const MaxVertices = 1 << 16

// Absent marks a missing texcoord or normal reference in an IndexTriple.
// It is never merged with index 0.
const Absent = -1

// Mesh errors.
var (
	ErrIndexOutOfRange = errors.New("source attribute index out of range")
	ErrTooManyVertices = errors.New("too many flat vertices")
	ErrBadAttribLength = errors.New("attribute buffer length is not a multiple of the vertex stride")
	ErrIndexNotInMesh  = errors.New("index references a vertex outside the attribute buffer")
)

// AttribList is an interleaved float buffer, Stride floats per vertex.
type AttribList []float32

// VertexCount returns the number of whole vertices in the buffer.
func (a AttribList) VertexCount() int {
	return len(a) / Stride
}

// IndexList is a list of flat indices, three per triangle.
type IndexList []int

// IndexTriple references one position, texcoord, and normal of the source
// arrays. Indices are 0-based; Absent marks a missing texcoord or normal.
type IndexTriple struct {
	Position int
	TexCoord int
	Normal   int
}

// Less orders triples lexicographically by position, texcoord, then normal.
func (t IndexTriple) Less(other IndexTriple) bool {
	if t.Position != other.Position {
		return t.Position < other.Position
	}
	if t.TexCoord != other.TexCoord {
		return t.TexCoord < other.TexCoord
	}
	return t.Normal < other.Normal
}

// DrawMesh is the flattened output of a DrawBatch.
type DrawMesh struct {
	Attribs AttribList
	Indices IndexList
}

// TriangleCount returns the number of triangles in the index list.
func (m *DrawMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

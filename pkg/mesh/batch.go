package mesh

import "fmt"

// defaultReserve is the initial position table capacity of a DrawBatch.
const defaultReserve = 1024

// Sources holds the shared source attribute arrays that face corners index
// into: 3 floats per position, 2 per texcoord, 3 per normal. A DrawBatch
// reads them but never modifies or retains ownership of them.
type Sources struct {
	Positions []float32
	TexCoords []float32
	Normals   []float32
}

// PositionCount returns the number of source positions.
func (s *Sources) PositionCount() int { return len(s.Positions) / PositionDim }

// TexCoordCount returns the number of source texcoords.
func (s *Sources) TexCoordCount() int { return len(s.TexCoords) / TexCoordDim }

// NormalCount returns the number of source normals.
func (s *Sources) NormalCount() int { return len(s.Normals) / NormalDim }

// DrawBatch turns triangle corners into an interleaved attribute buffer and
// a flat index list. One batch exists per material and owns its flattener.
type DrawBatch struct {
	src       *Sources
	flattener *IndexFlattener
	mesh      DrawMesh
}

// NewDrawBatch creates a batch reading from src.
func NewDrawBatch(src *Sources) *DrawBatch {
	f := NewIndexFlattener(0)
	f.Reserve(defaultReserve)
	return &DrawBatch{
		src:       src,
		flattener: f,
	}
}

// AddTriangle appends one triangle. Corner indices are 0-based with Absent
// for missing texcoords and normals. New flat vertices get their attributes
// appended once; the flat index is appended for every corner. A triangle
// that fails leaves the batch unchanged.
func (b *DrawBatch) AddTriangle(corners [3]IndexTriple) error {
	for i, c := range corners {
		if err := b.checkCorner(c); err != nil {
			return fmt.Errorf("corner %d: %w", i, err)
		}
	}

	if n := b.flattener.Count() + b.newVertices(corners); n > MaxVertices {
		return fmt.Errorf("%w: %d exceeds %d", ErrTooManyVertices, n, MaxVertices)
	}

	for _, c := range corners {
		flat, isNew := b.flattener.FlatIndex(c)
		if isNew {
			b.appendVertex(c)
		}
		b.mesh.Indices = append(b.mesh.Indices, flat)
	}
	return nil
}

// newVertices counts the distinct corners that do not have a flat index yet.
func (b *DrawBatch) newVertices(corners [3]IndexTriple) int {
	n := 0
	for i, c := range corners {
		if _, ok := b.flattener.Lookup(c); ok {
			continue
		}
		repeated := false
		for _, prev := range corners[:i] {
			repeated = repeated || prev == c
		}
		if !repeated {
			n++
		}
	}
	return n
}

// VertexCount returns the number of distinct flat vertices.
func (b *DrawBatch) VertexCount() int {
	return b.flattener.Count()
}

// Empty reports whether no triangle has been added yet.
func (b *DrawBatch) Empty() bool {
	return len(b.mesh.Indices) == 0
}

// Mesh returns the flattened mesh. The returned buffers are owned by the
// batch and must not be modified while more triangles are added.
func (b *DrawBatch) Mesh() *DrawMesh {
	return &b.mesh
}

func (b *DrawBatch) checkCorner(c IndexTriple) error {
	if c.Position < 0 || c.Position >= b.src.PositionCount() {
		return fmt.Errorf("%w: position %d of %d", ErrIndexOutOfRange, c.Position, b.src.PositionCount())
	}
	if c.TexCoord != Absent && (c.TexCoord < 0 || c.TexCoord >= b.src.TexCoordCount()) {
		return fmt.Errorf("%w: texcoord %d of %d", ErrIndexOutOfRange, c.TexCoord, b.src.TexCoordCount())
	}
	if c.Normal != Absent && (c.Normal < 0 || c.Normal >= b.src.NormalCount()) {
		return fmt.Errorf("%w: normal %d of %d", ErrIndexOutOfRange, c.Normal, b.src.NormalCount())
	}
	return nil
}

func (b *DrawBatch) appendVertex(c IndexTriple) {
	attribs := b.mesh.Attribs

	p := c.Position * PositionDim
	attribs = append(attribs, b.src.Positions[p:p+PositionDim]...)

	if c.TexCoord == Absent {
		attribs = append(attribs, 0, 0)
	} else {
		t := c.TexCoord * TexCoordDim
		attribs = append(attribs, b.src.TexCoords[t:t+TexCoordDim]...)
	}

	if c.Normal == Absent {
		attribs = append(attribs, 0, 0, 0)
	} else {
		n := c.Normal * NormalDim
		attribs = append(attribs, b.src.Normals[n:n+NormalDim]...)
	}

	b.mesh.Attribs = attribs
}

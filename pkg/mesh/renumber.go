package mesh

import "fmt"

// IsFirstUseOrdered reports whether every index is at most the running
// high-water mark, i.e. each new vertex is introduced as the next unused
// flat index. Lists produced by a DrawBatch always satisfy this.
func IsFirstUseOrdered(indices IndexList) bool {
	hwm := 0
	for _, idx := range indices {
		if idx < 0 || idx > hwm {
			return false
		}
		if idx == hwm {
			hwm++
		}
	}
	return true
}

// RenumberFirstUse returns a copy of m whose vertices are reordered so that
// flat indices appear in first-use order. Triangle order is preserved.
// Vertices never referenced by an index are dropped.
func RenumberFirstUse(m *DrawMesh) (*DrawMesh, error) {
	if len(m.Attribs)%Stride != 0 {
		return nil, fmt.Errorf("%w: %d floats", ErrBadAttribLength, len(m.Attribs))
	}
	numVerts := m.Attribs.VertexCount()

	remap := make([]int, numVerts)
	for i := range remap {
		remap[i] = -1
	}

	out := &DrawMesh{
		Attribs: make(AttribList, 0, len(m.Attribs)),
		Indices: make(IndexList, len(m.Indices)),
	}
	next := 0
	for i, idx := range m.Indices {
		if idx < 0 || idx >= numVerts {
			return nil, fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexNotInMesh, idx, i, numVerts)
		}
		if remap[idx] < 0 {
			remap[idx] = next
			next++
			out.Attribs = append(out.Attribs, m.Attribs[idx*Stride:(idx+1)*Stride]...)
		}
		out.Indices[i] = remap[idx]
	}
	return out, nil
}

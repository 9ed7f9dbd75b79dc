package mesh

import "github.com/google/btree"

// slotState describes what the position table knows about a position index.
type slotState uint8

const (
	slotUnknown  slotState = iota // position never seen
	slotAssigned                  // one texcoord/normal pair seen, flat index cached
	slotConflict                  // several pairs seen, resolve through the tree
)

// slot is one entry of the position-indexed table.
type slot struct {
	state    slotState
	flat     int
	texCoord int
	normal   int
}

// flatEntry maps a full triple to its flat index inside the fallback tree.
type flatEntry struct {
	key  IndexTriple
	flat int
}

func lessFlatEntry(a, b flatEntry) bool {
	return a.key.Less(b.key)
}

// btreeDegree is the fan-out of the fallback tree.
const btreeDegree = 8

// IndexFlattener assigns dense flat indices to (position, texcoord, normal)
// triples in first-occurrence order.
//
// Most meshes use a single texcoord/normal pair per position, so lookups go
// through a table indexed by position. Only positions that are seen with more
// than one pair fall back to an ordered tree keyed by the full triple.
type IndexFlattener struct {
	count int
	table []slot
	tree  *btree.BTreeG[flatEntry]
}

// NewIndexFlattener creates a flattener with room for numPositions
// position slots. The table grows on demand.
func NewIndexFlattener(numPositions int) *IndexFlattener {
	return &IndexFlattener{
		table: make([]slot, numPositions),
	}
}

// Count returns the number of flat indices assigned so far.
func (f *IndexFlattener) Count() int {
	return f.count
}

// Reserve grows the table capacity to hold at least size positions.
func (f *IndexFlattener) Reserve(size int) {
	if size > cap(f.table) {
		grown := make([]slot, len(f.table), size)
		copy(grown, f.table)
		f.table = grown
	}
}

// FlatIndex returns the flat index for the triple and whether it was newly
// assigned by this call. Position must be non-negative.
func (f *IndexFlattener) FlatIndex(t IndexTriple) (int, bool) {
	if t.Position >= len(f.table) {
		f.grow(t.Position + 1)
	}

	s := &f.table[t.Position]
	switch s.state {
	case slotUnknown:
		flat := f.next()
		*s = slot{state: slotAssigned, flat: flat, texCoord: t.TexCoord, normal: t.Normal}
		return flat, true
	case slotConflict:
		return f.fromTree(t)
	}

	if s.texCoord == t.TexCoord && s.normal == t.Normal {
		return s.flat, false
	}

	// Second pair at this position: move both triples into the tree.
	if f.tree == nil {
		f.tree = btree.NewG[flatEntry](btreeDegree, lessFlatEntry)
	}
	cached := IndexTriple{Position: t.Position, TexCoord: s.texCoord, Normal: s.normal}
	f.tree.ReplaceOrInsert(flatEntry{key: cached, flat: s.flat})
	*s = slot{state: slotConflict}

	flat := f.next()
	f.tree.ReplaceOrInsert(flatEntry{key: t, flat: flat})
	return flat, true
}

// Lookup returns the flat index already assigned to the triple. Unlike
// FlatIndex it never assigns one.
func (f *IndexFlattener) Lookup(t IndexTriple) (int, bool) {
	if t.Position < 0 || t.Position >= len(f.table) {
		return 0, false
	}
	s := f.table[t.Position]
	switch s.state {
	case slotAssigned:
		if s.texCoord == t.TexCoord && s.normal == t.Normal {
			return s.flat, true
		}
	case slotConflict:
		if e, ok := f.tree.Get(flatEntry{key: t}); ok {
			return e.flat, true
		}
	}
	return 0, false
}

func (f *IndexFlattener) fromTree(t IndexTriple) (int, bool) {
	if e, ok := f.tree.Get(flatEntry{key: t}); ok {
		return e.flat, false
	}
	flat := f.next()
	f.tree.ReplaceOrInsert(flatEntry{key: t, flat: flat})
	return flat, true
}

func (f *IndexFlattener) next() int {
	flat := f.count
	f.count++
	return flat
}

func (f *IndexFlattener) grow(size int) {
	if size <= cap(f.table) {
		f.table = f.table[:size]
		return
	}
	newCap := 2 * cap(f.table)
	if newCap < size {
		newCap = size
	}
	grown := make([]slot, size, newCap)
	copy(grown, f.table)
	f.table = grown
}

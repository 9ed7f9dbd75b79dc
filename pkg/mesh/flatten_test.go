package mesh

import "testing"

func TestIndexFlattener_FirstOccurrenceOrder(t *testing.T) {
	f := NewIndexFlattener(0)

	triples := []IndexTriple{
		{5, Absent, Absent},
		{2, 0, 0},
		{5, Absent, Absent},
		{9, 1, 1},
		{2, 0, 0},
		{0, 0, 0},
	}
	expected := []struct {
		flat  int
		isNew bool
	}{
		{0, true},
		{1, true},
		{0, false},
		{2, true},
		{1, false},
		{3, true},
	}

	for i, tr := range triples {
		flat, isNew := f.FlatIndex(tr)
		if flat != expected[i].flat || isNew != expected[i].isNew {
			t.Errorf("triple %d %+v: expected (%d, %v), got (%d, %v)",
				i, tr, expected[i].flat, expected[i].isNew, flat, isNew)
		}
	}

	if f.Count() != 4 {
		t.Errorf("expected count 4, got %d", f.Count())
	}
}

func TestIndexFlattener_Idempotent(t *testing.T) {
	f := NewIndexFlattener(4)
	tr := IndexTriple{Position: 3, TexCoord: 1, Normal: 2}

	first, _ := f.FlatIndex(tr)
	for i := 0; i < 5; i++ {
		flat, isNew := f.FlatIndex(tr)
		if flat != first {
			t.Errorf("expected flat index %d, got %d", first, flat)
		}
		if isNew {
			t.Error("repeated triple reported as new")
		}
	}
	if f.Count() != 1 {
		t.Errorf("expected count 1, got %d", f.Count())
	}
}

func TestIndexFlattener_AbsentIsDistinctFromZero(t *testing.T) {
	tests := []struct {
		name string
		a, b IndexTriple
	}{
		{"both absent vs both zero", IndexTriple{0, Absent, Absent}, IndexTriple{0, 0, 0}},
		{"absent texcoord vs zero texcoord", IndexTriple{1, Absent, 2}, IndexTriple{1, 0, 2}},
		{"absent normal vs zero normal", IndexTriple{1, 2, Absent}, IndexTriple{1, 2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewIndexFlattener(0)
			fa, _ := f.FlatIndex(tt.a)
			fb, isNew := f.FlatIndex(tt.b)
			if fa == fb {
				t.Errorf("expected distinct flat indices, both got %d", fa)
			}
			if !isNew {
				t.Error("expected second triple to be new")
			}
		})
	}
}

func TestIndexFlattener_ConflictFallback(t *testing.T) {
	f := NewIndexFlattener(0)

	a := IndexTriple{7, 0, 0}
	b := IndexTriple{7, 1, 0}
	c := IndexTriple{7, 1, 1}

	fa, _ := f.FlatIndex(a)
	fb, newB := f.FlatIndex(b)
	fc, newC := f.FlatIndex(c)
	if fa != 0 || fb != 1 || fc != 2 {
		t.Fatalf("expected flat indices 0,1,2, got %d,%d,%d", fa, fb, fc)
	}
	if !newB || !newC {
		t.Error("expected conflicting triples to be new")
	}

	// All three resolve through the tree now.
	for i, tr := range []IndexTriple{c, a, b} {
		flat, isNew := f.FlatIndex(tr)
		if isNew {
			t.Errorf("lookup %d: triple %+v reported as new", i, tr)
		}
		want := []int{2, 0, 1}[i]
		if flat != want {
			t.Errorf("lookup %d: expected %d, got %d", i, want, flat)
		}
	}

	// Other positions still use the table.
	fd, newD := f.FlatIndex(IndexTriple{8, 0, 0})
	if fd != 3 || !newD {
		t.Errorf("expected (3, true), got (%d, %v)", fd, newD)
	}
	if f.Count() != 4 {
		t.Errorf("expected count 4, got %d", f.Count())
	}
}

func TestIndexFlattener_LookupDoesNotAssign(t *testing.T) {
	f := NewIndexFlattener(0)

	a := IndexTriple{3, 0, 0}
	if _, ok := f.Lookup(a); ok {
		t.Error("expected unseen triple to be missing")
	}
	if f.Count() != 0 {
		t.Fatalf("expected count 0 after lookup, got %d", f.Count())
	}

	f.FlatIndex(a)
	f.FlatIndex(IndexTriple{3, 1, 0})

	tests := []struct {
		triple IndexTriple
		flat   int
		found  bool
	}{
		{IndexTriple{3, 0, 0}, 0, true},
		{IndexTriple{3, 1, 0}, 1, true},
		{IndexTriple{3, 1, 1}, 0, false},
		{IndexTriple{4, 0, 0}, 0, false},
		{IndexTriple{100, 0, 0}, 0, false},
	}
	for _, tt := range tests {
		flat, found := f.Lookup(tt.triple)
		if flat != tt.flat || found != tt.found {
			t.Errorf("Lookup(%+v): expected (%d, %v), got (%d, %v)", tt.triple, tt.flat, tt.found, flat, found)
		}
	}
	if f.Count() != 2 {
		t.Errorf("expected count 2, got %d", f.Count())
	}
}

func TestIndexFlattener_GrowsOnDemand(t *testing.T) {
	f := NewIndexFlattener(1)
	f.Reserve(2)

	for i, pos := range []int{0, 1000, 3, 1000, 20000} {
		flat, _ := f.FlatIndex(IndexTriple{pos, Absent, Absent})
		want := []int{0, 1, 2, 1, 3}[i]
		if flat != want {
			t.Errorf("position %d: expected %d, got %d", pos, want, flat)
		}
	}
}

func TestIndexTriple_Less(t *testing.T) {
	tests := []struct {
		a, b IndexTriple
		want bool
	}{
		{IndexTriple{0, 5, 5}, IndexTriple{1, 0, 0}, true},
		{IndexTriple{1, 0, 0}, IndexTriple{0, 5, 5}, false},
		{IndexTriple{1, Absent, 9}, IndexTriple{1, 0, 0}, true},
		{IndexTriple{1, 2, Absent}, IndexTriple{1, 2, 0}, true},
		{IndexTriple{1, 2, 3}, IndexTriple{1, 2, 3}, false},
	}

	for _, tt := range tests {
		if got := tt.a.Less(tt.b); got != tt.want {
			t.Errorf("%+v.Less(%+v): expected %v, got %v", tt.a, tt.b, tt.want, got)
		}
	}
}

package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshpack/pkg/codec"
	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/mesh"
)

const cubeOBJ = `
mtllib cube.mtl
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 -1
vn 0 0 1
vn 0 -1 0
vn 0 1 0
vn -1 0 0
vn 1 0 0
f 1/1/1 4/4/1 3/3/1 2/2/1
f 5/1/2 6/2/2 7/3/2 8/4/2
f 1/1/3 2/2/3 6/3/3 5/4/3
usemtl painted
f 4/1/4 8/2/4 7/3/4 3/4/4
f 1/1/5 5/2/5 8/3/5 4/4/5
f 2/1/6 3/2/6 7/3/6 6/4/6
`

func parseCube(t *testing.T) *formats.OBJ {
	t.Helper()
	obj, err := formats.ParseOBJ(strings.NewReader(cubeOBJ), formats.OBJOptions{
		OpenMTL: func(string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("newmtl painted\nmap_Kd paint.png\n")), nil
		},
	})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return obj
}

func TestCompressAll(t *testing.T) {
	obj := parseCube(t)
	batches := obj.Batches()
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}

	var done atomic.Int32
	results, err := CompressAll(context.Background(), batches, Options{
		Workers:  2,
		Progress: func() { done.Add(1) },
	})
	if err != nil {
		t.Fatalf("CompressAll failed: %v", err)
	}
	if done.Load() != 2 {
		t.Errorf("expected 2 progress calls, got %d", done.Load())
	}

	for i, r := range results {
		if r.Texture != batches[i].Texture {
			t.Errorf("result %d: expected texture %q, got %q", i, batches[i].Texture, r.Texture)
		}
		// Three quads per batch, each with its own normal: 12 flat vertices.
		if r.Vertices != 12 {
			t.Errorf("result %d: expected 12 vertices, got %d", i, r.Vertices)
		}
		if r.Triangles != 6 {
			t.Errorf("result %d: expected 6 triangles, got %d", i, r.Triangles)
		}
		if len(r.Data) == 0 {
			t.Errorf("result %d: empty stream", i)
		}
	}

	if err := Verify(results); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestCompressBatch_Renumber(t *testing.T) {
	m := &mesh.DrawMesh{
		Attribs: make(mesh.AttribList, 3*mesh.Stride),
		Indices: mesh.IndexList{2, 1, 0},
	}

	if _, err := CompressBatch("", m, Options{Renumber: false}); !errors.Is(err, ErrNotFirstUseOrdered) {
		t.Errorf("expected ErrNotFirstUseOrdered, got %v", err)
	}

	r, err := CompressBatch("", m, Options{Renumber: true})
	if err != nil {
		t.Fatalf("CompressBatch failed: %v", err)
	}
	want := mesh.IndexList{0, 1, 2}
	for i := range want {
		if r.Indices[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], r.Indices[i])
		}
	}
}

func TestCompressBatch_CodecFailure(t *testing.T) {
	failing := codec.New(func(dst []byte, v uint16) ([]byte, error) {
		return dst, errors.New("no space")
	})
	m := &mesh.DrawMesh{Attribs: make(mesh.AttribList, mesh.Stride), Indices: mesh.IndexList{0, 0, 0}}

	_, err := CompressBatch("stone.png", m, Options{Codec: failing})
	if !errors.Is(err, codec.ErrEncodingFailure) {
		t.Errorf("expected ErrEncodingFailure, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "stone.png") {
		t.Errorf("expected texture name in error: %v", err)
	}
}

func TestCompressAll_Canceled(t *testing.T) {
	obj := parseCube(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := CompressAll(ctx, obj.Batches(), Options{Workers: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestVerify_ReportsEveryMismatch(t *testing.T) {
	obj := parseCube(t)
	results, err := CompressAll(context.Background(), obj.Batches(), Options{})
	if err != nil {
		t.Fatalf("CompressAll failed: %v", err)
	}

	results[0].Quantized[0]++
	results[1].Data = results[1].Data[:1]

	err = Verify(results)
	if err == nil {
		t.Fatal("expected verification errors")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("expected 2 errors, got %d: %v", n, err)
	}
}

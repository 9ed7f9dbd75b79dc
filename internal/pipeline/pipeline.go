// Package pipeline runs flattened batches through quantization and the
// codec, and writes the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshpack/pkg/codec"
	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/mesh"
	"github.com/Faultbox/meshpack/pkg/quantize"
)

// ErrNotFirstUseOrdered is returned when a batch's indices would break the
// codec's high-water-mark rule and renumbering is disabled.
var ErrNotFirstUseOrdered = errors.New("indices are not in first-use order")

// Options controls batch compression.
type Options struct {
	// Workers is the number of batches compressed at once.
	Workers int
	// Renumber reorders vertices into first-use order when needed.
	Renumber bool
	// Codec defaults to the UTF-8 codec.
	Codec  *codec.Codec
	Logger *zap.Logger
	// Progress is called once per finished batch. It may be called from
	// several goroutines.
	Progress func()
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Workers < 1 {
		out.Workers = 1
	}
	if out.Codec == nil {
		out.Codec = codec.New(nil)
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}

// Result is one compressed batch.
type Result struct {
	Texture   string
	Vertices  int
	Triangles int
	Params    quantize.BoundsParams
	Quantized quantize.QuantizedAttribList
	Indices   mesh.IndexList
	Data      []byte
}

// CompressBatch quantizes and compresses one flattened mesh.
func CompressBatch(texture string, m *mesh.DrawMesh, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With(zap.String("texture", texture))

	if !mesh.IsFirstUseOrdered(m.Indices) {
		if !opts.Renumber {
			return nil, fmt.Errorf("batch %q: %w", texture, ErrNotFirstUseOrdered)
		}
		renumbered, err := mesh.RenumberFirstUse(m)
		if err != nil {
			return nil, fmt.Errorf("batch %q: renumbering: %w", texture, err)
		}
		log.Debug("renumbered vertices",
			zap.Int("before", m.Attribs.VertexCount()),
			zap.Int("after", renumbered.Attribs.VertexCount()))
		m = renumbered
	}

	q, params := quantize.Mesh(m.Attribs)
	data, err := opts.Codec.CompressMesh(q, m.Indices)
	if err != nil {
		return nil, fmt.Errorf("batch %q: %w", texture, err)
	}

	r := &Result{
		Texture:   texture,
		Vertices:  m.Attribs.VertexCount(),
		Triangles: m.TriangleCount(),
		Params:    params,
		Quantized: q,
		Indices:   m.Indices,
		Data:      data,
	}
	log.Debug("batch compressed",
		zap.Int("vertices", r.Vertices),
		zap.Int("triangles", r.Triangles),
		zap.Int("bytes", len(data)))
	return r, nil
}

// CompressAll compresses every batch. Batches share no mutable state, so up
// to opts.Workers run concurrently. Results keep the order of batches. The
// first failure cancels the remaining work.
func CompressAll(ctx context.Context, batches []formats.Batch, opts Options) ([]*Result, error) {
	opts = opts.withDefaults()
	results := make([]*Result, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := CompressBatch(b.Texture, b.Mesh(), opts)
			if err != nil {
				return err
			}
			results[i] = r
			if opts.Progress != nil {
				opts.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Verify decodes every result and checks it reproduces the quantized
// attributes and indices exactly. All mismatches are reported.
func Verify(results []*Result) error {
	var errs error
	for _, r := range results {
		errs = multierr.Append(errs, verifyOne(r))
	}
	return errs
}

func verifyOne(r *Result) error {
	dec, err := codec.DecodeMesh(r.Data)
	if err != nil {
		return fmt.Errorf("batch %q: decoding: %w", r.Texture, err)
	}
	if len(dec.Attribs) != len(r.Quantized) {
		return fmt.Errorf("batch %q: decoded %d attribute values, expected %d", r.Texture, len(dec.Attribs), len(r.Quantized))
	}
	for i := range dec.Attribs {
		if dec.Attribs[i] != r.Quantized[i] {
			return fmt.Errorf("batch %q: attribute %d decoded as %d, expected %d", r.Texture, i, dec.Attribs[i], r.Quantized[i])
		}
	}
	if len(dec.Indices) != len(r.Indices) {
		return fmt.Errorf("batch %q: decoded %d indices, expected %d", r.Texture, len(dec.Indices), len(r.Indices))
	}
	for i := range dec.Indices {
		if dec.Indices[i] != r.Indices[i] {
			return fmt.Errorf("batch %q: index %d decoded as %d, expected %d", r.Texture, i, dec.Indices[i], r.Indices[i])
		}
	}
	return nil
}

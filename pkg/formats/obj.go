package formats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"github.com/Faultbox/meshpack/pkg/charset"
	"github.com/Faultbox/meshpack/pkg/mesh"
)

// OBJ format errors.
var (
	ErrBadPosition = errors.New("bad position")
	ErrBadTexCoord = errors.New("bad texcoord")
	ErrBadNormal   = errors.New("bad normal")
	ErrBadIndex    = errors.New("bad face index")
)

// maxAttribFloats is the most floats read from one attribute line.
// MeshLab writes positions with a trailing color: v x y z r g b.
const maxAttribFloats = 6

// OBJ is a parsed Wavefront OBJ file. Faces are fan-triangulated into one
// DrawBatch per diffuse texture while parsing; all batches share Sources.
type OBJ struct {
	Sources   mesh.Sources
	Materials []Material
	// Warnings counts unsupported statements that were skipped.
	Warnings int

	batches map[string]*mesh.DrawBatch
}

// Batch is one texture's flattened geometry.
type Batch struct {
	// Texture is the map_Kd of the batch materials, empty when untextured.
	Texture string
	*mesh.DrawBatch
}

// Batches returns the non-empty batches sorted by texture name.
func (o *OBJ) Batches() []Batch {
	names := make([]string, 0, len(o.batches))
	for name, b := range o.batches {
		if !b.Empty() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]Batch, len(names))
	for i, name := range names {
		out[i] = Batch{Texture: name, DrawBatch: o.batches[name]}
	}
	return out
}

// OBJOptions controls OBJ parsing.
type OBJOptions struct {
	// Logger receives warnings. Defaults to a no-op logger.
	Logger *zap.Logger
	// BaseDir resolves relative mtllib paths.
	BaseDir string
	// OpenMTL opens a material library. Defaults to os.Open under BaseDir.
	OpenMTL func(name string) (io.ReadCloser, error)
	// Charset names the text encoding of the OBJ and its material
	// libraries. Empty means UTF-8.
	Charset string
}

// ParseOBJFile parses the OBJ file at path, resolving material libraries
// next to it unless opts.BaseDir is set.
func ParseOBJFile(path string, opts OBJOptions) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ: %w", err)
	}
	defer f.Close()

	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return ParseOBJ(f, opts)
}

// ParseOBJ parses a Wavefront OBJ stream.
func ParseOBJ(r io.Reader, opts OBJOptions) (*OBJ, error) {
	enc, err := charset.Lookup(opts.Charset)
	if err != nil {
		return nil, err
	}
	p := newOBJParser(opts)
	p.enc = enc

	scanner := newLineScanner(charset.NewReader(r, enc))
	for scanner.Scan() {
		p.lineNum++
		if err := p.parseLine(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	return p.obj, nil
}

// objParser holds the state of one parse. Warn-once flags live here so
// that separate parses do not affect each other.
type objParser struct {
	obj     *OBJ
	opts    OBJOptions
	enc     encoding.Encoding
	log     *zap.Logger
	lineNum int

	current          *mesh.DrawBatch
	materialTextures map[string]string

	warnedGroup     bool
	warnedSmoothing bool
}

func newOBJParser(opts OBJOptions) *objParser {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OpenMTL == nil {
		baseDir := opts.BaseDir
		opts.OpenMTL = func(name string) (io.ReadCloser, error) {
			if !filepath.IsAbs(name) {
				name = filepath.Join(baseDir, name)
			}
			return os.Open(name)
		}
	}

	obj := &OBJ{batches: make(map[string]*mesh.DrawBatch)}
	p := &objParser{
		obj:              obj,
		opts:             opts,
		log:              log,
		materialTextures: make(map[string]string),
	}
	p.current = p.batch("")
	return p
}

// batch returns the batch for a texture, creating it on first use.
func (p *objParser) batch(texture string) *mesh.DrawBatch {
	b, ok := p.obj.batches[texture]
	if !ok {
		b = mesh.NewDrawBatch(&p.obj.Sources)
		p.obj.batches[texture] = b
	}
	return b
}

func (p *objParser) warn(why string) {
	p.obj.Warnings++
	p.log.Warn(why, zap.Int("line", p.lineNum))
}

func (p *objParser) parseLine(line string) error {
	if line == "" || line[0] == '#' {
		return nil
	}

	keyword, rest := splitKeyword(line)
	switch keyword {
	case "v":
		return p.parsePosition(rest)
	case "vt":
		return p.parseTexCoord(rest)
	case "vn":
		return p.parseNormal(rest)
	case "f", "fo":
		return p.parseFace(rest)
	case "g":
		if !p.warnedGroup {
			p.warn("group unsupported")
			p.warnedGroup = true
		}
	case "s":
		if !p.warnedSmoothing {
			p.warn("smoothing group unsupported")
			p.warnedSmoothing = true
		}
	case "p":
		p.warn("point unsupported")
	case "l":
		p.warn("line unsupported")
	case "usemtl":
		p.parseUsemtl(rest)
	case "mtllib":
		p.parseMtllib(rest)
	default:
		if keyword[0] == 'v' {
			p.warn("unknown attribute format")
		} else {
			p.warn("unknown keyword")
		}
	}
	return nil
}

func (p *objParser) parsePosition(rest string) error {
	floats := parseFloats(rest, maxAttribFloats)
	// A trailing r g b color is ignored.
	if len(floats) != mesh.PositionDim && len(floats) != 6 {
		return fmt.Errorf("%w: %d values", ErrBadPosition, len(floats))
	}
	p.obj.Sources.Positions = append(p.obj.Sources.Positions, floats[:mesh.PositionDim]...)
	return nil
}

func (p *objParser) parseTexCoord(rest string) error {
	floats := parseFloats(rest, maxAttribFloats)
	if len(floats) < 1 || len(floats) > 3 {
		return fmt.Errorf("%w: %d values", ErrBadTexCoord, len(floats))
	}
	// 1-D coordinates get v = 0; a w coordinate is dropped.
	var uv [mesh.TexCoordDim]float32
	copy(uv[:], floats)
	p.obj.Sources.TexCoords = append(p.obj.Sources.TexCoords, uv[:]...)
	return nil
}

func (p *objParser) parseNormal(rest string) error {
	floats := parseFloats(rest, maxAttribFloats)
	if len(floats) != mesh.NormalDim {
		return fmt.Errorf("%w: %d values", ErrBadNormal, len(floats))
	}
	p.obj.Sources.Normals = append(p.obj.Sources.Normals, floats...)
	return nil
}

// parseFace triangulates a polygon as a fan around its first corner.
func (p *objParser) parseFace(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		p.warn("face with fewer than 3 corners")
		return nil
	}

	var tri [3]mesh.IndexTriple
	for i, field := range fields {
		corner, err := p.parseCorner(field)
		if err != nil {
			return fmt.Errorf("corner %d: %w", i, err)
		}
		if i < 2 {
			tri[i] = corner
			continue
		}
		tri[2] = corner
		if err := p.current.AddTriangle(tri); err != nil {
			return err
		}
		// The newest corner is shared with the next triangle.
		tri[1] = tri[2]
	}
	return nil
}

// parseCorner parses "p", "p/t", "p//n" or "p/t/n" into 0-based indices.
// Negative indices count back from the most recent attribute.
func (p *objParser) parseCorner(field string) (mesh.IndexTriple, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return mesh.IndexTriple{}, fmt.Errorf("%w: %q", ErrBadIndex, field)
	}

	src := &p.obj.Sources
	counts := [3]int{src.PositionCount(), src.TexCoordCount(), src.NormalCount()}
	out := [3]int{mesh.Absent, mesh.Absent, mesh.Absent}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return mesh.IndexTriple{}, fmt.Errorf("%w: missing position in %q", ErrBadIndex, field)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || (i == 0 && n == 0) {
			return mesh.IndexTriple{}, fmt.Errorf("%w: %q", ErrBadIndex, field)
		}
		if n > 0 {
			out[i] = n - 1
		} else if n < 0 {
			out[i] = counts[i] + n
			if out[i] < 0 {
				return mesh.IndexTriple{}, fmt.Errorf("%w: %q reaches before the first attribute", ErrBadIndex, field)
			}
		}
	}
	return mesh.IndexTriple{Position: out[0], TexCoord: out[1], Normal: out[2]}, nil
}

// parseUsemtl switches to the batch of the material's texture. Unknown
// materials and untextured ones share the untextured batch.
func (p *objParser) parseUsemtl(name string) {
	texture, ok := p.materialTextures[name]
	if !ok {
		p.warn("unknown material")
	}
	p.current = p.batch(texture)
}

func (p *objParser) parseMtllib(name string) {
	rc, err := p.opts.OpenMTL(name)
	if err != nil {
		p.warn("mtllib not found")
		return
	}
	defer rc.Close()

	materials, err := ParseMTL(charset.NewReader(rc, p.enc), p.log)
	if err != nil {
		p.warn("mtllib unreadable")
		return
	}

	for _, m := range materials {
		p.obj.Materials = append(p.obj.Materials, m)
		p.materialTextures[m.Name] = m.MapKd
		if m.MapKd != "" {
			p.batch(m.MapKd)
		}
	}
}

// parseFloats parses up to max leading floats of s, stopping at the first
// field that is not a number.
func parseFloats(s string, max int) []float32 {
	var out []float32
	for _, field := range strings.Fields(s) {
		if len(out) == max {
			break
		}
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			break
		}
		out = append(out, float32(f))
	}
	return out
}

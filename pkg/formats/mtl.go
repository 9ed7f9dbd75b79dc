package formats

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/pkg/charset"
)

// Material is a Wavefront MTL material. Only the diffuse color and diffuse
// texture are read. MapKd always uses forward slashes.
type Material struct {
	Name  string
	Kd    [3]float32
	MapKd string
}

// ParseMTL reads the materials of a Wavefront MTL file.
func ParseMTL(r io.Reader, log *zap.Logger) ([]Material, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var materials []Material
	var current *Material

	scanner := newLineScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		keyword, rest := splitKeyword(line)

		switch keyword {
		case "newmtl":
			materials = append(materials, Material{Name: rest})
			current = &materials[len(materials)-1]
		case "Kd":
			if current == nil {
				log.Warn("Kd before newmtl", zap.Int("line", lineNum))
				continue
			}
			floats := parseFloats(rest, 3)
			copy(current.Kd[:], floats)
		case "map_Kd":
			if current == nil {
				log.Warn("map_Kd before newmtl", zap.Int("line", lineNum))
				continue
			}
			current.MapKd = charset.NormalizePath(rest)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	return materials, nil
}

// newLineScanner returns a scanner without a fixed line length limit.
func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return s
}

// splitKeyword splits "keyword rest of line".
func splitKeyword(line string) (string, string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/klauspost/compress/zstd"
)

// zstdExt is appended to the stream file name for zstd sidecars.
const zstdExt = ".zst"

// OutputOptions controls how results are written.
type OutputOptions struct {
	Extension   string
	Zstd        bool
	WriteParams bool
}

// StreamName returns the file name for a batch of the model named base.
// The untextured batch uses base alone. Different textures may map to the
// same name; WriteResults resolves that.
func StreamName(base, texture, ext string) string {
	if texture == "" {
		return base + ext
	}
	tex := strings.TrimSuffix(filepath.Base(texture), filepath.Ext(texture))
	return base + "_" + sanitize(tex) + ext
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
}

// uniqueStreamName returns StreamName, suffixed with _2, _3, ... when the
// name is already taken. Names are compared case-insensitively so results
// stay distinct on case-insensitive file systems.
func uniqueStreamName(used map[string]bool, base, texture, ext string) string {
	name := StreamName(base, texture, ext)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	used[strings.ToLower(name)] = true
	return name
}

// WriteResults writes each result's stream into dir and returns the paths
// written. Textures whose names collide get numbered file names. With WriteParams a ".params.js" file holding the quantization
// parameters is written next to each stream.
func WriteResults(dir, base string, results []*Result, opts OutputOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	used := make(map[string]bool)
	for _, r := range results {
		path := filepath.Join(dir, uniqueStreamName(used, base, r.Texture, opts.Extension))
		if err := os.WriteFile(path, r.Data, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)

		if opts.Zstd {
			packed, err := compressZstd(r.Data)
			if err != nil {
				return written, fmt.Errorf("compressing %s: %w", path, err)
			}
			if err := os.WriteFile(path+zstdExt, packed, 0644); err != nil {
				return written, fmt.Errorf("writing %s: %w", path+zstdExt, err)
			}
			written = append(written, path+zstdExt)
		}

		if opts.WriteParams {
			var buf bytes.Buffer
			if err := r.Params.DumpJSON(&buf); err != nil {
				return written, err
			}
			paramsPath := strings.TrimSuffix(path, opts.Extension) + ".params.js"
			if err := os.WriteFile(paramsPath, buf.Bytes(), 0644); err != nil {
				return written, fmt.Errorf("writing %s: %w", paramsPath, err)
			}
			written = append(written, paramsPath)
		}
	}
	return written, nil
}

// ReadStream reads a compressed stream, unpacking zstd sidecars.
func ReadStream(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, zstdExt) {
		return decompressZstd(data)
	}
	return data, nil
}

func compressZstd(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(dec); err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return out.Bytes(), nil
}

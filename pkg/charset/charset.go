// Package charset decodes model files written in legacy text encodings.
//
// OBJ and MTL files carry no encoding declaration. Exporters on localized
// Windows systems write material and texture names in the system code page,
// so names must be decoded before they are compared or used as file names.
package charset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned by Lookup for unsupported names.
var ErrUnknownCharset = errors.New("unknown charset")

var charsets = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
	"shift_jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
}

// Lookup returns the encoding for name. UTF-8 and the empty name return
// nil, meaning the input is used as is.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}

// NewReader returns a reader that decodes r from enc into UTF-8.
// A nil enc returns r unchanged.
func NewReader(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// NormalizePath converts Windows separators in a texture path to slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

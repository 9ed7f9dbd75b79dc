package codec

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxEncodable is the largest value AppendUTF8 accepts. Values from
// surrogateStart up are shifted past the surrogate block, which leaves
// 0xFFFF-0x0800 usable code points.
const MaxEncodable = 0xF7FF

const (
	surrogateStart = 0xD800
	surrogateShift = 0x0800
)

// Primitive errors.
var (
	ErrUnencodable     = errors.New("value too large for UTF-8 transport encoding")
	ErrInvalidEncoding = errors.New("invalid UTF-8 transport encoding")
	ErrTruncated       = errors.New("truncated stream")
)

// Encoder appends the variable-length encoding of v to dst.
type Encoder func(dst []byte, v uint16) ([]byte, error)

// AppendUTF8 appends v as a single UTF-8 code point of 1 to 3 bytes. The
// output is always valid UTF-8 and contains no surrogate code points, so it
// can be embedded in text transports as-is.
func AppendUTF8(dst []byte, v uint16) ([]byte, error) {
	if v > MaxEncodable {
		return dst, fmt.Errorf("%w: %d", ErrUnencodable, v)
	}
	r := rune(v)
	if r >= surrogateStart {
		r += surrogateShift
	}
	return utf8.AppendRune(dst, r), nil
}

// DecodeUTF8 decodes the first value in b and returns it with the number of
// bytes consumed.
func DecodeUTF8(b []byte) (uint16, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		if !utf8.FullRune(b) {
			return 0, 0, ErrTruncated
		}
		return 0, 0, fmt.Errorf("%w: byte 0x%02x", ErrInvalidEncoding, b[0])
	}
	switch {
	case r < surrogateStart:
		return uint16(r), size, nil
	case r >= surrogateStart+surrogateShift && r <= MaxEncodable+surrogateShift:
		return uint16(r - surrogateShift), size, nil
	}
	return 0, 0, fmt.Errorf("%w: code point U+%04X", ErrInvalidEncoding, r)
}

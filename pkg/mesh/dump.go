package mesh

import (
	"bufio"
	"fmt"
	"io"
)

// DumpAttribs writes the interleaved float attributes as a JavaScript
// Float32Array literal, one vertex per line. This is a debug listing, not
// the compressed wire format.
func DumpAttribs(w io.Writer, attribs AttribList) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "var attribs = new Float32Array([")
	for i := 0; i+Stride <= len(attribs); i += Stride {
		a := attribs[i : i+Stride]
		fmt.Fprintf(bw, "%f,%f,%f,%f,%f,%f,%f,%f,\n", a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7])
	}
	fmt.Fprintln(bw, "]);")
	return bw.Flush()
}

// DumpIndices writes the flat index list as a Uint16Array literal, one
// triangle per line.
func DumpIndices(w io.Writer, indices IndexList) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "var indices = new Uint16Array([")
	for i := 0; i+3 <= len(indices); i += 3 {
		fmt.Fprintf(bw, "%d,%d,%d,\n", indices[i], indices[i+1], indices[i+2])
	}
	fmt.Fprintln(bw, "]);")
	return bw.Flush()
}

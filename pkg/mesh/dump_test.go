package mesh

import (
	"bytes"
	"testing"
)

func TestDumpAttribs(t *testing.T) {
	var buf bytes.Buffer
	attribs := AttribList{1, 2, 3, 0.5, 0.25, 0, 0, 1}

	if err := DumpAttribs(&buf, attribs); err != nil {
		t.Fatalf("DumpAttribs failed: %v", err)
	}

	want := "var attribs = new Float32Array([\n" +
		"1.000000,2.000000,3.000000,0.500000,0.250000,0.000000,0.000000,1.000000,\n" +
		"]);\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestDumpIndices(t *testing.T) {
	var buf bytes.Buffer

	if err := DumpIndices(&buf, IndexList{0, 1, 2, 0, 2, 3}); err != nil {
		t.Fatalf("DumpIndices failed: %v", err)
	}

	want := "var indices = new Uint16Array([\n0,1,2,\n0,2,3,\n]);\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

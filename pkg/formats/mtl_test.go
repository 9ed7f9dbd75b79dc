package formats

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseMTL(t *testing.T) {
	src := `
# exported
newmtl stone
Ka 0 0 0
Kd 0.5 0.25 0.125
map_Kd textures/stone.jpg

newmtl glass
Kd 0.9 0.9 1.0
`
	materials, err := ParseMTL(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(materials))
	}

	stone := materials[0]
	if stone.Name != "stone" {
		t.Errorf("expected name stone, got %q", stone.Name)
	}
	if stone.Kd != [3]float32{0.5, 0.25, 0.125} {
		t.Errorf("unexpected Kd %v", stone.Kd)
	}
	if stone.MapKd != "textures/stone.jpg" {
		t.Errorf("expected map_Kd textures/stone.jpg, got %q", stone.MapKd)
	}
	if materials[1].MapKd != "" {
		t.Errorf("expected no texture for glass, got %q", materials[1].MapKd)
	}
}

func TestParseMTL_StatementsBeforeNewmtl(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	materials, err := ParseMTL(strings.NewReader("Kd 1 1 1\nmap_Kd x.png\n"), zap.New(core))
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(materials) != 0 {
		t.Errorf("expected no materials, got %d", len(materials))
	}
	if logs.Len() != 2 {
		t.Errorf("expected 2 warnings, got %d", logs.Len())
	}
}

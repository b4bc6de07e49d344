package model

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/husk/pkg/glb"
)

func load(t *testing.T, doc string) *Def {
	t.Helper()
	def, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return def
}

func TestLoadAndBuildPyramid(t *testing.T) {
	def := load(t, `
rings:
  - points: ["1", "*", "4"]
    shading: Smooth
  - points: ["0"]
`)
	if len(def.Rings) != 2 {
		t.Fatalf("rings = %d, want 2", len(def.Rings))
	}

	h, err := def.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 4 base vertices and the apex; the band collapses to a fan of 4
	// faces and the degenerate apex ring is not capped
	if got := h.NumVertices(); got != 5 {
		t.Errorf("vertices = %d, want 5", got)
	}
	if got := h.NumFaces(); got != 4 {
		t.Errorf("faces = %d, want 4", got)
	}

	var buf bytes.Buffer
	if err := h.WriteGLB(&buf); err != nil {
		t.Fatalf("WriteGLB: %v", err)
	}
	if _, err := glb.Parse(&buf); err != nil {
		t.Errorf("exported container does not parse: %v", err)
	}
}

func TestRepeatExpansion(t *testing.T) {
	spokes, err := parsePoints([]string{"2", "*", "3", "0.5"})
	if err != nil {
		t.Fatalf("parsePoints: %v", err)
	}
	if len(spokes) != 4 {
		t.Fatalf("spokes = %d, want 4", len(spokes))
	}
	for i := 0; i < 3; i++ {
		if spokes[i].Distance != 2 {
			t.Errorf("spoke %d distance = %v, want 2", i, spokes[i].Distance)
		}
	}
	if spokes[3].Distance != 0.5 {
		t.Errorf("spoke 3 distance = %v, want 0.5", spokes[3].Distance)
	}
}

func TestRepeatWithoutPrevious(t *testing.T) {
	// the repeat falls back to a unit spoke
	spokes, err := parsePoints([]string{"*", "3"})
	if err != nil {
		t.Fatalf("parsePoints: %v", err)
	}
	if len(spokes) != 2 {
		t.Fatalf("spokes = %d, want 2", len(spokes))
	}
	for i, spoke := range spokes {
		if spoke.Distance != 1 {
			t.Errorf("spoke %d distance = %v, want 1", i, spoke.Distance)
		}
	}
}

func TestRepeatLabel(t *testing.T) {
	spokes, err := parsePoints([]string{"limb", "*", "4"})
	if err != nil {
		t.Fatalf("parsePoints: %v", err)
	}
	if len(spokes) != 4 {
		t.Fatalf("spokes = %d, want 4", len(spokes))
	}
	for i, spoke := range spokes {
		if spoke.Label != "limb" {
			t.Errorf("spoke %d label = %q, want limb", i, spoke.Label)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		doc  string
		want error
	}{
		{`rings: [{points: ["1"], axis: "1 2"}]`, ErrInvalidAxis},
		{`rings: [{points: ["1"], axis: "a b c"}]`, ErrInvalidAxis},
		{`rings: [{points: ["1"], shading: Gouraud}]`, ErrInvalidShading},
		{`rings: [{points: ["1", "*", "x"]}]`, ErrInvalidRepeatCount},
		{`rings: [{points: ["1", "*", "0"]}]`, ErrInvalidRepeatCount},
		{`rings: [{points: ["-1"]}]`, ErrInvalidPointDef},
		{`rings: [{points: ["1.2.3"]}]`, ErrInvalidPointDef},
		{`rings: [{points: ["1"], scale: -2}]`, ErrInvalidScale},
	} {
		def := load(t, tc.doc)
		if _, err := def.Build(); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.doc, err, tc.want)
		}
	}
}

func TestBranchDocument(t *testing.T) {
	def := load(t, `
rings:
  - points: ["1", "*", "4"]
    shading: Smooth
  - points: ["limb", "*", "4"]
  - branch: limb
  - points: ["1", "*", "4"]
  - points: ["0"]
`)
	h, err := def.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := h.WriteGLB(&buf); err != nil {
		t.Fatalf("WriteGLB: %v", err)
	}
	f, err := glb.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	indices, err := f.Indices()
	if err != nil {
		t.Fatalf("Indices: %v", err)
	}
	if len(indices) == 0 {
		t.Error("branch document produced no faces")
	}
}

func TestUnknownBranchAborts(t *testing.T) {
	def := load(t, `
rings:
  - points: ["1", "*", "3"]
  - branch: nope
`)
	if _, err := def.Build(); err == nil {
		t.Error("expected unknown branch error")
	}
}

func TestIsLabel(t *testing.T) {
	for code, want := range map[string]bool{
		"limb":  true,
		"arm_2": true,
		"leg-l": true,
		"":      false,
		"2arm":  false,
		"a b":   false,
		"*":     false,
	} {
		if got := isLabel(code); got != want {
			t.Errorf("isLabel(%q) = %v, want %v", code, got, want)
		}
	}
}

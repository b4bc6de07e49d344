// Package model loads YAML surface definitions and builds them into a
// husk. A definition is a list of rings, each giving point codes, an
// optional axis, scale, shading mode and branch label.
package model

import (
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/husk/internal/logger"
	"github.com/Faultbox/husk/pkg/husk"
	"github.com/Faultbox/husk/pkg/math"
)

// Definition errors.
var (
	ErrInvalidAxis        = errors.New("invalid axis")
	ErrInvalidPointDef    = errors.New("invalid point definition")
	ErrInvalidRepeatCount = errors.New("invalid repeat count")
	ErrInvalidShading     = errors.New("invalid shading")
	ErrInvalidScale       = errors.New("invalid scale")
)

// RingDef is one ring of a surface definition.
type RingDef struct {
	// Branch enters the named branch before this ring is added.
	Branch string `yaml:"branch,omitempty"`

	// Axis is "x y z". On a branch ring it overrides the computed
	// branch axis; otherwise it reorients the ring.
	Axis string `yaml:"axis,omitempty"`

	// Points are spoke codes: a distance, a branch label, or "*"
	// followed by a repeat count.
	Points []string `yaml:"points,omitempty"`

	Scale   *float32 `yaml:"scale,omitempty"`
	Shading string   `yaml:"shading,omitempty"`
}

// Def is a whole surface definition document.
type Def struct {
	Rings []RingDef `yaml:"rings"`
}

// Load decodes a YAML surface definition.
func Load(r io.Reader) (*Def, error) {
	var def Def
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return nil, fmt.Errorf("model: decode definition: %w", err)
	}
	return &def, nil
}

// LoadFile decodes a YAML surface definition from a file.
func LoadFile(path string) (*Def, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open definition: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Build runs the definition through a husk builder. Any error aborts
// the whole document.
func (d *Def) Build() (*husk.Husk, error) {
	h := husk.New()
	for i, rd := range d.Rings {
		if err := d.addRing(h, rd); err != nil {
			return nil, fmt.Errorf("ring %d: %w", i, err)
		}
		logger.Debug("ring added",
			zap.Int("ring", i),
			zap.String("branch", rd.Branch),
			zap.Int("vertices", h.NumVertices()),
			zap.Int("faces", h.NumFaces()))
	}
	logger.Info("definition built",
		zap.Int("rings", len(d.Rings)),
		zap.Int("vertices", h.NumVertices()),
		zap.Int("faces", h.NumFaces()))
	return h, nil
}

// addRing applies one ring definition to the husk.
func (d *Def) addRing(h *husk.Husk, rd RingDef) error {
	withAxis := true
	if rd.Branch != "" {
		var override *math.Vec3
		if rd.Axis != "" {
			axis, err := parseAxis(rd.Axis)
			if err != nil {
				return err
			}
			override = &axis
		}
		if err := h.Branch(rd.Branch, override); err != nil {
			return err
		}
		// the axis was consumed by the branch
		withAxis = false
		if len(rd.Points) == 0 && rd.Scale == nil && rd.Shading == "" {
			return nil
		}
	}
	ring, err := rd.ring(withAxis)
	if err != nil {
		return err
	}
	return h.AddRing(ring)
}

// ring builds the husk ring for this definition.
func (rd RingDef) ring(withAxis bool) (husk.Ring, error) {
	r := husk.NewRing()
	if withAxis && rd.Axis != "" {
		axis, err := parseAxis(rd.Axis)
		if err != nil {
			return r, err
		}
		r = r.Axis(axis)
	}
	if rd.Scale != nil {
		s := *rd.Scale
		if s < 0 || gomath.IsNaN(float64(s)) || gomath.IsInf(float64(s), 0) {
			return r, fmt.Errorf("%w: %v", ErrInvalidScale, s)
		}
		r = r.Scale(s)
	}
	shading, err := parseShading(rd.Shading)
	if err != nil {
		return r, err
	}
	if shading != 0 {
		r = r.Shading(shading)
	}
	spokes, err := parsePoints(rd.Points)
	if err != nil {
		return r, err
	}
	for _, spoke := range spokes {
		if spoke.Label == "" {
			r = r.Spoke(spoke.Distance)
		} else {
			r = r.BranchSpoke(spoke.Distance, spoke.Label)
		}
	}
	return r, nil
}

// parsePoints expands point codes into spokes. A "*" code repeats the
// previous spoke: the following code gives the total count.
func parsePoints(codes []string) ([]husk.Spoke, error) {
	var spokes []husk.Spoke
	repeat := false
	for _, code := range codes {
		if repeat {
			count, err := strconv.Atoi(code)
			if err != nil || count < 1 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidRepeatCount, code)
			}
			last := husk.Spoke{Distance: 1}
			if len(spokes) > 0 {
				last = spokes[len(spokes)-1]
			}
			for i := 1; i < count; i++ {
				spokes = append(spokes, last)
			}
			repeat = false
			continue
		}
		if code == "*" {
			repeat = true
			continue
		}
		spoke, err := parseSpoke(code)
		if err != nil {
			return nil, err
		}
		spokes = append(spokes, spoke)
	}
	return spokes, nil
}

// parseSpoke parses one point code: a non-negative distance, or a
// branch label starting with a letter.
func parseSpoke(code string) (husk.Spoke, error) {
	if f, err := strconv.ParseFloat(code, 32); err == nil {
		d := float32(f)
		if d < 0 || gomath.IsInf(float64(d), 0) {
			return husk.Spoke{}, fmt.Errorf("%w: %q", ErrInvalidPointDef, code)
		}
		return husk.Spoke{Distance: d}, nil
	}
	if !isLabel(code) {
		return husk.Spoke{}, fmt.Errorf("%w: %q", ErrInvalidPointDef, code)
	}
	return husk.Spoke{Distance: 1, Label: code}, nil
}

// isLabel reports whether the code is a branch label: a letter
// followed by letters, digits, '_' or '-'.
func isLabel(code string) bool {
	for i, r := range code {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return code != ""
}

// parseAxis parses an "x y z" axis string.
func parseAxis(s string) (math.Vec3, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return math.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}
	var axis [3]float32
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil || gomath.IsInf(f, 0) || gomath.IsNaN(f) {
			return math.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
		}
		axis[i] = float32(f)
	}
	return math.Vec3{X: axis[0], Y: axis[1], Z: axis[2]}, nil
}

// parseShading parses the shading mode. An empty string leaves the
// mode unset so the ring inherits it.
func parseShading(s string) (husk.Shading, error) {
	switch s {
	case "":
		return 0, nil
	case "Flat", "flat":
		return husk.Flat, nil
	case "Smooth", "smooth":
		return husk.Smooth, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidShading, s)
	}
}

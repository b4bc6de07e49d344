// Package husk builds closed triangulated surfaces from stacked
// cross-section rings. Consecutive rings are stitched with triangle
// bands, the last open ring is capped with a fan, and spokes carrying
// a branch label defer their geometry until the branch is entered.
package husk

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/husk/pkg/math"
)

// Degrees is a whole-degree angular position used to order points
// around a ring. Offsets added for band interleaving deliberately do
// not wrap: the sweep across a band must stay monotone.
type Degrees uint16

// degreesFromRadians converts an angle to whole degrees in [0, 360),
// rounding to the nearest degree.
func degreesFromRadians(angle float32) Degrees {
	deg := gomath.Mod(float64(angle)*180/gomath.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return Degrees(gomath.Round(deg))
}

// Shading selects how faces emitted from a ring blend normals with
// their neighbors. The zero value inherits from the previous ring.
type Shading uint8

const (
	shadingUnset Shading = iota

	// Flat keeps a hard edge: adjacent faces do not share normals.
	Flat

	// Smooth blends normals across adjacent faces.
	Smooth
)

// weight converts the shading mode to a per-corner face weight.
// Unset shading defaults to flat.
func (s Shading) weight() float32 {
	if s == Smooth {
		return 1
	}
	return 0
}

// Spoke is a single radial point on a ring: a distance from the ring
// center and an optional branch label. Labeled spokes produce no
// vertex; they mark where a branch will grow.
type Spoke struct {
	Distance float32
	Label    string
}

// point is a resolved ring point. Unlabeled points carry a vertex
// index in the mesh builder; labeled points carry the would-be
// position for the branch accumulator.
type point struct {
	order Degrees
	ring  int
	vid   int
	label string
	pos   math.Vec3
}

func (p point) isBranch() bool {
	return p.label != ""
}

// Ring is one cross-section of the surface. Rings are value types
// built by chaining; fields left unset are inherited from the
// previous ring when the ring is added to a husk.
type Ring struct {
	spacing    float32
	hasSpacing bool
	scale      float32
	hasScale   bool
	shading    Shading
	spokes     []Spoke
	xform      math.Mat4
	points     []point
	id         int
}

// NewRing creates a ring with every field unset.
func NewRing() Ring {
	return Ring{xform: math.Identity()}
}

// Axis orients the ring relative to the previous one and sets the
// spacing to the axis length. Panics if any component is not finite.
func (r Ring) Axis(axis math.Vec3) Ring {
	if !axis.IsFinite() {
		panic(fmt.Sprintf("husk: non-finite ring axis %v", axis))
	}
	r.rotate(axis)
	return r
}

// Scale sets the radial scale applied to every spoke distance.
// Panics if the scale is negative or not finite.
func (r Ring) Scale(scale float32) Ring {
	if scale < 0 || gomath.IsNaN(float64(scale)) || gomath.IsInf(float64(scale), 0) {
		panic(fmt.Sprintf("husk: invalid ring scale %v", scale))
	}
	r.scale, r.hasScale = scale, true
	return r
}

// Shading sets the shading mode for faces emitted from this ring.
func (r Ring) Shading(shading Shading) Ring {
	r.shading = shading
	return r
}

// Spoke appends a radial point at the given distance. Panics if the
// distance is negative or not finite.
func (r Ring) Spoke(distance float32) Ring {
	return r.BranchSpoke(distance, "")
}

// BranchSpoke appends a labeled radial point. The label defers the
// geometry at this position to a later Branch call.
func (r Ring) BranchSpoke(distance float32, label string) Ring {
	if distance < 0 || gomath.IsNaN(float64(distance)) || gomath.IsInf(float64(distance), 0) {
		panic(fmt.Sprintf("husk: invalid spoke distance %v", distance))
	}
	spokes := make([]Spoke, len(r.spokes), len(r.spokes)+1)
	copy(spokes, r.spokes)
	r.spokes = append(spokes, Spoke{Distance: distance, Label: label})
	return r
}

// rotate applies the axis rotation to the accumulated transform and
// records the axis length as spacing. The rotation decomposes into a
// roll in the XY plane and a pitch in the YZ plane, each scaled by
// how much of the axis lies in that plane.
func (r *Ring) rotate(axis math.Vec3) {
	r.spacing, r.hasSpacing = axis.Length(), true
	a := axis.Normalize()
	if a.X != 0 {
		up := math.Vec2{Y: 1}
		proj := math.Vec2{X: a.X, Y: a.Y}
		angle := up.AngleBetweenSigned(proj) * proj.Length()
		r.xform = r.xform.Mul(math.RotateZ(angle))
	}
	if a.Z != 0 {
		up := math.Vec2{X: 1}
		proj := math.Vec2{X: a.Y, Y: a.Z}
		angle := up.AngleBetweenSigned(proj) * proj.Length()
		r.xform = r.xform.Mul(math.RotateX(angle))
	}
}

// updateWith merges a newly added ring over this one: set fields win,
// unset fields inherit, and the new transform composes onto the
// accumulated one before the spacing translation is applied.
func (r Ring) updateWith(ring Ring) Ring {
	merged := ring
	if !merged.hasSpacing {
		merged.spacing, merged.hasSpacing = r.spacing, r.hasSpacing
	}
	if len(merged.spokes) == 0 {
		merged.spokes = r.spokes
	}
	if !merged.hasScale {
		merged.scale, merged.hasScale = r.scale, r.hasScale
	}
	if merged.shading == shadingUnset {
		merged.shading = r.shading
	}
	merged.xform = r.xform.Mul(ring.xform)
	merged.points = nil
	merged.translate()
	return merged
}

// translate advances the ring center along its rotated local up axis
// by the spacing, default 1.
func (r *Ring) translate() {
	spacing := float32(1)
	if r.hasSpacing {
		spacing = r.spacing
	}
	delta := r.xform.TransformDirection(math.Vec3{Y: spacing})
	r.xform = r.xform.SetTranslation(r.xform.Translation().Add(delta))
}

// spokesOrDefault returns the ring's spokes, or a single zero-length
// spoke for a ring that never declared any.
func (r *Ring) spokesOrDefault() []Spoke {
	if len(r.spokes) == 0 {
		return []Spoke{{}}
	}
	return r.spokes
}

func (r *Ring) scaleOrDefault() float32 {
	if r.hasScale {
		return r.scale
	}
	return 1
}

func (r *Ring) weight() float32 {
	return r.shading.weight()
}

// halfStep is half the angular distance between adjacent spokes, used
// to interleave the points of two rings when stitching a band.
func (r *Ring) halfStep() Degrees {
	return Degrees(180 / len(r.spokesOrDefault()))
}

// angle returns the angular position of spoke i in radians.
func (r *Ring) angle(i int) float32 {
	return 2 * gomath.Pi * float32(i) / float32(len(r.spokesOrDefault()))
}

// makePoint resolves spoke i to its angular order and world position.
func (r *Ring) makePoint(i int, spoke Spoke) (Degrees, math.Vec3) {
	angle := r.angle(i)
	rot := math.QuatFromAxisAngle(math.Vec3{Y: 1}, angle)
	local := rot.RotateVec3(math.Vec3{X: spoke.Distance * r.scaleOrDefault()})
	return degreesFromRadians(angle), r.xform.TransformVec3(local)
}

// makeHub returns the order and world position of the ring center,
// used as the fan hub when capping.
func (r *Ring) makeHub() (Degrees, math.Vec3) {
	return 0, r.xform.TransformVec3(math.Vec3{})
}

func (r *Ring) pushVertexPt(order Degrees, vid int) {
	r.points = append(r.points, point{order: order, ring: r.id, vid: vid})
}

func (r *Ring) pushBranchPt(order Degrees, label string, pos math.Vec3) {
	r.points = append(r.points, point{order: order, ring: r.id, label: label, pos: pos})
}

// pointsOffset returns the ring's points shifted by the other ring's
// half step and sorted by descending angular order. The shift is not
// wrapped so that a band sweep stays monotone past 360.
func (r *Ring) pointsOffset(offset Degrees) []point {
	pts := make([]point, len(r.points))
	for i, pt := range r.points {
		pt.order += offset
		pts[i] = pt
	}
	sortPointsDescending(pts)
	return pts
}

// sortPointsDescending orders points by descending angular order,
// keeping insertion order on ties.
func sortPointsDescending(pts []point) {
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].order > pts[j].order
	})
}

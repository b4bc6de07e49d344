package husk

import (
	"fmt"
	"io"

	"github.com/Faultbox/husk/pkg/glb"
	"github.com/Faultbox/husk/pkg/math"
	"github.com/Faultbox/husk/pkg/mesh"
)

// Husk builds a closed surface from a sequence of rings. Rings added
// in order form a tube; labeled spokes accumulate into named branches
// that can later be entered to grow sub-tubes.
type Husk struct {
	builder *mesh.Builder

	// ring is the current open ring, nil between branches.
	ring *Ring

	branches map[string]*branch

	// consumed tracks labels already entered, so a later spoke
	// cannot resurrect a finished branch.
	consumed map[string]bool

	// rings counts rings to give each a distinct id for point
	// ordering ties.
	rings int
}

// New creates an empty husk.
func New() *Husk {
	return &Husk{
		builder:  mesh.NewBuilder(),
		branches: make(map[string]*branch),
		consumed: make(map[string]bool),
	}
}

// NumVertices returns the number of mesh vertices created so far.
func (h *Husk) NumVertices() int {
	return h.builder.NumVertices()
}

// NumFaces returns the number of mesh faces created so far.
func (h *Husk) NumFaces() int {
	return h.builder.NumFaces()
}

// AddRing adds a ring to the current tube. Unset ring fields (axis,
// scale, shading, spokes) are inherited from the previous ring. If a
// previous ring is open, a band of faces is stitched between them.
func (h *Husk) AddRing(ring Ring) error {
	prev := h.ring
	h.ring = nil
	r := ring
	if prev != nil {
		r = prev.updateWith(ring)
	}
	r.id = h.rings
	h.rings++
	if err := h.makePoints(&r); err != nil {
		return err
	}
	if prev != nil {
		if err := h.makeBand(prev, &r); err != nil {
			return err
		}
	}
	h.ring = &r
	return nil
}

// makePoints resolves the ring's spokes into mesh vertices and branch
// anchor points.
func (h *Husk) makePoints(r *Ring) error {
	for i, spoke := range r.spokesOrDefault() {
		order, pos := r.makePoint(i, spoke)
		if spoke.Label == "" {
			r.pushVertexPt(order, h.builder.PushVertex(pos))
			continue
		}
		if h.consumed[spoke.Label] {
			return fmt.Errorf("%w: %q already consumed",
				ErrUnknownBranchLabel, spoke.Label)
		}
		r.pushBranchPt(order, spoke.Label, pos)
		h.branch(spoke.Label).pushInternal(pos)
	}
	return nil
}

// branch returns the accumulator for a label, creating it on first use.
func (h *Husk) branch(label string) *branch {
	br, ok := h.branches[label]
	if !ok {
		br = &branch{}
		h.branches[label] = br
	}
	return br
}

// makeBand stitches a band of triangles between two rings. The points
// of each ring are offset by the other ring's half step so that rings
// of different counts interleave, then swept together in descending
// angular order as a triangle strip.
func (h *Husk) makeBand(r0, r1 *Ring) error {
	pts0 := r0.pointsOffset(r1.halfStep())
	pts1 := r1.pointsOffset(r0.halfStep())
	if len(pts0) == 0 || len(pts1) == 0 {
		return fmt.Errorf("%w: band between rings %d and %d",
			ErrInvalidRing, r0.id, r1.id)
	}
	first0 := pts0[len(pts0)-1]
	pts0 = pts0[:len(pts0)-1]
	first1 := pts1[len(pts1)-1]
	pts1 = pts1[:len(pts1)-1]

	band := make([]point, 0, len(pts0)+len(pts1))
	band = append(band, pts0...)
	band = append(band, pts1...)
	sortPointsDescending(band)

	weight := r0.weight()
	pt0, pt1 := first0, first1
	for i := len(band) - 1; i >= 0; i-- {
		pt := band[i]
		if err := h.addFace(pt1, pt0, pt, weight); err != nil {
			return err
		}
		if pt.ring == r0.id {
			pt0 = pt
		} else {
			pt1 = pt
		}
	}
	// connect back to the anchors
	if pt1 != first1 {
		if err := h.addFace(pt1, pt0, first1, weight); err != nil {
			return err
		}
	}
	if pt0 != first0 {
		if err := h.addFace(first0, first1, pt0, weight); err != nil {
			return err
		}
	}
	return nil
}

// cap closes the current open ring with a triangle fan around a new
// hub vertex at the ring center. Rings left with fewer than two
// points after popping the sweep anchor are left open.
func (h *Husk) cap() error {
	if h.ring == nil {
		return nil
	}
	ring := h.ring
	h.ring = nil

	pts := ring.pointsOffset(0)
	last := pts[len(pts)-1]
	pts = pts[:len(pts)-1]
	if len(pts) < 2 {
		return nil
	}

	order, pos := ring.makeHub()
	hub := point{order: order, ring: ring.id, vid: h.builder.PushVertex(pos)}
	weight := ring.weight()
	prev := last
	for _, pt := range pts {
		if err := h.addFace(pt, prev, hub, weight); err != nil {
			return err
		}
		prev = pt
	}
	return h.addFace(last, prev, hub, weight)
}

// Branch caps the current ring and re-seeds the builder from the
// accumulated branch geometry of the label. The new ring is centered
// on the branch's interior points and oriented along the winding
// normal of its edges, unless an explicit axis overrides it.
func (h *Husk) Branch(label string, axis *math.Vec3) error {
	if err := h.cap(); err != nil {
		return err
	}
	br, ok := h.branches[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBranchLabel, label)
	}
	delete(h.branches, label)
	h.consumed[label] = true
	if len(br.internal) == 0 {
		return fmt.Errorf("%w: %q has no anchor points", ErrUnknownBranchLabel, label)
	}
	if len(br.edges) == 0 {
		return fmt.Errorf("%w: branch %q has no edges", ErrInvalidRing, label)
	}

	center := br.center()
	a := br.axis(h.builder.Vertex, center)
	if axis != nil {
		a = *axis
	}
	ring := newBranchRing(center, a, len(br.edges))
	ring.id = h.rings
	h.rings++

	angles, err := br.edgeAngles(&ring, h.builder.Vertex)
	if err != nil {
		return err
	}
	for _, oa := range angles {
		ring.pushVertexPt(oa.order, oa.vid)
	}
	h.ring = &ring
	return nil
}

// newBranchRing builds the base ring of a branch: translated to the
// branch center, rotated to its axis, with one unit spoke per edge.
func newBranchRing(center, axis math.Vec3, count int) Ring {
	r := NewRing()
	r.xform = math.Translate(center.X, center.Y, center.Z)
	r.spokes = make([]Spoke, count)
	for i := range r.spokes {
		r.spokes[i] = Spoke{Distance: 1}
	}
	r.rotate(axis)
	return r
}

// addFace classifies a triangle by how many of its corners resolve to
// mesh vertices. All-vertex corners emit a face; corners on a branch
// defer the geometry by recording an edge into that branch instead.
func (h *Husk) addFace(p0, p1, p2 point, weight float32) error {
	switch {
	case !p0.isBranch() && !p1.isBranch() && !p2.isBranch():
		h.builder.PushFace(mesh.NewFace([3]int{p0.vid, p1.vid, p2.vid}, weight))
	case p0.isBranch() && !p1.isBranch() && !p2.isBranch():
		h.branch(p0.label).pushEdge(p1.vid, p2.vid)
	case !p0.isBranch() && p1.isBranch() && !p2.isBranch():
		h.branch(p1.label).pushEdge(p2.vid, p0.vid)
	case !p0.isBranch() && !p1.isBranch() && p2.isBranch():
		h.branch(p2.label).pushEdge(p0.vid, p1.vid)
	default:
		// two or three branch corners: no geometry, but all the
		// labels must agree
		labels := [3]string{p0.label, p1.label, p2.label}
		first := ""
		for _, label := range labels {
			if label == "" {
				continue
			}
			if first == "" {
				first = label
			} else if label != first {
				return fmt.Errorf("%w: %q != %q",
					ErrInvalidBranches, first, label)
			}
		}
	}
	return nil
}

// BuildMesh caps the current ring and finalizes the mesh: shading
// seams are split and vertex normals computed.
func (h *Husk) BuildMesh() (*mesh.Mesh, error) {
	if err := h.cap(); err != nil {
		return nil, err
	}
	return h.builder.Build(), nil
}

// WriteGLB finalizes the mesh and writes it to the writer as a binary
// glTF container.
func (h *Husk) WriteGLB(w io.Writer) error {
	m, err := h.BuildMesh()
	if err != nil {
		return err
	}
	return glb.Export(w, m)
}

package husk

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/husk/pkg/math"
)

// edge is a directed edge at the base of a branch, oriented the way
// the face that produced it winds around the branch opening.
type edge struct {
	v0, v1 int
}

// branch accumulates geometry contributed to one label by earlier
// rings: interior anchor positions from labeled spokes and base edges
// from faces that touched the label.
type branch struct {
	internal []math.Vec3
	edges    []edge
}

func (b *branch) pushInternal(pos math.Vec3) {
	b.internal = append(b.internal, pos)
}

func (b *branch) pushEdge(v0, v1 int) {
	b.edges = append(b.edges, edge{v0, v1})
}

// center returns the mean of the interior anchor positions.
func (b *branch) center() math.Vec3 {
	sum := math.Vec3{}
	for _, pos := range b.internal {
		sum = sum.Add(pos)
	}
	return sum.Scale(1 / float32(len(b.internal)))
}

// axis sums the cross products of the edge end points around the
// center, giving the average winding normal of the branch opening.
func (b *branch) axis(vertex func(int) math.Vec3, center math.Vec3) math.Vec3 {
	norm := math.Vec3{}
	for _, e := range b.edges {
		v0 := vertex(e.v0).Sub(center)
		v1 := vertex(e.v1).Sub(center)
		norm = norm.Add(v0.Cross(v1))
	}
	return norm.Normalize()
}

// edgeVids chains the edges into a single cycle starting at the given
// edge and returns the start vertex of each. Fails if the edges do
// not link up into one closed loop.
func (b *branch) edgeVids(start int) ([]int, error) {
	edges := make([]edge, len(b.edges))
	copy(edges, b.edges)
	if start > 0 {
		edges[0], edges[start] = edges[start], edges[0]
	}
	vid := edges[0].v1
	for i := 1; i < len(edges); i++ {
		for j := i + 1; j < len(edges); j++ {
			if vid == edges[j].v0 {
				edges[i], edges[j] = edges[j], edges[i]
			}
		}
		if edges[i].v0 != vid {
			return nil, fmt.Errorf("%w: no edge continues from vertex %d",
				ErrDisjointBranch, vid)
		}
		vid = edges[i].v1
	}
	if vid != edges[0].v0 {
		return nil, fmt.Errorf("%w: loop does not close at vertex %d",
			ErrDisjointBranch, vid)
	}
	vids := make([]int, len(edges))
	for i, e := range edges {
		vids[i] = e.v0
	}
	return vids, nil
}

// orderVid pairs a vertex with its angular order on the branch ring.
type orderVid struct {
	order Degrees
	vid   int
}

// edgeAngles resolves each edge vertex to its angular order around
// the branch ring. Vertices are projected into the ring's local plane
// and walked around the loop starting from the one nearest zero
// degrees, accumulating unsigned angles so the order stays monotone.
func (b *branch) edgeAngles(ring *Ring, vertex func(int) math.Vec3) ([]orderVid, error) {
	inverse := ring.xform.Inverse()
	zeroDeg := math.Vec3{X: 1}
	local := func(vid int) math.Vec3 {
		pos := inverse.TransformVec3(vertex(vid))
		return math.Vec3{X: pos.X, Z: pos.Z}
	}

	// find the edge whose start vertex is closest to zero degrees
	start := 0
	best := float32(gomath.MaxFloat32)
	for i, e := range b.edges {
		if ang := zeroDeg.AngleBetween(local(e.v0)); ang < best {
			best, start = ang, i
		}
	}

	vids, err := b.edgeVids(start)
	if err != nil {
		return nil, err
	}

	angle := float32(0)
	ppos := zeroDeg
	angles := make([]orderVid, 0, len(vids))
	for _, vid := range vids {
		pos := local(vid)
		angle += ppos.AngleBetween(pos)
		angles = append(angles, orderVid{order: degreesFromRadians(angle), vid: vid})
		ppos = pos
	}
	return angles, nil
}

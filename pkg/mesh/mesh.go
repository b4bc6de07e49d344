// Package mesh builds triangle meshes with shading-aware vertex
// normals. Faces carry a per-corner shading weight; corners with
// differing weights at a shared vertex are split apart so that hard
// edges keep distinct normals while smooth regions stay welded.
package mesh

import (
	"fmt"

	"github.com/Faultbox/husk/pkg/math"
)

// Face is a triangle face.
//
//	v0______v2
//	  \    /
//	   \  /
//	    \/
//	    v1
type Face struct {
	// Vertex indices
	vtx [3]int

	// Shading weight per corner: 0 is a hard (flat) corner, greater
	// than 0 is smooth.
	weight [3]float32
}

// NewFace creates a face with the same shading weight on all corners.
// Panics if the indices are not pairwise distinct.
func NewFace(vtx [3]int, weight float32) Face {
	if vtx[0] == vtx[1] || vtx[1] == vtx[2] || vtx[2] == vtx[0] {
		panic(fmt.Sprintf("mesh: degenerate face %v", vtx))
	}
	return Face{vtx: vtx, weight: [3]float32{weight, weight, weight}}
}

// Indices returns the three vertex indices of the face.
func (f Face) Indices() [3]int {
	return f.vtx
}

// cornerWeight returns the shading weight of the corner at vertex idx,
// and whether the face touches that vertex at all.
func (f Face) cornerWeight(idx int) (float32, bool) {
	for i, v := range f.vtx {
		if v == idx {
			return f.weight[i], true
		}
	}
	return 0, false
}

// repoint replaces a reference to vertex idx with the new index.
func (f *Face) repoint(idx, to int) {
	for i, v := range f.vtx {
		if v == idx {
			f.vtx[i] = to
			return
		}
	}
}

// Builder accumulates vertex positions and faces for a Mesh.
type Builder struct {
	// Vertex positions
	pos []math.Vec3

	// Triangle faces
	faces []Face
}

// NewBuilder creates an empty mesh builder.
func NewBuilder() *Builder {
	return &Builder{
		pos:   make([]math.Vec3, 0, 1024),
		faces: make([]Face, 0, 1024),
	}
}

// PushVertex appends a vertex position and returns its index.
func (b *Builder) PushVertex(pos math.Vec3) int {
	idx := len(b.pos)
	b.pos = append(b.pos, pos)
	return idx
}

// Vertex returns the position of the vertex at idx.
func (b *Builder) Vertex(idx int) math.Vec3 {
	return b.pos[idx]
}

// NumVertices returns the number of vertices pushed so far.
func (b *Builder) NumVertices() int {
	return len(b.pos)
}

// NumFaces returns the number of faces pushed so far.
func (b *Builder) NumFaces() int {
	return len(b.faces)
}

// PushFace appends a face. Referencing a vertex that has not been
// pushed is a contract violation and panics.
func (b *Builder) PushFace(face Face) {
	n := len(b.pos)
	if face.vtx[0] >= n || face.vtx[1] >= n || face.vtx[2] >= n {
		panic(fmt.Sprintf("mesh: face %v references vertex beyond count %d", face.vtx, n))
	}
	b.faces = append(b.faces, face)
}

// Build splits shading seams, computes vertex normals and flattens the
// index buffer. Panics if the final vertex count does not fit 16-bit
// indices.
func (b *Builder) Build() *Mesh {
	b.splitSeams()
	return &Mesh{
		pos:     b.pos,
		norm:    b.buildNormals(),
		indices: b.buildIndices(),
	}
}

// splitSeams duplicates vertices touched by corners of differing
// shading weight. Faces sharing a corner weight keep sharing a vertex;
// each further weight gets its own copy of the position.
func (b *Builder) splitSeams() {
	vertices := len(b.pos)
	for idx := 0; idx < vertices; idx++ {
		for b.vertexNeedsSplit(idx) {
			b.splitVertex(idx)
		}
	}
}

// vertexNeedsSplit checks whether two faces touch the vertex with
// different corner weights.
func (b *Builder) vertexNeedsSplit(idx int) bool {
	var first float32
	found := false
	for _, face := range b.faces {
		w, ok := face.cornerWeight(idx)
		if !ok {
			continue
		}
		if found && w != first {
			return true
		}
		first, found = w, true
	}
	return false
}

// splitVertex moves one divergent weight group of faces off the vertex
// onto a fresh duplicate of its position.
func (b *Builder) splitVertex(idx int) {
	var first float32
	var split float32
	state := 0 // 0: no weight seen, 1: first weight seen, 2: split weight picked
	dup := -1
	for i := range b.faces {
		w, ok := b.faces[i].cornerWeight(idx)
		if !ok {
			continue
		}
		switch state {
		case 0:
			first, state = w, 1
		case 1:
			if w != first {
				split, state = w, 2
				dup = b.PushVertex(b.pos[idx])
				b.faces[i].repoint(idx, dup)
			}
		case 2:
			if w == split {
				b.faces[i].repoint(idx, dup)
			}
		}
	}
}

// buildNormals computes one normal per vertex, accumulating each face
// normal weighted by the interior angle at the corner.
func (b *Builder) buildNormals() []math.Vec3 {
	norm := make([]math.Vec3, len(b.pos))
	for _, face := range b.faces {
		p0 := b.pos[face.vtx[0]]
		p1 := b.pos[face.vtx[1]]
		p2 := b.pos[face.vtx[2]]
		trin := p0.Sub(p1).Cross(p0.Sub(p2)).Normalize()

		a0 := p1.Sub(p0).AngleBetween(p2.Sub(p0))
		norm[face.vtx[0]] = norm[face.vtx[0]].Add(trin.Scale(a0))
		a1 := p2.Sub(p1).AngleBetween(p0.Sub(p1))
		norm[face.vtx[1]] = norm[face.vtx[1]].Add(trin.Scale(a1))
		a2 := p0.Sub(p2).AngleBetween(p1.Sub(p2))
		norm[face.vtx[2]] = norm[face.vtx[2]].Add(trin.Scale(a2))
	}
	for i := range norm {
		norm[i] = norm[i].Normalize()
	}
	return norm
}

// buildIndices flattens all faces into 16-bit index triples.
func (b *Builder) buildIndices() []uint16 {
	if len(b.pos) > 1<<16 {
		panic(fmt.Sprintf("mesh: %d vertices exceed 16-bit index range", len(b.pos)))
	}
	indices := make([]uint16, 0, len(b.faces)*3)
	for _, face := range b.faces {
		indices = append(indices,
			uint16(face.vtx[0]), uint16(face.vtx[1]), uint16(face.vtx[2]))
	}
	return indices
}

// Mesh is a finished triangle mesh with per-vertex normals.
type Mesh struct {
	pos     []math.Vec3
	norm    []math.Vec3
	indices []uint16
}

// Positions returns all vertex positions.
func (m *Mesh) Positions() []math.Vec3 {
	return m.pos
}

// Normals returns all vertex normals.
func (m *Mesh) Normals() []math.Vec3 {
	return m.norm
}

// Indices returns the flattened vertex indices of all triangles.
func (m *Mesh) Indices() []uint16 {
	return m.indices
}

// PosMin returns the component-wise minimum position.
func (m *Mesh) PosMin() math.Vec3 {
	if len(m.pos) == 0 {
		return math.Vec3{}
	}
	min := m.pos[0]
	for _, p := range m.pos[1:] {
		min = min.Min(p)
	}
	return min
}

// PosMax returns the component-wise maximum position.
func (m *Mesh) PosMax() math.Vec3 {
	if len(m.pos) == 0 {
		return math.Vec3{}
	}
	max := m.pos[0]
	for _, p := range m.pos[1:] {
		max = max.Max(p)
	}
	return max
}

package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	gomath "math"

	"github.com/Faultbox/husk/pkg/math"
	"github.com/Faultbox/husk/pkg/mesh"
)

// vec3Size is the packed byte size of one position or normal.
const vec3Size = 12

// binBuilder packs the index, position and normal regions of the
// binary chunk, each aligned to a 4-byte boundary.
type binBuilder struct {
	buf bytes.Buffer
}

// align pads the buffer with zero bytes to a 4-byte boundary and
// returns the aligned offset.
func (b *binBuilder) align() int {
	for b.buf.Len()%4 != 0 {
		b.buf.WriteByte(0)
	}
	return b.buf.Len()
}

// pushIndices appends the index region and returns its buffer view.
func (b *binBuilder) pushIndices(indices []uint16) BufferView {
	offset := b.align()
	raw := make([]byte, 2*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(raw[2*i:], idx)
	}
	b.buf.Write(raw)
	return BufferView{
		ByteOffset: offset,
		ByteLength: len(raw),
		Target:     TargetElementArrayBuffer,
	}
}

// pushVec3s appends a position or normal region and returns its
// buffer view.
func (b *binBuilder) pushVec3s(vecs []math.Vec3) BufferView {
	offset := b.align()
	raw := make([]byte, vec3Size*len(vecs))
	for i, v := range vecs {
		binary.LittleEndian.PutUint32(raw[vec3Size*i:], gomath.Float32bits(v.X))
		binary.LittleEndian.PutUint32(raw[vec3Size*i+4:], gomath.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(raw[vec3Size*i+8:], gomath.Float32bits(v.Z))
	}
	b.buf.Write(raw)
	return BufferView{
		ByteOffset: offset,
		ByteLength: len(raw),
		ByteStride: vec3Size,
		Target:     TargetArrayBuffer,
	}
}

// buildDocument lays out the binary chunk for a mesh and describes it
// as a single-mesh document.
func buildDocument(m *mesh.Mesh) (Document, []byte) {
	var bin binBuilder

	idxView := bin.pushIndices(m.Indices())
	posView := bin.pushVec3s(m.Positions())
	normView := bin.pushVec3s(m.Normals())

	min := m.PosMin()
	max := m.PosMax()
	doc := Document{
		Asset:       Asset{Version: "2.0"},
		Buffers:     []Buffer{{ByteLength: bin.buf.Len()}},
		BufferViews: []BufferView{idxView, posView, normView},
		Accessors: []Accessor{
			{
				BufferView:    0,
				ComponentType: ComponentU16,
				Type:          "SCALAR",
				Count:         len(m.Indices()),
			},
			{
				BufferView:    1,
				ComponentType: ComponentF32,
				Type:          "VEC3",
				Count:         len(m.Positions()),
				Min:           []float32{min.X, min.Y, min.Z},
				Max:           []float32{max.X, max.Y, max.Z},
			},
			{
				BufferView:    2,
				ComponentType: ComponentF32,
				Type:          "VEC3",
				Count:         len(m.Normals()),
			},
		},
		Meshes: []Mesh{{
			Primitives: []Primitive{{
				Attributes: map[string]int{"POSITION": 1, "NORMAL": 2},
				Indices:    0,
			}},
		}},
		Nodes:  []Node{{Mesh: 0}},
		Scenes: []Scene{{Nodes: []int{0}}},
	}
	return doc, bin.buf.Bytes()
}

// Export writes the mesh to the writer as a GLB container. The JSON
// chunk is space-padded and the binary chunk zero-padded to 4-byte
// boundaries. Write failures are surfaced to the caller unchanged.
func Export(w io.Writer, m *mesh.Mesh) error {
	doc, bin := buildDocument(m)
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("glb: marshal document: %w", err)
	}
	for len(raw)%4 != 0 {
		raw = append(raw, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	header := make([]byte, 12)
	copy(header, Magic)
	binary.LittleEndian.PutUint32(header[4:], Version)
	binary.LittleEndian.PutUint32(header[8:], uint32(12+8+len(raw)+8+len(bin)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("glb: write header: %w", err)
	}
	if err := writeChunk(w, chunkJSON, raw); err != nil {
		return err
	}
	return writeChunk(w, chunkBIN, bin)
}

// writeChunk writes one chunk header and payload.
func writeChunk(w io.Writer, ctype string, data []byte) error {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header, uint32(len(data)))
	copy(header[4:], ctype)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("glb: write chunk header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("glb: write chunk: %w", err)
	}
	return nil
}

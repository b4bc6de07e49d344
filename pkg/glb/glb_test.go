package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/husk/pkg/math"
	"github.com/Faultbox/husk/pkg/mesh"
)

// buildTetrahedron returns a small closed mesh for export tests.
func buildTetrahedron() *mesh.Mesh {
	b := mesh.NewBuilder()
	v0 := b.PushVertex(math.Vec3{})
	v1 := b.PushVertex(math.Vec3{X: 1})
	v2 := b.PushVertex(math.Vec3{Y: 1})
	v3 := b.PushVertex(math.Vec3{Z: 1})
	b.PushFace(mesh.NewFace([3]int{v0, v2, v1}, 1))
	b.PushFace(mesh.NewFace([3]int{v0, v1, v3}, 1))
	b.PushFace(mesh.NewFace([3]int{v0, v3, v2}, 1))
	b.PushFace(mesh.NewFace([3]int{v1, v2, v3}, 1))
	return b.Build()
}

func TestExportHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, buildTetrahedron()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	raw := buf.Bytes()

	if string(raw[:4]) != "glTF" {
		t.Errorf("magic = %q", raw[:4])
	}
	if v := binary.LittleEndian.Uint32(raw[4:]); v != 2 {
		t.Errorf("version = %d", v)
	}
	if l := binary.LittleEndian.Uint32(raw[8:]); int(l) != len(raw) {
		t.Errorf("declared length %d, actual %d", l, len(raw))
	}

	// JSON chunk header follows immediately and is space-padded.
	jsonLen := binary.LittleEndian.Uint32(raw[12:])
	if jsonLen%4 != 0 {
		t.Errorf("JSON chunk length %d not 4-byte aligned", jsonLen)
	}
	if string(raw[16:20]) != "JSON" {
		t.Errorf("first chunk type = %q", raw[16:20])
	}
	payload := raw[20 : 20+jsonLen]
	if payload[len(payload)-1] != '}' && payload[len(payload)-1] != ' ' {
		t.Errorf("JSON padding byte = %q", payload[len(payload)-1])
	}

	// BIN chunk follows the JSON chunk.
	binOff := 20 + jsonLen
	binLen := binary.LittleEndian.Uint32(raw[binOff:])
	if binLen%4 != 0 {
		t.Errorf("BIN chunk length %d not 4-byte aligned", binLen)
	}
	if string(raw[binOff+4:binOff+8]) != "BIN\x00" {
		t.Errorf("second chunk type = %q", raw[binOff+4:binOff+8])
	}
	if int(binOff)+8+int(binLen) != len(raw) {
		t.Errorf("chunk lengths do not add up to file size")
	}
}

func TestRoundTrip(t *testing.T) {
	m := buildTetrahedron()
	var buf bytes.Buffer
	if err := Export(&buf, m); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	indices, err := f.Indices()
	if err != nil {
		t.Fatalf("Indices: %v", err)
	}
	if len(indices) != len(m.Indices()) {
		t.Fatalf("index count = %d, want %d", len(indices), len(m.Indices()))
	}
	for i, idx := range indices {
		if idx != m.Indices()[i] {
			t.Errorf("index %d = %d, want %d", i, idx, m.Indices()[i])
		}
	}

	pos, err := f.Positions()
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(pos) != len(m.Positions()) {
		t.Fatalf("vertex count = %d, want %d", len(pos), len(m.Positions()))
	}
	for i, p := range pos {
		if p != m.Positions()[i] {
			t.Errorf("position %d = %v, want %v", i, p, m.Positions()[i])
		}
	}

	norm, err := f.Normals()
	if err != nil {
		t.Fatalf("Normals: %v", err)
	}
	if len(norm) != len(m.Normals()) {
		t.Fatalf("normal count = %d, want %d", len(norm), len(m.Normals()))
	}

	// buffer byte length covers the three padded regions
	views := f.Document.BufferViews
	if len(views) != 3 {
		t.Fatalf("expected 3 buffer views, got %d", len(views))
	}
	last := views[2]
	if f.Document.Buffers[0].ByteLength != last.ByteOffset+last.ByteLength {
		t.Errorf("buffer length %d does not end at last view (%d+%d)",
			f.Document.Buffers[0].ByteLength, last.ByteOffset, last.ByteLength)
	}
	for i, view := range views {
		if view.ByteOffset%4 != 0 {
			t.Errorf("view %d offset %d not 4-byte aligned", i, view.ByteOffset)
		}
	}
}

func TestAccessorBounds(t *testing.T) {
	m := buildTetrahedron()
	var buf bytes.Buffer
	if err := Export(&buf, m); err != nil {
		t.Fatalf("Export: %v", err)
	}
	f, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	pos := f.Document.Accessors[1]
	min := m.PosMin()
	if pos.Min[0] != min.X || pos.Min[1] != min.Y || pos.Min[2] != min.Z {
		t.Errorf("position min = %v, want %v", pos.Min, min)
	}
	max := m.PosMax()
	if pos.Max[0] != max.X || pos.Max[1] != max.Y || pos.Max[2] != max.Z {
		t.Errorf("position max = %v, want %v", pos.Max, max)
	}
}

func TestParseErrors(t *testing.T) {
	m := buildTetrahedron()
	var buf bytes.Buffer
	if err := Export(&buf, m); err != nil {
		t.Fatalf("Export: %v", err)
	}
	raw := buf.Bytes()

	bad := append([]byte("FAKE"), raw[4:]...)
	if _, err := Parse(bytes.NewReader(bad)); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("bad magic: err = %v", err)
	}

	bad = append([]byte{}, raw...)
	binary.LittleEndian.PutUint32(bad[4:], 1)
	if _, err := Parse(bytes.NewReader(bad)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("bad version: err = %v", err)
	}

	if _, err := Parse(bytes.NewReader(raw[:30])); !errors.Is(err, ErrTruncated) {
		t.Errorf("truncated: err = %v", err)
	}

	if _, err := Parse(bytes.NewReader(raw[:8])); !errors.Is(err, ErrTruncated) {
		t.Errorf("short header: err = %v", err)
	}
}

// TestDecodeExternal checks the container against an independent glTF
// implementation.
func TestDecodeExternal(t *testing.T) {
	m := buildTetrahedron()
	var buf bytes.Buffer
	if err := Export(&buf, m); err != nil {
		t.Fatalf("Export: %v", err)
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(&buf).Decode(doc); err != nil {
		t.Fatalf("external decode: %v", err)
	}
	if doc.Asset.Version != "2.0" {
		t.Errorf("asset version = %q", doc.Asset.Version)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("expected a single mesh with one primitive")
	}
	prim := doc.Meshes[0].Primitives[0]
	if prim.Indices == nil {
		t.Fatal("primitive has no index accessor")
	}
	if got := int(doc.Accessors[*prim.Indices].Count); got != len(m.Indices()) {
		t.Errorf("index accessor count = %d, want %d", got, len(m.Indices()))
	}
	posAcc, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		t.Fatal("primitive has no POSITION attribute")
	}
	if got := int(doc.Accessors[posAcc].Count); got != len(m.Positions()) {
		t.Errorf("position accessor count = %d, want %d", got, len(m.Positions()))
	}
	if len(doc.Scenes) != 1 || len(doc.Nodes) != 1 {
		t.Errorf("expected one scene and one node")
	}
}

package glb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gomath "math"

	"github.com/Faultbox/husk/pkg/math"
)

// Reader errors.
var (
	ErrInvalidMagic       = errors.New("invalid GLB magic")
	ErrUnsupportedVersion = errors.New("unsupported GLB version")
	ErrTruncated          = errors.New("truncated GLB")
	ErrMissingJSONChunk   = errors.New("missing JSON chunk")
)

// File is a parsed GLB container: the decoded JSON document plus the
// raw binary chunk.
type File struct {
	Document Document
	Bin      []byte
}

// Parse reads a GLB container. The JSON chunk must come first; a
// binary chunk, if present, must follow it.
func Parse(r io.Reader) (*File, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if string(header[:4]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	jsonChunk, ctype, err := readChunk(r)
	if err != nil {
		return nil, err
	}
	if ctype != chunkJSON {
		return nil, fmt.Errorf("%w: first chunk is %q", ErrMissingJSONChunk, ctype)
	}

	f := &File{}
	if err := json.Unmarshal(jsonChunk, &f.Document); err != nil {
		return nil, fmt.Errorf("glb: decode document: %w", err)
	}

	bin, ctype, err := readChunk(r)
	switch {
	case errors.Is(err, io.EOF):
		return f, nil
	case err != nil:
		return nil, err
	case ctype != chunkBIN:
		return nil, fmt.Errorf("glb: unexpected chunk type %q", ctype)
	}
	f.Bin = bin
	return f, nil
}

// readChunk reads one chunk header and payload. Returns io.EOF when
// the stream ends cleanly before a chunk.
func readChunk(r io.Reader) ([]byte, string, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, "", io.EOF
		}
		return nil, "", fmt.Errorf("%w: chunk header: %v", ErrTruncated, err)
	}
	data := make([]byte, binary.LittleEndian.Uint32(header))
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, "", fmt.Errorf("%w: chunk payload: %v", ErrTruncated, err)
	}
	return data, string(header[4:]), nil
}

// view returns the binary region of the accessor's buffer view.
func (f *File) view(accessor int) (Accessor, []byte, error) {
	if accessor < 0 || accessor >= len(f.Document.Accessors) {
		return Accessor{}, nil, fmt.Errorf("glb: accessor %d out of range", accessor)
	}
	acc := f.Document.Accessors[accessor]
	if acc.BufferView < 0 || acc.BufferView >= len(f.Document.BufferViews) {
		return Accessor{}, nil, fmt.Errorf("glb: buffer view %d out of range", acc.BufferView)
	}
	view := f.Document.BufferViews[acc.BufferView]
	if view.ByteOffset+view.ByteLength > len(f.Bin) {
		return Accessor{}, nil, fmt.Errorf("%w: buffer view %d beyond binary chunk",
			ErrTruncated, acc.BufferView)
	}
	return acc, f.Bin[view.ByteOffset : view.ByteOffset+view.ByteLength], nil
}

// primitive returns the single primitive of the single mesh.
func (f *File) primitive() (Primitive, error) {
	if len(f.Document.Meshes) != 1 || len(f.Document.Meshes[0].Primitives) != 1 {
		return Primitive{}, errors.New("glb: expected a single mesh with one primitive")
	}
	return f.Document.Meshes[0].Primitives[0], nil
}

// Indices decodes the index buffer of the mesh primitive.
func (f *File) Indices() ([]uint16, error) {
	prim, err := f.primitive()
	if err != nil {
		return nil, err
	}
	acc, raw, err := f.view(prim.Indices)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != ComponentU16 || acc.Type != "SCALAR" {
		return nil, fmt.Errorf("glb: index accessor has type %s/%d", acc.Type, acc.ComponentType)
	}
	if len(raw) < 2*acc.Count {
		return nil, fmt.Errorf("%w: index buffer", ErrTruncated)
	}
	indices := make([]uint16, acc.Count)
	for i := range indices {
		indices[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return indices, nil
}

// Positions decodes the POSITION attribute of the mesh primitive.
func (f *File) Positions() ([]math.Vec3, error) {
	return f.attribute("POSITION")
}

// Normals decodes the NORMAL attribute of the mesh primitive.
func (f *File) Normals() ([]math.Vec3, error) {
	return f.attribute("NORMAL")
}

func (f *File) attribute(name string) ([]math.Vec3, error) {
	prim, err := f.primitive()
	if err != nil {
		return nil, err
	}
	accessor, ok := prim.Attributes[name]
	if !ok {
		return nil, fmt.Errorf("glb: primitive has no %s attribute", name)
	}
	acc, raw, err := f.view(accessor)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != ComponentF32 || acc.Type != "VEC3" {
		return nil, fmt.Errorf("glb: %s accessor has type %s/%d", name, acc.Type, acc.ComponentType)
	}
	if len(raw) < vec3Size*acc.Count {
		return nil, fmt.Errorf("%w: %s buffer", ErrTruncated, name)
	}
	vecs := make([]math.Vec3, acc.Count)
	for i := range vecs {
		vecs[i] = math.Vec3{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(raw[vec3Size*i:])),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(raw[vec3Size*i+4:])),
			Z: gomath.Float32frombits(binary.LittleEndian.Uint32(raw[vec3Size*i+8:])),
		}
	}
	return vecs, nil
}

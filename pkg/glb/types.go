// Package glb reads and writes binary glTF (GLB) containers holding a
// single mesh with 16-bit indices, positions and normals.
package glb

// GLB container constants.
const (
	// Magic is the four-byte signature at the start of a container.
	Magic = "glTF"

	// Version is the container version written and accepted.
	Version = 2

	chunkJSON = "JSON"
	chunkBIN  = "BIN\x00"
)

// Accessor component types.
const (
	ComponentU16 = 5123
	ComponentF32 = 5126
)

// Buffer view targets.
const (
	TargetArrayBuffer        = 34962
	TargetElementArrayBuffer = 34963
)

// Document is the JSON chunk of a GLB container.
type Document struct {
	Asset       Asset        `json:"asset"`
	Buffers     []Buffer     `json:"buffers"`
	BufferViews []BufferView `json:"bufferViews"`
	Accessors   []Accessor   `json:"accessors"`
	Meshes      []Mesh       `json:"meshes"`
	Nodes       []Node       `json:"nodes"`
	Scenes      []Scene      `json:"scenes"`
}

// Asset identifies the glTF version of the document.
type Asset struct {
	Version string `json:"version"`
}

// Buffer declares the byte length of the binary chunk.
type Buffer struct {
	ByteLength int `json:"byteLength"`
}

// BufferView is a region of the binary chunk.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"`
	Target     int `json:"target"`
}

// Accessor describes typed elements within a buffer view.
type Accessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Type          string    `json:"type"`
	Count         int       `json:"count"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

// Mesh is a collection of primitives.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
}

// Primitive references the accessors of one triangle set.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
}

// Node references a mesh.
type Node struct {
	Mesh int `json:"mesh"`
}

// Scene references its root nodes.
type Scene struct {
	Nodes []int `json:"nodes"`
}

// Package gltf decodes the glTF 2.0 models embedded in tile payloads.
//
// Only the parts of the scene graph needed to recover vertex positions and
// batch ids are modelled: scenes, nodes, meshes, accessors, buffer views and
// buffers, plus the CESIUM_RTC extension.
package gltf

// Document is the JSON part of a glTF asset.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Extensions  *Extensions  `json:"extensions,omitempty"`
}

// Asset carries the glTF version.
type Asset struct {
	Version string `json:"version"`
}

// Scene lists root nodes.
type Scene struct {
	Nodes []int `json:"nodes"`
}

// Node is one scene graph node. Matrix takes precedence over TRS.
type Node struct {
	Matrix      []float64 `json:"matrix,omitempty"`
	Translation []float64 `json:"translation,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
	Children    []int     `json:"children,omitempty"`
	Mesh        *int      `json:"mesh,omitempty"`
}

// Mesh is a list of primitives.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
}

// Primitive maps attribute semantics such as POSITION to accessor indices.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
}

// Accessor is a typed view into a buffer view.
type Accessor struct {
	BufferView    *int   `json:"bufferView,omitempty"`
	ByteOffset    int    `json:"byteOffset,omitempty"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"`
}

// Buffer is either the GLB binary chunk (no URI) or an external resource.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

// Extensions holds the document-level extensions the indexer understands.
type Extensions struct {
	CesiumRTC *CesiumRTC `json:"CESIUM_RTC,omitempty"`
}

// CesiumRTC is a relative-to-centre offset for the whole model.
type CesiumRTC struct {
	Center []float64 `json:"center"`
}

package models

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/termshade/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into Mesh format.
//
// glTF shares one index across all vertex attributes, so every corner of
// the resulting mesh uses the same value for its vertex, texcoord and normal
// index.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file has none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
	}
}

// LoadGLB loads a glTF or binary glTF (.glb) file and the first texture it
// references. The texture is nil when the file has none.
func LoadGLB(path string) (*Mesh, *Image, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns a Mesh plus its first texture.
func (l *GLTFLoader) Load(path string) (*Mesh, *Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open gltf %s: %w", ErrIO, path, err)
	}

	mesh := NewMesh(filepath.Base(path))
	hasNormals := true

	for _, m := range doc.Meshes {
		complete, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: process mesh %q: %w", ErrParse, m.Name, err)
		}
		hasNormals = hasNormals && complete
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	if err := mesh.Validate(); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}

	return mesh, firstTexture(doc, path), nil
}

// processMesh appends the triangles of a glTF mesh. It reports whether every
// primitive carried its own normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	hasNormals := true

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		}
		if len(normals) < len(positions) {
			hasNormals = false
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return false, fmt.Errorf("read uvs: %w", err)
			}
		}

		// Base index for this primitive; all three sequences grow together
		base := len(mesh.Vertices)

		for i := range positions {
			mesh.Vertices = append(mesh.Vertices, positions[i])

			var normal math3d.Vec3
			if i < len(normals) {
				normal = normals[i]
			}
			mesh.Normals = append(mesh.Normals, normal)

			var uv math3d.Vec2
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image, Image rows start at the bottom
				uv = math3d.V2(uvs[i].X, 1.0-uvs[i].Y)
			}
			mesh.TexCoords = append(mesh.TexCoords, uv)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var f Face
			for j := range 3 {
				idx := base + indices[i+j]
				f[j] = Corner{Vertex: idx, TexCoord: idx, Normal: idx}
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return hasNormals, nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}

	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}

	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}

	return result, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case []uint8:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []uint32:
		return widen(v), nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

func widen[T uint8 | uint16 | uint32](in []T) []int {
	out := make([]int, len(in))
	for i, x := range in {
		out[i] = int(x)
	}
	return out
}

// readAccessorData reads raw data from a glTF accessor.
func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	// gltf.Open resolves external buffer URIs, so Data is set either way
	bufData := buffer.Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count

	switch accessor.Type {
	case gltf.AccessorVec3:
		if stride == 0 {
			stride = 12 // 3 floats * 4 bytes
		}
		if start+(count-1)*stride+12 > len(bufData) {
			return nil, fmt.Errorf("accessor overruns buffer")
		}
		result := make([][3]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 3 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorVec2:
		if stride == 0 {
			stride = 8 // 2 floats * 4 bytes
		}
		if start+(count-1)*stride+8 > len(bufData) {
			return nil, fmt.Errorf("accessor overruns buffer")
		}
		result := make([][2]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 2 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorScalar:
		size := 0
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			size = 1
		case gltf.ComponentUshort:
			size = 2
		case gltf.ComponentUint:
			size = 4
		}
		if size == 0 {
			break
		}
		if stride == 0 {
			stride = size
		}
		if start+(count-1)*stride+size > len(bufData) {
			return nil, fmt.Errorf("accessor overruns buffer")
		}

		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result := make([]uint8, count)
			for i := range count {
				result[i] = bufData[start+i*stride]
			}
			return result, nil
		case gltf.ComponentUshort:
			result := make([]uint16, count)
			for i := range count {
				offset := start + i*stride
				result[i] = uint16(bufData[offset]) | uint16(bufData[offset+1])<<8
			}
			return result, nil
		case gltf.ComponentUint:
			result := make([]uint32, count)
			for i := range count {
				offset := start + i*stride
				result[i] = uint32(bufData[offset]) |
					uint32(bufData[offset+1])<<8 |
					uint32(bufData[offset+2])<<16 |
					uint32(bufData[offset+3])<<24
			}
			return result, nil
		}
	}

	return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

// firstTexture decodes the first PNG or JPEG image the document embeds or
// references. The decoder comes from the image's MIME type, or from its
// signature when the type is missing. Images that fail to decode are skipped.
func firstTexture(doc *gltf.Document, path string) *Image {
	for _, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
				continue
			}
			data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
		case img.URI != "":
			raw, err := os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
			if err != nil {
				continue
			}
			data = raw
		}
		if len(data) == 0 {
			continue
		}

		format := sniffFormat(img.MimeType, data)
		if format == "" {
			continue
		}
		decoded, err := decodeRaster(bytes.NewReader(data), format)
		if err != nil {
			continue
		}
		return decoded
	}
	return nil
}

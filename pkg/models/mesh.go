// Package models provides mesh and image assets for termshade, together with
// the decoders that load them.
package models

import (
	"fmt"

	"github.com/taigrr/termshade/pkg/math3d"
)

// Mesh is a triangulated model made of four parallel sequences. Faces index
// into the other three. A mesh is immutable once loaded; the renderer only
// reads from it.
type Mesh struct {
	Name      string
	Vertices  []math3d.Vec3
	TexCoords []math3d.Vec2
	Normals   []math3d.Vec3
	Faces     []Face
}

// Corner holds the 0-based indices for one corner of a face.
type Corner struct {
	Vertex   int // Index into Mesh.Vertices
	TexCoord int // Index into Mesh.TexCoords
	Normal   int // Index into Mesh.Normals
}

// Face is a triangle: three corners.
type Face [3]Corner

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertex positions.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Bounds computes the axis-aligned bounding box of the vertex positions.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}

	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// Validate checks that every face index is in range.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for j, c := range f {
			switch {
			case c.Vertex < 0 || c.Vertex >= len(m.Vertices):
				return fmt.Errorf("%w: face %d corner %d: vertex index %d out of range", ErrParse, i, j, c.Vertex)
			case c.TexCoord < 0 || c.TexCoord >= len(m.TexCoords):
				return fmt.Errorf("%w: face %d corner %d: texcoord index %d out of range", ErrParse, i, j, c.TexCoord)
			case c.Normal < 0 || c.Normal >= len(m.Normals):
				return fmt.Errorf("%w: face %d corner %d: normal index %d out of range", ErrParse, i, j, c.Normal)
			}
		}
	}
	return nil
}

// CalculateSmoothNormals replaces the normals with per-vertex averages of the
// adjacent face normals and points every corner's normal index at its vertex.
func (m *Mesh) CalculateSmoothNormals() {
	normals := make([]math3d.Vec3, len(m.Vertices))

	// Accumulate unnormalized face normals so larger faces weigh more
	for _, f := range m.Faces {
		v0 := m.Vertices[f[0].Vertex]
		v1 := m.Vertices[f[1].Vertex]
		v2 := m.Vertices[f[2].Vertex]
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		for _, c := range f {
			normals[c.Vertex] = normals[c.Vertex].Add(normal)
		}
	}

	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = math3d.V3(0, 0, 1)
		}
	}

	m.Normals = normals
	for i := range m.Faces {
		for j := range m.Faces[i] {
			m.Faces[i][j].Normal = m.Faces[i][j].Vertex
		}
	}
}

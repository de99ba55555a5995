package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/termshade/pkg/math3d"
)

func quadMesh() *Mesh {
	m := NewMesh("quad")
	m.Vertices = []math3d.Vec3{
		math3d.V3(-1, -1, 0),
		math3d.V3(1, -1, 0),
		math3d.V3(1, 1, 0),
		math3d.V3(-1, 1, 2),
	}
	m.TexCoords = []math3d.Vec2{math3d.V2(0, 0)}
	m.Normals = []math3d.Vec3{math3d.V3(0, 1, 0)}
	m.Faces = []Face{
		{{Vertex: 0}, {Vertex: 1}, {Vertex: 2}},
		{{Vertex: 0}, {Vertex: 2}, {Vertex: 3}},
	}
	return m
}

func TestMeshBounds(t *testing.T) {
	lo, hi := quadMesh().Bounds()
	assert.Equal(t, math3d.V3(-1, -1, 0), lo)
	assert.Equal(t, math3d.V3(1, 1, 2), hi)

	lo, hi = NewMesh("empty").Bounds()
	assert.Equal(t, math3d.Vec3{}, lo)
	assert.Equal(t, math3d.Vec3{}, hi)
}

func TestMeshValidate(t *testing.T) {
	m := quadMesh()
	require.NoError(t, m.Validate())

	m.Faces[1][2].Normal = 1
	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "face 1 corner 2")
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := NewMesh("flat")
	m.Vertices = []math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(1, 0, 0),
		math3d.V3(0, 1, 0),
		math3d.V3(5, 5, 5), // unused
	}
	m.TexCoords = []math3d.Vec2{{}}
	m.Faces = []Face{{{Vertex: 0}, {Vertex: 1}, {Vertex: 2}}}

	m.CalculateSmoothNormals()
	require.Len(t, m.Normals, 4)
	for i := range 3 {
		assert.InDelta(t, 1.0, m.Normals[i].Z, 1e-12)
	}
	// Vertices with no faces fall back to +Z
	assert.Equal(t, math3d.V3(0, 0, 1), m.Normals[3])

	for j, c := range m.Faces[0] {
		assert.Equal(t, c.Vertex, c.Normal, "corner %d", j)
	}
	assert.NoError(t, m.Validate())
}

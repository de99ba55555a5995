package scene

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/models"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, models.ColorBlue, s.BackgroundColor())
	assert.Equal(t, math3d.V3(0.5, 0.3, 1), s.Camera.Eye.V3())
}

func TestParseKeepsDefaults(t *testing.T) {
	s, err := Parse([]byte(`
mesh = "cube.glb"
light = [1.0, 2.0, 3.0]
fps = 60

[camera]
eye = [0.0, 0.0, 2.0]
`))
	require.NoError(t, err)

	assert.Equal(t, "cube.glb", s.Mesh)
	assert.Equal(t, Vec{1, 2, 3}, s.Light)
	assert.Equal(t, 60, s.FPS)
	assert.Equal(t, Vec{0, 0, 2}, s.Camera.Eye)

	// Untouched fields come from Default
	def := Default()
	assert.Equal(t, def.Camera.Up, s.Camera.Up)
	assert.Equal(t, def.Background, s.Background)
	assert.True(t, s.Animate)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "mesh = "},
		{"wrong type", `fps = "fast"`},
		{"channel overflow", "background = [0, 0, 256]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrParse)
		})
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	abs := filepath.Join(dir, "abs", "nm.tga")
	src := `
mesh = "assets/head.obj"
texture = "assets/head.tga"
normal_map = "` + filepath.ToSlash(abs) + `"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "assets", "head.obj"), s.Mesh)
	assert.Equal(t, filepath.Join(dir, "assets", "head.tga"), s.Texture)
	assert.Equal(t, filepath.ToSlash(abs), s.NormalMap)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, models.ErrIO)
}

func TestResolve(t *testing.T) {
	s := Default()
	s.Resolve(Flags{})
	assert.Equal(t, Default(), s, "zero flags change nothing")

	s.Resolve(Flags{Mesh: "ship.glb", FPS: 12, Spin: 0.5, Static: true})
	assert.Equal(t, "ship.glb", s.Mesh)
	assert.Empty(t, s.Texture)
	assert.Empty(t, s.NormalMap)
	assert.Equal(t, 12, s.FPS)
	assert.Equal(t, 0.5, s.Spin)
	assert.False(t, s.Animate)

	s.Resolve(Flags{Texture: "t.png", NormalMap: "n.png"})
	assert.Equal(t, "t.png", s.Texture)
	assert.Equal(t, "n.png", s.NormalMap)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scene)
	}{
		{"no mesh", func(s *Scene) { s.Mesh = "" }},
		{"obj without texture", func(s *Scene) { s.Texture = "" }},
		{"zero light", func(s *Scene) { s.Light = Vec{} }},
		{"light along up", func(s *Scene) { s.Light = Vec{0, 3, 0} }},
		{"eye on center", func(s *Scene) { s.Camera.Eye = s.Camera.Center }},
		{"up along view", func(s *Scene) { s.Camera.Up = s.Camera.Eye }},
		{"negative fps", func(s *Scene) { s.FPS = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(&s)
			assert.ErrorIs(t, s.Validate(), models.ErrParse)
		})
	}

	t.Run("glb without texture", func(t *testing.T) {
		s := Default()
		s.Mesh = "model.glb"
		s.Texture = ""
		assert.NoError(t, s.Validate())
	})
}

const triangleOBJ = `v -1 -1 0
v 1 -1 0
v 0 1 0
vt 0 0
vt 1 0
vt 0.5 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	meshPath := filepath.Join(dir, "tri.obj")
	require.NoError(t, os.WriteFile(meshPath, []byte(triangleOBJ), 0o644))

	// 1x1 raw truecolor TGA holding a single red pixel
	tga := make([]byte, 18)
	tga[2] = 2
	tga[12], tga[14], tga[16] = 1, 1, 24
	tga = append(tga, 0, 0, 255)
	texPath := filepath.Join(dir, "tex.tga")
	require.NoError(t, os.WriteFile(texPath, tga, 0o644))

	s := Default()
	s.Mesh = meshPath
	s.Texture = texPath
	s.NormalMap = ""

	a, err := s.LoadAssets()
	require.NoError(t, err)
	assert.Equal(t, 1, a.Mesh.TriangleCount())
	assert.Equal(t, models.ColorRed, a.Texture.At(0, 0))
	assert.Equal(t, models.ColorBlue, a.NormalMap.At(0, 0), "flat normal map")

	nm := image.NewRGBA(image.Rect(0, 0, 2, 1))
	nm.Set(1, 0, models.ColorGreen)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, nm))
	s.NormalMap = filepath.Join(dir, "nm.png")
	require.NoError(t, os.WriteFile(s.NormalMap, buf.Bytes(), 0o644))

	a, err = s.LoadAssets()
	require.NoError(t, err)
	assert.Equal(t, 2, a.NormalMap.Width)
	assert.Equal(t, models.ColorGreen, a.NormalMap.At(1, 0))

	s.NormalMap = filepath.Join(dir, "missing.tga")
	_, err = s.LoadAssets()
	assert.ErrorIs(t, err, models.ErrIO)

	s.Mesh = filepath.Join(dir, "tri.stl")
	_, err = s.LoadAssets()
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

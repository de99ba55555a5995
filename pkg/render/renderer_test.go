package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/models"
)

func TestEndToEndWhiteTriangle(t *testing.T) {
	r, out := createTestRenderer(t, 40, 20) // 40x40 plane
	require.NoError(t, r.Refresh(models.ColorBlue))

	// Camera looks down -Z at the origin, light along +Z
	r.Camera(math3d.V3(0, 0, 1), math3d.Zero3(), math3d.Up())
	r.Light(math3d.V3(0, 0, 1))

	white := models.NewSolidImage(4, 4, models.ColorWhite)
	r.DrawModel(triangleMesh(), white, models.NewFlatNormalMap(), math3d.Zero3())
	require.NoError(t, r.Display())

	// The centroid (0, -1/3) projects to (0, -0.25), pixel (20, 25)
	tri := r.tris[0]
	w := math3d.ToBarycentric(tri.screen[0].XY(), tri.screen[1].XY(), tri.screen[2].XY(), r.viewport.ToNDC(20, 25))
	require.True(t, math3d.Inside(w))

	n, ok := perturbedNormal(&tri, w, models.ColorBlue)
	require.True(t, ok)
	light := math3d.NormalPerspective(3).Mul(math3d.LookAt(math3d.V3(0, 0, 1), math3d.Zero3(), math3d.Up())).
		MulVec(math3d.V3(0, 0, 1).HomoVector()).VectorProj()
	assert.InDelta(t, 1.0, n.Dot(light), 1e-9, "diffuse term at its maximum")

	assert.Equal(t, models.ColorWhite, r.Compositor().At(20, 25))
	assert.Equal(t, models.ColorBlue, r.Compositor().At(0, 0), "background outside the triangle")

	stats := r.Stats()
	assert.Equal(t, 1, stats.Triangles)
	assert.Positive(t, stats.Fragments)
	assert.Zero(t, stats.Degenerate)

	// Row 25 is odd, so the white pixel is a foreground color
	assert.Contains(t, out.String(), "\x1b[38;2;255;255;255m")
	assert.True(t, strings.HasPrefix(out.String(), "\x1b[H\x1b[48;2;000;000;255m"))
}

func TestDepthMonotonicity(t *testing.T) {
	red := models.NewSolidImage(1, 1, models.ColorRed)
	green := models.NewSolidImage(1, 1, models.ColorGreen)
	flat := models.NewFlatNormalMap()
	mesh := triangleMesh()

	far := math3d.Zero3()
	near := math3d.V3(0, 0, 0.5)

	tests := []struct {
		name  string
		order func(r *Renderer)
	}{
		{"far first", func(r *Renderer) {
			r.DrawModel(mesh, red, flat, far)
			r.DrawModel(mesh, green, flat, near)
		}},
		{"near first", func(r *Renderer) {
			r.DrawModel(mesh, green, flat, near)
			r.DrawModel(mesh, red, flat, far)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := createTestRenderer(t, 20, 10)
			tc.order(r)
			r.Render()

			assert.Equal(t, models.ColorGreen, r.Compositor().At(10, 12))
			assert.Greater(t, r.ZBuffer().At(10, 12), -0.75, "nearer depth is larger")
		})
	}
}

func TestRefreshResize(t *testing.T) {
	cols, rows := 10, 5
	var out bytes.Buffer
	comp, err := NewCompositor(&out, func() (int, int, error) { return cols, rows, nil })
	require.NoError(t, err)

	r := New(comp)
	require.NoError(t, r.Refresh(models.ColorBlack))
	r.DrawModel(triangleMesh(), models.NewSolidImage(1, 1, models.ColorWhite), models.NewFlatNormalMap(), math3d.Zero3())
	r.Render()
	require.Positive(t, r.Stats().Fragments)

	cols, rows = 16, 7
	require.NoError(t, r.Refresh(models.ColorBlack))

	for name, buf := range map[string]*DepthBuffer{"zbuffer": r.ZBuffer(), "shadow": r.ShadowBuffer()} {
		assert.Equal(t, 16, buf.Width, name)
		assert.Equal(t, 14, buf.Height, name)
		require.Len(t, buf.Values, 16*14, name)
		for i, v := range buf.Values {
			if !math.IsInf(v, -1) {
				t.Fatalf("%s[%d] = %v after resize, want -Inf", name, i, v)
			}
		}
	}

	w, h := comp.PlaneSize()
	assert.Equal(t, 16, w)
	assert.Equal(t, 14, h)
	assert.Equal(t, Viewport{Width: 16, Height: 14}, r.Viewport())
	assert.Len(t, comp.Bytes(), len("\x1b[H")+16*7*cellLen)
}

func TestRefreshClearsBuffersWithoutResize(t *testing.T) {
	r, _ := createTestRenderer(t, 20, 10)
	r.DrawModel(triangleMesh(), models.NewSolidImage(1, 1, models.ColorWhite), models.NewFlatNormalMap(), math3d.Zero3())
	r.Render()
	zbuf := r.ZBuffer()

	require.NoError(t, r.Refresh(models.ColorRed))
	assert.Same(t, zbuf, r.ZBuffer(), "buffers are reused when the size is unchanged")
	assert.True(t, math.IsInf(r.ZBuffer().At(10, 12), -1))
	assert.True(t, math.IsInf(r.ShadowBuffer().At(10, 12), -1))
	assert.Equal(t, models.ColorRed, r.Compositor().At(10, 12))
	assert.Zero(t, r.Stats())

	// The queue was emptied, so rendering draws nothing
	r.Render()
	assert.Zero(t, r.Stats().Triangles)
}

func TestRenderRunsOncePerQueue(t *testing.T) {
	r, _ := createTestRenderer(t, 20, 10)
	r.DrawModel(triangleMesh(), models.NewSolidImage(1, 1, models.ColorWhite), models.NewFlatNormalMap(), math3d.Zero3())
	r.Render()
	first := r.Stats()

	require.NoError(t, r.Display())
	assert.Equal(t, first, r.Stats())
}

func TestDrawInstanceTransform(t *testing.T) {
	r, _ := createTestRenderer(t, 20, 10)

	// Half a turn about Y shows the back of the triangle, still covering
	// the center; normals turn with it.
	r.DrawInstance(Instance{
		Mesh:      triangleMesh(),
		Texture:   models.NewSolidImage(1, 1, models.ColorWhite),
		NormalMap: models.NewFlatNormalMap(),
		Transform: math3d.RotateY(math.Pi),
	})
	r.Render()

	assert.InDelta(t, -1.0, r.tris[0].normals[0].Z, 1e-9)
	assert.False(t, math.IsInf(r.ZBuffer().At(10, 12), -1))
}

func TestNewWithOptions(t *testing.T) {
	var out bytes.Buffer
	comp, err := NewCompositor(&out, FixedSize(4, 2))
	require.NoError(t, err)

	r := New(comp,
		WithCamera(math3d.V3(0.5, 0.3, 1), math3d.Zero3(), math3d.Up()),
		WithLight(math3d.V3(2, 5, 1)),
	)
	assert.InDelta(t, 1.0, r.light.Direction.Len(), 1e-12)
	assert.Equal(t, math3d.V3(0.5, 0.3, 1), r.camera.Eye)
	assert.Equal(t, Viewport{Width: 4, Height: 4}, r.Viewport())
}

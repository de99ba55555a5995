package render

import (
	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/models"
)

// Viewport maps between normalized device coordinates and plane pixels.
// NDC x grows to the right and y grows upwards; pixel rows grow downwards.
type Viewport struct {
	Width, Height int
}

// ToPixel maps an NDC point to the pixel that contains it. Coordinates are
// truncated towards zero, not floored.
func (v Viewport) ToPixel(p math3d.Vec2) (x, y int) {
	return int(float64(v.Width) * (p.X + 1) / 2), int(float64(v.Height) * (1 - p.Y) / 2)
}

// ToNDC maps the top-left corner of pixel (x, y) to NDC.
func (v Viewport) ToNDC(x, y int) math3d.Vec2 {
	return math3d.V2(
		float64(x)/float64(v.Width)*2-1,
		1-float64(y)/float64(v.Height)*2,
	)
}

// Contains reports whether (x, y) is a pixel of the plane.
func (v Viewport) Contains(x, y int) bool {
	return x >= 0 && x < v.Width && y >= 0 && y < v.Height
}

// BoundingBox is an inclusive pixel rectangle.
type BoundingBox struct {
	MinX, MinY int
	MaxX, MaxY int
}

// BoundingBox returns the pixel footprint of a projected triangle, clamped
// to the plane. The box is empty (Min > Max) when the triangle is entirely
// off one side.
func (v Viewport) BoundingBox(p1, p2, p3 math3d.Vec3) BoundingBox {
	// NDC y points up, so the top-left corner comes from the largest y
	minX, minY := v.ToPixel(math3d.V2(min(p1.X, p2.X, p3.X), max(p1.Y, p2.Y, p3.Y)))
	maxX, maxY := v.ToPixel(math3d.V2(max(p1.X, p2.X, p3.X), min(p1.Y, p2.Y, p3.Y)))

	return BoundingBox{
		MinX: max(minX, 0),
		MinY: max(minY, 0),
		MaxX: min(maxX, v.Width-1),
		MaxY: min(maxY, v.Height-1),
	}
}

// triangle is one face of a queued instance after the per-frame transforms.
// Mesh attributes are copied by value; images are shared read-only.
type triangle struct {
	screen  [3]math3d.Vec3 // Camera view, projected
	shadow  [3]math3d.Vec3 // Light view, projected
	normals [3]math3d.Vec3 // Camera view, normal projection
	uv      [3]math3d.Vec2

	texture   *models.Image
	normalMap *models.Image
}

// fragment is what the color pass leaves for the ambient occlusion resolve.
type fragment struct {
	texel Color
	light float64 // Intensity without the ambient term
	set   bool
}

// fillShadow rasterizes a triangle into the shadow buffer. Only coverage
// and depth are computed.
func (r *Renderer) fillShadow(t *triangle) {
	s1, s2, s3 := t.shadow[0], t.shadow[1], t.shadow[2]
	a, b, c := s1.XY(), s2.XY(), s3.XY()
	bbox := r.viewport.BoundingBox(s1, s2, s3)

	for i := bbox.MinX; i <= bbox.MaxX; i++ {
		for j := bbox.MinY; j <= bbox.MaxY; j++ {
			w := math3d.ToBarycentric(a, b, c, r.viewport.ToNDC(i, j))
			if !math3d.Inside(w) {
				continue
			}

			depth := s1.Z*w.X + s2.Z*w.Y + s3.Z*w.Z
			if r.shadowBuf.TestAndSet(i, j, depth) {
				r.stats.ShadowFragments++
			}
		}
	}
}

// fillColor rasterizes a triangle into the z-buffer and, for every pixel
// that passes the depth test, records its texel and non-ambient intensity.
// light is the light direction after the normal projection.
func (r *Renderer) fillColor(t *triangle, light math3d.Vec3) {
	p1, p2, p3 := t.screen[0], t.screen[1], t.screen[2]
	a, b, c := p1.XY(), p2.XY(), p3.XY()
	bbox := r.viewport.BoundingBox(p1, p2, p3)

	for i := bbox.MinX; i <= bbox.MaxX; i++ {
		for j := bbox.MinY; j <= bbox.MaxY; j++ {
			w := math3d.ToBarycentric(a, b, c, r.viewport.ToNDC(i, j))
			if !math3d.Inside(w) {
				continue
			}

			// The depth is written before shading, even if shading bails
			depth := p1.Z*w.X + p2.Z*w.Y + p3.Z*w.Z
			if !r.zbuf.TestAndSet(i, j, depth) {
				continue
			}

			uv := math3d.ToEuclidean(t.uv[0], t.uv[1], t.uv[2], w)
			normal, ok := perturbedNormal(t, w, Sample(t.normalMap, uv))
			if !ok {
				r.stats.Degenerate++
				continue
			}

			shadow := r.shadowFactor(math3d.Blend(t.shadow[0], t.shadow[1], t.shadow[2], w))

			r.frags[j*r.viewport.Width+i] = fragment{
				texel: Sample(t.texture, uv),
				light: directIntensity(light, normal, shadow),
				set:   true,
			}
			r.stats.Fragments++
		}
	}
}

// resolve adds ambient occlusion from the finished z-buffer and writes the
// final colors to the compositor. Pixels without a fragment keep the
// background.
func (r *Renderer) resolve() {
	for j := 0; j < r.viewport.Height; j++ {
		for i := 0; i < r.viewport.Width; i++ {
			f := r.frags[j*r.viewport.Width+i]
			if !f.set {
				continue
			}
			ao := r.AmbientOcclusion(i, j)
			r.comp.Set(i, j, f.texel.Scale(f.light+ambientWeight*ao))
		}
	}
}

package render

import (
	"math"

	"github.com/taigrr/termshade/pkg/math3d"
)

// Lighting weights and exponents.
const (
	specularWeight = 0.7
	diffuseWeight  = 1.0
	ambientWeight  = 0.4
	shadowWeight   = 0.2

	specularPower = 35
	ambientPower  = 40

	// shadowBias is how far behind the shadow map a fragment must be to
	// count as shadowed. It hides self-shadowing acne.
	shadowBias = 0.2
)

// viewAxis is the fixed direction to the viewer after projection.
var viewAxis = math3d.V3(0, 0, 1)

// perturbedNormal applies the normal map texel nm at barycentric weights w.
//
// The Darboux frame has the triangle edges and the interpolated normal as
// rows; its inverse carries the UV deltas into a tangent and a bitangent.
// The three basis vectors are weighted by the cubed map channels. ok is
// false when the frame is singular or the weights collapse to zero.
func perturbedNormal(t *triangle, w math3d.Vec3, nm Color) (normal math3d.Vec3, ok bool) {
	n := math3d.Blend(t.normals[0], t.normals[1], t.normals[2], w)
	if n.Len() == 0 {
		return math3d.Vec3{}, false
	}
	n = n.Normalize()

	p1, p2, p3 := t.screen[0], t.screen[1], t.screen[2]
	darboux := math3d.M3(p2.Sub(p1), p3.Sub(p1), n)
	inv, ok := darboux.Inverse()
	if !ok {
		return math3d.Vec3{}, false
	}

	t1, t2, t3 := t.uv[0], t.uv[1], t.uv[2]
	tangent := inv.MulVec(math3d.V3(t2.X-t1.X, t3.X-t1.X, 0))
	bitangent := inv.MulVec(math3d.V3(t2.Y-t1.Y, t3.Y-t1.Y, 0))

	sum := unit(tangent).Scale(channelWeight(nm.R)).
		Add(unit(bitangent).Scale(channelWeight(nm.G))).
		Add(n.Scale(channelWeight(nm.B)))
	if sum.Len() == 0 {
		return math3d.Vec3{}, false
	}
	return sum.Normalize(), true
}

// unit normalizes v, leaving a zero vector as is. A triangle whose UVs do
// not vary along one axis has no tangent on that axis.
func unit(v math3d.Vec3) math3d.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

// shadowFactor returns -1 when the light-space point s lies more than
// shadowBias behind the shadow map, and 0 otherwise. Points that project
// outside the plane are lit.
func (r *Renderer) shadowFactor(s math3d.Vec3) float64 {
	x, y := r.viewport.ToPixel(s.XY())
	if !r.viewport.Contains(x, y) {
		return 0
	}
	if r.shadowBuf.At(x, y) > s.Z+shadowBias {
		return -1
	}
	return 0
}

// AmbientOcclusion estimates how open the surface at pixel (x, y) is from
// the z-buffer. It walks the eight compass directions until the ray leaves
// the plane or reaches a pixel nothing was drawn to, keeping the steepest
// elevation to the horizon in each. An unobstructed pixel gives 1 and a
// pixel at the bottom of a deep pit tends to 0.
func (r *Renderer) AmbientOcclusion(x, y int) float64 {
	z := r.zbuf.At(x, y)
	total := 0.0

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			total += math.Pi/2 - r.horizonAngle(x, y, z, dx, dy)
		}
	}

	return math.Pow(total/(4*math.Pi), ambientPower)
}

// horizonAngle returns the largest elevation seen from (x, y) at depth z
// walking in direction (dx, dy). It never goes below zero.
func (r *Renderer) horizonAngle(x, y int, z float64, dx, dy int) float64 {
	maxAngle := 0.0
	for nx, ny := x+dx, y+dy; r.viewport.Contains(nx, ny); nx, ny = nx+dx, ny+dy {
		zn := r.zbuf.Values[ny*r.viewport.Width+nx]
		if math.IsInf(zn, -1) {
			break
		}

		dist := math.Hypot(float64(nx-x), float64(ny-y))
		maxAngle = max(maxAngle, math.Atan((zn-z)/dist))
	}
	return maxAngle
}

// directIntensity combines the specular, diffuse and shadow terms for unit
// normal n and light direction l. The ambient term is added after the
// z-buffer is complete.
func directIntensity(l, n math3d.Vec3, shadow float64) float64 {
	reflected := n.Scale(2 * n.Dot(l)).Sub(l)
	specular := math.Pow(reflected.Dot(viewAxis), specularPower)
	diffuse := n.Dot(l)

	return specularWeight*specular + diffuseWeight*diffuse + shadowWeight*shadow
}

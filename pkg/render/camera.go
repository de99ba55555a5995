package render

import (
	"github.com/taigrr/termshade/pkg/math3d"
)

// projectionDistance is the c in Perspective(c) and NormalPerspective(c).
const projectionDistance = 3

// Camera describes the viewer: an eye looking at a center point.
type Camera struct {
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3

	// Cached view matrix (computed on demand)
	viewMatrix math3d.Mat4
	viewDirty  bool
}

// NewCamera creates a camera at (0, 0, 1) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Eye:       math3d.V3(0, 0, 1),
		Center:    math3d.Zero3(),
		Up:        math3d.Up(),
		viewDirty: true,
	}
}

// Set places the camera. eye and center must differ and up must not be
// parallel to the view direction.
func (c *Camera) Set(eye, center, up math3d.Vec3) {
	c.Eye = eye
	c.Center = center
	c.Up = up
	c.viewDirty = true
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Eye, c.Center, c.Up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

// Light is the single directional light. The shadow map is rendered from a
// camera placed along the light direction looking at the origin.
type Light struct {
	Direction  math3d.Vec3 // Unit vector towards the light
	shadowView math3d.Mat4
}

// NewLight creates a light shining from dir. dir must be non-zero; it is
// normalized.
func NewLight(dir math3d.Vec3) Light {
	d := dir.Normalize()
	return Light{
		Direction:  d,
		shadowView: math3d.LookAt(d, math3d.Zero3(), math3d.Up()),
	}
}

// ShadowView returns the view matrix used by the shadow pass.
func (l Light) ShadowView() math3d.Mat4 {
	return l.shadowView
}

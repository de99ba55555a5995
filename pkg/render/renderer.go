package render

import (
	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/models"
)

// Instance is a mesh queued for the current frame. The mesh and images are
// borrowed read-only until the next Refresh.
type Instance struct {
	Mesh      *models.Mesh
	Texture   *models.Image
	NormalMap *models.Image
	Transform math3d.Mat4 // Model to world; normals use its upper 3x3
}

// Stats counts the work done by the last Render.
type Stats struct {
	Triangles       int // Triangles submitted to both passes
	ShadowFragments int // Shadow buffer writes
	Fragments       int // Pixels shaded by the color pass
	Degenerate      int // Pixels skipped for a singular tangent frame
}

// Renderer draws textured, normal mapped, shadowed meshes into a
// Compositor's plane.
//
// A frame is Refresh, any number of DrawModel calls, then Render or
// Display. Render runs the shadow pass over every queued triangle before
// the color pass starts, then resolves ambient occlusion against the
// finished z-buffer.
type Renderer struct {
	comp     *Compositor
	viewport Viewport

	camera *Camera
	light  Light

	projection       math3d.Mat4
	normalProjection math3d.Mat4

	zbuf      *DepthBuffer
	shadowBuf *DepthBuffer
	frags     []fragment

	queue    []Instance
	tris     []triangle
	rendered bool
	stats    Stats
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCamera sets the initial camera.
func WithCamera(eye, center, up math3d.Vec3) Option {
	return func(r *Renderer) {
		r.camera.Set(eye, center, up)
	}
}

// WithLight sets the initial light direction.
func WithLight(dir math3d.Vec3) Option {
	return func(r *Renderer) {
		r.light = NewLight(dir)
	}
}

// New creates a renderer drawing into comp. By default the camera sits at
// (0, 0, 1) and the light shines along +Z, both facing the origin.
func New(comp *Compositor, opts ...Option) *Renderer {
	r := &Renderer{
		comp:             comp,
		camera:           NewCamera(),
		light:            NewLight(math3d.V3(0, 0, 1)),
		projection:       math3d.Perspective(projectionDistance),
		normalProjection: math3d.NormalPerspective(projectionDistance),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.allocate()
	return r
}

// allocate sizes every plane-sized buffer from the compositor.
func (r *Renderer) allocate() {
	w, h := r.comp.PlaneSize()
	r.viewport = Viewport{Width: w, Height: h}
	r.zbuf = NewDepthBuffer(w, h)
	r.shadowBuf = NewDepthBuffer(w, h)
	r.frags = make([]fragment, w*h)
}

// Camera places the viewer.
func (r *Renderer) Camera(eye, center, up math3d.Vec3) {
	r.camera.Set(eye, center, up)
}

// Light sets the light direction and rebuilds the shadow view.
func (r *Renderer) Light(dir math3d.Vec3) {
	r.light = NewLight(dir)
}

// Refresh starts a new frame. It picks up terminal resizes, resets both
// depth buffers to -Inf, fills the plane with bg and empties the draw queue.
func (r *Renderer) Refresh(bg Color) error {
	changed, err := r.comp.Resize()
	if err != nil {
		return err
	}

	if changed {
		r.allocate()
	} else {
		r.zbuf.Reset()
		r.shadowBuf.Reset()
		clear(r.frags)
	}

	r.comp.Clear(bg)
	clear(r.queue)
	r.queue = r.queue[:0]
	r.rendered = false
	r.stats = Stats{}
	return nil
}

// DrawModel queues mesh with its diffuse texture and tangent-space normal
// map, offset by pos.
func (r *Renderer) DrawModel(mesh *models.Mesh, texture, normalMap *models.Image, pos math3d.Vec3) {
	r.DrawInstance(Instance{
		Mesh:      mesh,
		Texture:   texture,
		NormalMap: normalMap,
		Transform: math3d.Translate(pos),
	})
}

// DrawInstance queues an instance with an arbitrary model transform.
func (r *Renderer) DrawInstance(inst Instance) {
	r.queue = append(r.queue, inst)
	r.rendered = false
}

// Render rasterizes the queued instances into the compositor's plane. It
// does nothing if the queue has not changed since the last Render.
func (r *Renderer) Render() {
	if r.rendered {
		return
	}
	r.rendered = true

	view := r.camera.ViewMatrix()
	pointMat := r.projection.Mul(view)
	normalMat := r.normalProjection.Mul(view)
	shadowMat := r.projection.Mul(r.light.ShadowView())

	r.tris = r.tris[:0]
	for _, inst := range r.queue {
		r.tris = appendTriangles(r.tris, inst, pointMat, normalMat, shadowMat)
	}
	r.stats.Triangles = len(r.tris)

	// The whole shadow map must exist before any color pixel reads it
	for i := range r.tris {
		r.fillShadow(&r.tris[i])
	}

	light := normalMat.MulVec(r.light.Direction.HomoVector()).VectorProj()
	for i := range r.tris {
		r.fillColor(&r.tris[i], light)
	}

	r.resolve()
}

// appendTriangles transforms every face of inst and appends it to tris.
func appendTriangles(tris []triangle, inst Instance, pointMat, normalMat, shadowMat math3d.Mat4) []triangle {
	m := inst.Mesh
	for _, f := range m.Faces {
		t := triangle{texture: inst.Texture, normalMap: inst.NormalMap}
		for k, c := range f {
			world := inst.Transform.MulVec(m.Vertices[c.Vertex].HomoPoint())
			normal := inst.Transform.MulVec(m.Normals[c.Normal].HomoVector())

			t.screen[k] = pointMat.MulVec(world).PointProj()
			t.shadow[k] = shadowMat.MulVec(world).PointProj()
			t.normals[k] = normalMat.MulVec(normal).VectorProj()
			t.uv[k] = m.TexCoords[c.TexCoord]
		}
		tris = append(tris, t)
	}
	return tris
}

// Display renders any pending instances and writes the frame.
func (r *Renderer) Display() error {
	r.Render()
	return r.comp.Display()
}

// Stats returns the counters of the last Render.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Viewport returns the current plane size.
func (r *Renderer) Viewport() Viewport {
	return r.viewport
}

// ZBuffer returns the camera depth buffer.
func (r *Renderer) ZBuffer() *DepthBuffer {
	return r.zbuf
}

// ShadowBuffer returns the light depth buffer.
func (r *Renderer) ShadowBuffer() *DepthBuffer {
	return r.shadowBuf
}

// Compositor returns the compositor the renderer draws into.
func (r *Renderer) Compositor() *Compositor {
	return r.comp
}

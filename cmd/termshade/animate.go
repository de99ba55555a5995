package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/scene"
)

// springFPS is the spring time step used when the frame rate is uncapped.
const springFPS = 60

// SpringAxis follows a moving target with a critically damped spring.
type SpringAxis struct {
	Position float64
	velocity float64 // internal spring velocity
	spring   harmonica.Spring
}

// NewSpringAxis creates an axis resting at start.
func NewSpringAxis(fps int, start float64) SpringAxis {
	return SpringAxis{
		Position: start,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update moves the axis one frame towards target.
func (a *SpringAxis) Update(target float64) float64 {
	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, target)
	return a.Position
}

// springVec is three axes moved together.
type springVec [3]SpringAxis

func newSpringVec(fps int, start math3d.Vec3) springVec {
	return springVec{
		NewSpringAxis(fps, start.X),
		NewSpringAxis(fps, start.Y),
		NewSpringAxis(fps, start.Z),
	}
}

func (s *springVec) update(target math3d.Vec3) math3d.Vec3 {
	return math3d.V3(s[0].Update(target.X), s[1].Update(target.Y), s[2].Update(target.Z))
}

// CameraPath flies the camera along the demo curve. The curve's phases
// advance by fixed steps per frame and springs ease the camera onto it, so
// the first frames glide in from the scene's own camera.
type CameraPath struct {
	u, v, w float64
	eye     springVec
	center  springVec
}

// NewCameraPath starts the path at the scene camera.
func NewCameraPath(fps int, cam scene.Camera) *CameraPath {
	if fps <= 0 {
		fps = springFPS
	}
	return &CameraPath{
		eye:    newSpringVec(fps, cam.Eye.V3()),
		center: newSpringVec(fps, cam.Center.V3()),
	}
}

// Step advances one frame and returns the smoothed eye and center.
func (p *CameraPath) Step() (eye, center math3d.Vec3) {
	p.v += 0.06
	p.u -= 0.1
	p.w += 0.03

	eye = p.eye.update(math3d.V3(math.Cos(p.v)*math.Sin(p.u), 1, 2.5*math.Sin(p.w)))
	center = p.center.update(math3d.V3(math.Cos(p.v), math.Sin(p.u), math.Cos(p.w)))
	return eye, center
}

// Spinner turns the model about the Y axis at a fixed rate.
type Spinner struct {
	Angle float64
	step  float64
}

// NewSpinner creates a spinner turning speed radians per second.
func NewSpinner(fps int, speed float64) *Spinner {
	if fps <= 0 {
		fps = springFPS
	}
	return &Spinner{step: speed / float64(fps)}
}

// Transform advances one frame and returns the model transform placing the
// spun model at pos.
func (s *Spinner) Transform(pos math3d.Vec3) math3d.Mat4 {
	s.Angle = math.Mod(s.Angle+s.step, 2*math.Pi)
	return math3d.Translate(pos).Mul(math3d.RotateY(s.Angle))
}

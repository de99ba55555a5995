package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/scene"
)

func TestSpringAxisSettles(t *testing.T) {
	a := NewSpringAxis(60, 0)
	for range 600 {
		a.Update(2)
	}
	assert.InDelta(t, 2.0, a.Position, 1e-3)
}

func TestSpringAxisNoOvershoot(t *testing.T) {
	a := NewSpringAxis(30, 0)
	for range 300 {
		assert.LessOrEqual(t, a.Update(1), 1.0+1e-9)
	}
}

func TestCameraPathStartsAtSceneCamera(t *testing.T) {
	cam := scene.Default().Camera
	p := NewCameraPath(30, cam)

	eye, center := p.Step()
	// One frame of a spring barely moves away from the start
	assert.InDelta(t, cam.Eye.V3().X, eye.X, 0.1)
	assert.InDelta(t, cam.Center.V3().Y, center.Y, 0.1)
	assert.InDelta(t, 0.06, p.v, 1e-12)
	assert.InDelta(t, -0.1, p.u, 1e-12)
	assert.InDelta(t, 0.03, p.w, 1e-12)
}

func TestCameraPathUncappedFPS(t *testing.T) {
	p := NewCameraPath(0, scene.Default().Camera)
	eye, center := p.Step()
	assert.False(t, math.IsNaN(eye.X+eye.Y+eye.Z+center.X+center.Y+center.Z))
}

func TestSpinner(t *testing.T) {
	s := NewSpinner(10, math.Pi)
	m := s.Transform(math3d.V3(1, 2, 3))
	assert.InDelta(t, math.Pi/10, s.Angle, 1e-12)

	// Translation is applied after the rotation
	p := m.MulPoint(math3d.Zero3())
	assert.Equal(t, math3d.V3(1, 2, 3), p)

	still := NewSpinner(30, 0)
	still.Transform(math3d.Zero3())
	assert.Zero(t, still.Angle)
}

// Package scene describes what termshade draws: the assets, the light, the
// camera and the animation settings. Scenes are read from TOML files and
// can be overridden from the command line.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/models"
)

// Vec is a 3D vector written as a TOML array.
type Vec [3]float64

// V3 converts v to a math3d vector.
func (v Vec) V3() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Camera is the viewer placement.
type Camera struct {
	Eye    Vec `toml:"eye"`
	Center Vec `toml:"center"`
	Up     Vec `toml:"up"`
}

// Scene holds everything needed to render a frame.
type Scene struct {
	// Assets. Relative paths are resolved against the scene file.
	Mesh      string `toml:"mesh"`
	Texture   string `toml:"texture"`    // Optional for glTF meshes with an embedded texture
	NormalMap string `toml:"normal_map"` // Optional; a flat map is used when empty

	Background [3]uint8 `toml:"background"`
	Light      Vec      `toml:"light"` // Direction towards the light
	Camera     Camera   `toml:"camera"`
	Position   Vec      `toml:"position"`

	// Animation
	Animate bool    `toml:"animate"` // Fly the camera along the demo path
	Spin    float64 `toml:"spin"`    // Model rotation about Y, radians per second
	FPS     int     `toml:"fps"`     // Frame cap; 0 renders as fast as possible
}

// Flags carries command line overrides. Zero values leave the scene alone.
type Flags struct {
	Mesh      string
	Texture   string
	NormalMap string
	FPS       int
	Spin      float64
	Static    bool // Disable the camera animation
}

// Default returns the demo scene: the textured head lit from above right.
func Default() Scene {
	return Scene{
		Mesh:       "head.obj",
		Texture:    "head_diffuse.tga",
		NormalMap:  "head_nm_tangent.tga",
		Background: [3]uint8{0, 0, 255},
		Light:      Vec{2, 5, 1},
		Camera: Camera{
			Eye:    Vec{0.5, 0.3, 1},
			Center: Vec{0, 0, 0},
			Up:     Vec{0, 1, 0},
		},
		Animate: true,
		FPS:     30,
	}
}

// Load reads a scene file. Fields missing from the file keep their Default
// values and relative asset paths are made relative to the file.
func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("%w: read scene %s: %w", models.ErrIO, path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return Scene{}, fmt.Errorf("scene %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	s.Mesh = resolvePath(dir, s.Mesh)
	s.Texture = resolvePath(dir, s.Texture)
	s.NormalMap = resolvePath(dir, s.NormalMap)
	return s, nil
}

// Parse decodes TOML scene data on top of Default.
func Parse(data []byte) (Scene, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Scene{}, fmt.Errorf("%w: line %d column %d: %w", models.ErrParse, row, col, err)
		}
		return Scene{}, fmt.Errorf("%w: %w", models.ErrParse, err)
	}
	return s, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Resolve applies command line overrides. Flags take priority when
// non-zero/non-empty.
func (s *Scene) Resolve(flags Flags) {
	if flags.Mesh != "" {
		s.Mesh = flags.Mesh
		// A new mesh does not inherit the scene's textures
		s.Texture = ""
		s.NormalMap = ""
	}
	if flags.Texture != "" {
		s.Texture = flags.Texture
	}
	if flags.NormalMap != "" {
		s.NormalMap = flags.NormalMap
	}
	if flags.FPS > 0 {
		s.FPS = flags.FPS
	}
	if flags.Spin != 0 {
		s.Spin = flags.Spin
	}
	if flags.Static {
		s.Animate = false
	}
}

// Validate reports settings the renderer cannot work with.
func (s Scene) Validate() error {
	if s.Mesh == "" {
		return fmt.Errorf("%w: scene has no mesh", models.ErrParse)
	}
	if isOBJ(s.Mesh) && s.Texture == "" {
		return fmt.Errorf("%w: OBJ mesh %s needs a texture", models.ErrParse, s.Mesh)
	}

	light := s.Light.V3()
	if light.Len() == 0 {
		return fmt.Errorf("%w: light direction is zero", models.ErrParse)
	}
	// The shadow camera uses +Y as up
	if light.Cross(math3d.Up()).Len() == 0 {
		return fmt.Errorf("%w: light direction %v is parallel to the up axis", models.ErrParse, s.Light)
	}

	view := s.Camera.Eye.V3().Sub(s.Camera.Center.V3())
	if view.Len() == 0 {
		return fmt.Errorf("%w: camera eye and center coincide", models.ErrParse)
	}
	if s.Camera.Up.V3().Cross(view).Len() == 0 {
		return fmt.Errorf("%w: camera up is parallel to the view direction", models.ErrParse)
	}

	if s.FPS < 0 {
		return fmt.Errorf("%w: fps %d is negative", models.ErrParse, s.FPS)
	}
	return nil
}

// BackgroundColor returns the clear color.
func (s Scene) BackgroundColor() models.Color {
	return models.RGB(s.Background[0], s.Background[1], s.Background[2])
}

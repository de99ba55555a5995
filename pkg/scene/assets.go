package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/termshade/pkg/models"
)

// Assets are the decoded mesh and images of a scene.
type Assets struct {
	Mesh      *models.Mesh
	Texture   *models.Image
	NormalMap *models.Image
}

func isOBJ(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".obj")
}

// LoadAssets decodes the scene's mesh, texture and normal map, stopping at
// the first error. glTF meshes may supply their own texture; a mesh without
// one is drawn in flat gray. A missing normal map means a flat one.
func (s Scene) LoadAssets() (*Assets, error) {
	a := &Assets{}

	var err error
	switch ext := strings.ToLower(filepath.Ext(s.Mesh)); ext {
	case ".obj":
		a.Mesh, err = models.LoadOBJ(s.Mesh)
	case ".glb", ".gltf":
		a.Mesh, a.Texture, err = models.LoadGLB(s.Mesh)
	default:
		err = fmt.Errorf("%w: mesh extension %q", models.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if s.Texture != "" {
		if a.Texture, err = models.LoadImage(s.Texture); err != nil {
			return nil, err
		}
	}
	if a.Texture == nil {
		a.Texture = models.NewSolidImage(1, 1, models.ColorGray)
	}

	if s.NormalMap != "" {
		if a.NormalMap, err = models.LoadImage(s.NormalMap); err != nil {
			return nil, err
		}
	} else {
		a.NormalMap = models.NewFlatNormalMap()
	}
	return a, nil
}

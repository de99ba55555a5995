package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/termshade/pkg/math3d"
)

// LoadOBJ loads a triangulated Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open mesh: %w", ErrIO, err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseOBJ reads OBJ text. Only v, vt, vn and triangular f directives with
// full v/vt/vn corners are understood; everything else is ignored. Indices
// are converted from 1-based to 0-based.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("")
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v math3d.Vec3
			v, err = parseVec3(fields[1:])
			mesh.Vertices = append(mesh.Vertices, v)
		case "vt":
			var vt math3d.Vec2
			vt, err = parseVec2(fields[1:])
			mesh.TexCoords = append(mesh.TexCoords, vt)
		case "vn":
			var vn math3d.Vec3
			vn, err = parseVec3(fields[1:])
			mesh.Normals = append(mesh.Normals, vn)
		case "f":
			var f Face
			f, err = parseFace(fields[1:])
			mesh.Faces = append(mesh.Faces, f)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read mesh: %w", ErrIO, err)
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d components, got %d", ErrParse, n, len(fields))
	}

	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		out[i] = f
	}
	return out, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(f[0], f[1], f[2]), nil
}

// parseVec2 reads u and v; an optional third texture component is ignored.
func parseVec2(fields []string) (math3d.Vec2, error) {
	f, err := parseFloats(fields, 2)
	if err != nil {
		return math3d.Vec2{}, err
	}
	return math3d.V2(f[0], f[1]), nil
}

func parseFace(fields []string) (Face, error) {
	var f Face
	if len(fields) != 3 {
		return f, fmt.Errorf("%w: face has %d corners, want 3", ErrParse, len(fields))
	}

	for i, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) != 3 {
			return f, fmt.Errorf("%w: corner %q is not v/vt/vn", ErrParse, field)
		}

		var idx [3]int
		for j, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return f, fmt.Errorf("%w: corner %q: %w", ErrParse, field, err)
			}
			if n < 1 {
				return f, fmt.Errorf("%w: corner %q: index %d is not 1-based", ErrParse, field, n)
			}
			idx[j] = n - 1
		}
		f[i] = Corner{Vertex: idx[0], TexCoord: idx[1], Normal: idx[2]}
	}
	return f, nil
}

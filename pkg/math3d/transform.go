package math3d

// LookAt creates a view matrix looking from eye towards center.
//
// The world is moved so center sits at the origin, rotated into the camera
// basis (right, up, forward) and pushed back along the view axis by the
// eye-to-center distance, which leaves the eye at the origin.
// The basis is orthonormal, so its inverse is its transpose and the rotation
// rows are written directly.
func LookAt(eye, center, up Vec3) Mat4 {
	view := eye.Sub(center)
	// k points from center towards the eye; i is right, j the recomputed up.
	k := view.Normalize()
	i := up.Cross(k).Normalize()
	j := k.Cross(i).Normalize()

	distance := Identity()
	distance.Set(2, 3, -view.Len())

	basis := M4(
		V4(i.X, i.Y, i.Z, 0),
		V4(j.X, j.Y, j.Z, 0),
		V4(k.X, k.Y, k.Z, 0),
		V4(0, 0, 0, 1),
	)

	return distance.Mul(basis).Mul(Translate(center.Negate()))
}

// Perspective creates a one-parameter perspective matrix: after projection a
// point is divided by 1 - z/c, so c is the distance of the projection centre.
func Perspective(c float64) Mat4 {
	m := Identity()
	m.Set(3, 2, -1/c)
	return m
}

// NormalPerspective is the companion of Perspective for directions (w=0).
// It keeps transformed normals perpendicular to surfaces transformed with
// Perspective.
func NormalPerspective(c float64) Mat4 {
	m := Identity()
	m.Set(2, 3, 1/c)
	return m
}

// ToBarycentric returns the barycentric weights of p in the triangle (a, b, c).
// A degenerate (zero-area) triangle yields (-1, -1, -1), which is never
// inside.
func ToBarycentric(a, b, c, p Vec2) Vec3 {
	edges := M2(
		[2]float64{b.X - a.X, c.X - a.X},
		[2]float64{b.Y - a.Y, c.Y - a.Y},
	)

	inv, ok := edges.Inverse()
	if !ok {
		return V3(-1, -1, -1)
	}

	uv := inv.MulVec(p.Sub(a))
	return V3(1-uv.X-uv.Y, uv.X, uv.Y)
}

// ToEuclidean maps barycentric weights w back to a point of the triangle
// (a, b, c). It is the inverse of ToBarycentric for non-degenerate triangles.
func ToEuclidean(a, b, c Vec2, w Vec3) Vec2 {
	edges := M2(
		[2]float64{b.X - a.X, c.X - a.X},
		[2]float64{b.Y - a.Y, c.Y - a.Y},
	)
	return edges.MulVec(V2(w.Y, w.Z)).Add(a)
}

// Inside reports whether barycentric weights describe a point inside the
// triangle (edges included).
func Inside(w Vec3) bool {
	return w.X >= 0 && w.Y >= 0 && w.Z >= 0
}

// Blend returns the barycentric combination of three vectors.
func Blend(a, b, c Vec3, w Vec3) Vec3 {
	return a.Scale(w.X).Add(b.Scale(w.Y)).Add(c.Scale(w.Z))
}

// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK detects a collision to determine:
//   - Penetration depth (how far shapes overlap)
//   - Contact normal (direction to separate shapes)
//   - Witness points on both shapes
//
// The algorithm expands a polytope (starting from GJK's final simplex) toward the origin
// in the Minkowski difference space, finding the closest face which gives us the
// Minimum Translation Vector (MTV) to separate the shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"github.com/akmonengine/impulse/gjk"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxIterations limits polytope expansion. Past it, the closest face found so far is used.
	MaxIterations = 64

	// ConvergenceTolerance defines when EPA has converged: a new support point
	// that improves the closest face distance by less than this is rejected.
	ConvergenceTolerance float32 = 1e-4

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	NormalSnapThreshold float32 = 1e-6

	// MinSeedVolume is the minimal volume of the seed tetrahedron, times 6
	MinSeedVolume float32 = 1e-9

	visibilityTolerance float32 = 1e-6
	seedTolerance       float32 = 1e-5
)

// Result holds the penetration of the last successful run.
// The normal points from A toward B: moving B by Normal*Depth separates the shapes.
type Result struct {
	Normal     mgl32.Vec3
	Depth      float32
	PointA     mgl32.Vec3
	PointB     mgl32.Vec3
	Iterations int
}

// EPA is reusable across runs; its polytope storage comes from a pool.
type EPA struct {
	Result Result
}

// Run computes the penetration of two intersecting shapes, from the terminal GJK simplex.
//
// Algorithm overview:
//  1. Complete the simplex into a tetrahedron if GJK stopped early (touching shapes)
//  2. Find the face closest to the origin
//  3. Get the support point along that face normal
//  4. If it is not farther than the face → converged
//  5. Otherwise, insert it and re-triangulate the horizon
//
// It returns false when the seed cannot be made into a tetrahedron of non-zero volume.
func (e *EPA) Run(simplex *gjk.Simplex, a, b gjk.Support) bool {
	e.Result = Result{}

	polytope := polytopePool.Get().(*Polytope)
	defer polytopePool.Put(polytope)
	polytope.Reset()

	for i := 0; i < simplex.Count; i++ {
		polytope.addVertex(simplex.Points[i])
	}
	if !completeSeed(polytope, a, b) || !polytope.buildTetrahedron() {
		return false
	}

	best := polytope.faces[polytope.closestFace()]
	for i := 0; i < MaxIterations; i++ {
		e.Result.Iterations++

		support := gjk.MinkowskiSupport(a, b, best.Normal)
		if support.P.Dot(best.Normal)-best.Distance < ConvergenceTolerance {
			break
		}

		// a failed expansion is a numerical dead end: keep the best face so far
		if !polytope.expand(support) || len(polytope.faces) == 0 {
			break
		}
		best = polytope.faces[polytope.closestFace()]
	}

	e.setResult(polytope, best)

	return true
}

func (e *EPA) setResult(polytope *Polytope, face Face) {
	va := polytope.vertices[face.Indices[0]]
	vb := polytope.vertices[face.Indices[1]]
	vc := polytope.vertices[face.Indices[2]]

	projection := face.Normal.Mul(face.Distance)
	u, v, w := barycentric(projection, va.P, vb.P, vc.P)

	e.Result.Normal = snapNormalToAxis(face.Normal)
	e.Result.Depth = max(face.Distance, 0)
	e.Result.PointA = va.A.Mul(u).Add(vb.A.Mul(v)).Add(vc.A.Mul(w))
	e.Result.PointB = va.B.Mul(u).Add(vb.B.Mul(v)).Add(vc.B.Mul(w))
}

// completeSeed grows a simplex of less than 4 points into a tetrahedron.
//
// Touching shapes make GJK stop on a point, a segment or a triangle holding the origin.
// The missing vertices are searched along the axes, around the segment, then along
// the triangle normal.
func completeSeed(polytope *Polytope, a, b gjk.Support) bool {
	axes := [6]mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

	if len(polytope.vertices) == 0 {
		polytope.addVertex(gjk.MinkowskiSupport(a, b, axes[0]))
	}

	if len(polytope.vertices) == 1 {
		for _, axis := range axes {
			support := gjk.MinkowskiSupport(a, b, axis)
			if support.P.Sub(polytope.vertices[0].P).LenSqr() > seedTolerance*seedTolerance {
				polytope.addVertex(support)
				break
			}
		}
	}

	if len(polytope.vertices) == 2 {
		line := polytope.vertices[1].P.Sub(polytope.vertices[0].P)

		// search direction orthogonal to the segment, rotated by 60° steps around it
		axis := leastAlignedAxis(line)
		direction := line.Cross(axis).Normalize()
		rotation := mgl32.QuatRotate(math32.Pi/3, line.Normalize())

		for i := 0; i < 6; i++ {
			support := gjk.MinkowskiSupport(a, b, direction)
			if distanceToLine(support.P, polytope.vertices[0].P, line) > seedTolerance {
				polytope.addVertex(support)
				break
			}
			direction = rotation.Rotate(direction)
		}
	}

	if len(polytope.vertices) == 3 {
		v := polytope.vertices
		normal := v[1].P.Sub(v[0].P).Cross(v[2].P.Sub(v[0].P))

		support := gjk.MinkowskiSupport(a, b, normal)
		if math32.Abs(support.P.Sub(v[0].P).Dot(normal)) < seedTolerance*normal.Len() {
			support = gjk.MinkowskiSupport(a, b, normal.Mul(-1))
		}
		polytope.addVertex(support)
	}

	return len(polytope.vertices) == 4
}

func leastAlignedAxis(v mgl32.Vec3) mgl32.Vec3 {
	x, y, z := math32.Abs(v.X()), math32.Abs(v.Y()), math32.Abs(v.Z())
	if x <= y && x <= z {
		return mgl32.Vec3{1, 0, 0}
	}
	if y <= z {
		return mgl32.Vec3{0, 1, 0}
	}

	return mgl32.Vec3{0, 0, 1}
}

func distanceToLine(point, origin, line mgl32.Vec3) float32 {
	lenSqr := line.LenSqr()
	if lenSqr < 1e-12 {
		return point.Sub(origin).Len()
	}

	return point.Sub(origin).Cross(line).Len() / math32.Sqrt(lenSqr)
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero,
// then renormalizes it. Axis aligned contacts (box on ground) stay exactly aligned.
func snapNormalToAxis(normal mgl32.Vec3) mgl32.Vec3 {
	for i := 0; i < 3; i++ {
		if math32.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	length := normal.Len()
	if length < 1e-8 {
		return mgl32.Vec3{0, 1, 0}
	}

	return normal.Mul(1 / length)
}

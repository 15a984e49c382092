// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for collision detection,
// and the GJK based ray cast used by raycasts and sweep tests.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski difference
// contains the origin. The algorithm builds a simplex incrementally, converging toward
// the origin in typically 3-6 iterations.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Ray Casting against General Convex Objects with Application to
//     Continuous Collision Detection" (2004)
package gjk

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxIterations is the safety limit of both the intersection test and the ray cast
	MaxIterations = 32
	// ProgressTolerance is the minimal advance of a new support point along the search
	// direction, past the best vertex of the simplex. Below it the shapes are separated.
	ProgressTolerance float32 = 1e-5
)

// Support is the only query GJK needs from a convex shape
type Support interface {
	ExtremePointWorld(direction mgl32.Vec3) mgl32.Vec3
}

// Stats counts the work done by the last runs, for diagnostics.
type Stats struct {
	LineTests        int
	TriangleTests    int
	TetrahedronTests int
	Steps            int
}

func (s *Stats) Reset() {
	*s = Stats{}
}

// MinkowskiSupport computes a support point in the Minkowski difference (A - B).
//
// Support point: furthestPoint(A, direction) - furthestPoint(B, -direction)
//
// Shapes only need to implement ExtremePointWorld, not expose their full geometry.
func MinkowskiSupport(a, b Support, direction mgl32.Vec3) SupportPoint {
	supportA := a.ExtremePointWorld(direction)
	supportB := b.ExtremePointWorld(direction.Mul(-1))

	return SupportPoint{P: supportA.Sub(supportB), A: supportA, B: supportB}
}

// GJK is a reusable intersection test. The simplex left after Run is the seed of EPA.
type GJK struct {
	Simplex Simplex
	Stats   Stats
}

// Run performs the intersection test between two convex shapes, using their cached world data.
//
// Algorithm overview:
//  1. Start with initial search direction (toward B from A)
//  2. Get first support point in Minkowski difference
//  3. Iteratively refine simplex toward origin
//  4. If origin is contained → collision
//  5. If a new support point makes no progress → no collision
//
// For collisions, the simplex is usually a tetrahedron containing the origin. A touching
// contact may end on a smaller simplex; EPA completes it.
func (g *GJK) Run(a, b actor.Shape) bool {
	g.Stats.Reset()
	g.Simplex.Reset()

	direction := b.WorldBounds().Center().Sub(a.WorldBounds().Center())
	if direction.LenSqr() < 1e-8 {
		direction = mgl32.Vec3{1, 0, 0}
	}

	return g.run(a, b, direction)
}

func (g *GJK) run(a, b Support, direction mgl32.Vec3) bool {
	simplex := &g.Simplex
	simplex.Add(MinkowskiSupport(a, b, direction))

	direction = simplex.Points[0].P.Mul(-1)
	// first support point at the origin: shapes touch at a point
	if direction.LenSqr() < 1e-12 {
		return true
	}

	for i := 0; i < MaxIterations; i++ {
		g.Stats.Steps++

		newPoint := MinkowskiSupport(a, b, direction)

		// If the new point doesn't pass the origin in the search direction,
		// the origin cannot be reached.
		projection := newPoint.P.Dot(direction)
		if projection <= 0 {
			return false
		}

		// The new point must advance past the best vertex of the simplex,
		// otherwise the search is cycling on a touching or separated pair.
		dirLen := direction.Len()
		best := simplex.Points[0].P.Dot(direction)
		for j := 1; j < simplex.Count; j++ {
			best = max(best, simplex.Points[j].P.Dot(direction))
		}
		if (projection-best)/dirLen <= ProgressTolerance {
			return false
		}

		simplex.Add(newPoint)

		// Reduce the simplex to the feature closest to the origin,
		// and update the direction for the next iteration
		if g.containsOrigin(&direction) {
			return true
		}
	}

	return false
}

// containsOrigin tests if the simplex contains the origin and refines the simplex.
//
// Behavior by simplex dimension:
//   - 2 points (line): Test Voronoi regions, reduce to closest point or keep edge
//   - 3 points (triangle): Test Voronoi regions, reduce to closest edge or keep face
//   - 4 points (tetrahedron): Test if origin is inside; if not, reduce to closest face
func (g *GJK) containsOrigin(direction *mgl32.Vec3) bool {
	switch g.Simplex.Count {
	case 2:
		return g.line(direction)
	case 3:
		return g.triangle(direction)
	case 4:
		return g.tetrahedron(direction)
	}

	return false
}

// line handles the line simplex case (2 points: A and B, A being the most recent).
// A line only contains the origin when the origin lies on it: the shapes are touching.
func (g *GJK) line(direction *mgl32.Vec3) bool {
	g.Stats.LineTests++
	simplex := &g.Simplex

	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.P.Sub(a.P)
	ao := a.P.Mul(-1)

	// identical points
	if ab.LenSqr() < 1e-10 {
		if ao.LenSqr() < 1e-10 {
			return true
		}
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	// Voronoi region of A
	if ab.Dot(ao) <= 0 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.LenSqr() < 1e-10 {
		// Origin is on the segment
		return true
	}

	*direction = abPerp
	return false
}

// triangle handles the triangle simplex case (3 points: A, B, C).
// Collinear points are handled as a line.
func (g *GJK) triangle(direction *mgl32.Vec3) bool {
	g.Stats.TriangleTests++
	simplex := &g.Simplex

	a := simplex.Points[2] // Most recent point
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.P.Sub(a.P)
	ac := c.P.Sub(a.P)
	ao := a.P.Mul(-1)

	abc := ab.Cross(ac)

	if abc.LenSqr() < 1e-10 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		return g.line(direction)
	}

	// Region AB
	abPerp := ab.Cross(abc)
	if abPerp.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	// Region AC
	acPerp := abc.Cross(ac)
	if acPerp.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// Below, reverse order to keep the orientation
		simplex.Points[0] = a
		simplex.Points[1] = c
		simplex.Points[2] = b
		simplex.Count = 3
		*direction = abc.Mul(-1)
	}

	return false
}

// tetrahedron handles the tetrahedron simplex case (4 points: A, B, C, D).
// This is the only case that can report a penetration.
//
// Face normals must point away from the 4th vertex to tell which side
// of each face the origin is on.
func (g *GJK) tetrahedron(direction *mgl32.Vec3) bool {
	g.Stats.TetrahedronTests++
	simplex := &g.Simplex

	a := simplex.Points[3] // Most recent point
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.P.Sub(a.P)
	ac := c.P.Sub(a.P)
	ad := d.P.Sub(a.P)
	ao := a.P.Mul(-1)

	// Face ABC (opposite to D)
	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}

	// Face ACD (opposite to B)
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}

	// Face ADB (opposite to C)
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return g.triangle(direction)
	}

	if abc.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return g.triangle(direction)
	}

	if acd.Dot(ao) > 0 {
		simplex.Points[0] = d
		simplex.Points[1] = c
		simplex.Points[2] = a
		simplex.Count = 3
		return g.triangle(direction)
	}

	if adb.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = d
		simplex.Points[2] = a
		simplex.Count = 3
		return g.triangle(direction)
	}

	return true
}

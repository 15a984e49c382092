package gjk

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CastTolerance is the distance below which the ray is considered on the target surface
const CastTolerance float32 = 1e-4

// RayHit describes the first contact found along a cast.
type RayHit struct {
	// Fraction of the cast length, in [0, 1]
	Fraction float32
	Distance float32
	// Point is the contact point on the target
	Point mgl32.Vec3
	// Normal is the unit surface normal of the target, facing the cast origin
	Normal mgl32.Vec3
}

// RayCaster casts rays and swept shapes against convex shapes with conservative advancement.
// It is reusable, and keeps no state between casts apart from its scratch simplex.
type RayCaster struct {
	Simplex Simplex
	Stats   Stats
}

// castable is the convex set a ray is cast against
type castable interface {
	support(direction mgl32.Vec3) SupportPoint
}

type shapeTarget struct {
	shape Support
}

func (t shapeTarget) support(direction mgl32.Vec3) SupportPoint {
	p := t.shape.ExtremePointWorld(direction)
	return SupportPoint{P: p, B: p}
}

// sweepTarget is the Minkowski difference target - moving
type sweepTarget struct {
	moving Support
	target Support
}

func (t sweepTarget) support(direction mgl32.Vec3) SupportPoint {
	return MinkowskiSupport(t.target, t.moving, direction).swap()
}

// swap stores the moving point in A and the target point in B
func (sp SupportPoint) swap() SupportPoint {
	return SupportPoint{P: sp.P, A: sp.B, B: sp.A}
}

// Cast shoots a ray from origin along direction, up to maxDistance.
// The direction does not need to be normalized. A ray starting inside the target hits at 0.
func (rc *RayCaster) Cast(target Support, origin, direction mgl32.Vec3, maxDistance float32) (RayHit, bool) {
	dirLen := direction.Len()
	if dirLen < 1e-8 || maxDistance <= 0 {
		return RayHit{}, false
	}

	return cast(rc, shapeTarget{shape: target}, origin, direction.Mul(maxDistance/dirLen))
}

// Sweep moves the shape moving along translation, and reports the first contact with target.
// Both shapes must have their world cache up to date.
func (rc *RayCaster) Sweep(moving, target Support, translation mgl32.Vec3) (RayHit, bool) {
	return cast(rc, sweepTarget{moving: moving, target: target}, mgl32.Vec3{}, translation)
}

// cast implements the GJK ray cast of van den Bergen: the ray origin x advances along r
// while the simplex of shifted points x - P converges to the origin.
func cast[T castable](rc *RayCaster, target T, origin, r mgl32.Vec3) (RayHit, bool) {
	rc.Stats.Reset()
	rc.Simplex.Reset()

	lambda := float32(0)
	x := origin
	normal := mgl32.Vec3{}

	v := x.Sub(target.support(r.Mul(-1)).P)
	converged := false

	for i := 0; i < MaxIterations; i++ {
		if v.LenSqr() <= CastTolerance*CastTolerance {
			converged = true
			break
		}
		rc.Stats.Steps++

		sp := target.support(v)
		w := x.Sub(sp.P)
		vw := v.Dot(w)
		if vw > 0 {
			vr := v.Dot(r)
			if vr >= 0 {
				// moving away from the target
				return RayHit{}, false
			}
			lambda -= vw / vr
			if lambda > 1 {
				return RayHit{}, false
			}
			x = origin.Add(r.Mul(lambda))
			normal = v
		}

		duplicate := rc.Simplex.Contains(sp.P, CastTolerance)
		if !duplicate {
			rc.Simplex.Add(sp)
		}

		var inside bool
		v, inside = rc.Simplex.closest(x)
		if inside {
			converged = true
			break
		}
		if duplicate {
			// no new vertex: v is the distance to the target
			converged = v.LenSqr() <= 100*CastTolerance*CastTolerance
			break
		}
	}

	if !converged && v.LenSqr() > 100*CastTolerance*CastTolerance {
		return RayHit{}, false
	}

	if normal.LenSqr() < 1e-12 {
		normal = r.Mul(-1)
	}
	normal = normal.Normalize()

	point := x
	if rc.Simplex.Count > 0 {
		_, point = rc.Simplex.Witnesses()
	}

	rLen := math32.Sqrt(r.LenSqr())
	return RayHit{
		Fraction: lambda,
		Distance: lambda * rLen,
		Point:    point,
		Normal:   normal,
	}, true
}

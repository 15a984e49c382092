package actor

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl32.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extents returns the half size of the box on each axis
func (a AABB) Extents() mgl32.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// Union returns the smallest AABB enclosing both boxes
func (a AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{math32.Min(a.Min[0], other.Min[0]), math32.Min(a.Min[1], other.Min[1]), math32.Min(a.Min[2], other.Min[2])},
		Max: mgl32.Vec3{math32.Max(a.Max[0], other.Max[0]), math32.Max(a.Max[1], other.Max[1]), math32.Max(a.Max[2], other.Max[2])},
	}
}

// Translated returns the box moved by the given offset
func (a AABB) Translated(offset mgl32.Vec3) AABB {
	return AABB{Min: a.Min.Add(offset), Max: a.Max.Add(offset)}
}

// IntersectRay performs a slab test of the ray origin + t*direction, t in [0, maxDistance].
// It returns the entry distance along the ray (0 when the origin is inside).
func (a AABB) IntersectRay(origin, direction mgl32.Vec3, maxDistance float32) (float32, bool) {
	tMin := float32(0)
	tMax := maxDistance

	for i := 0; i < 3; i++ {
		if math32.Abs(direction[i]) < 1e-8 {
			if origin[i] < a.Min[i] || origin[i] > a.Max[i] {
				return 0, false
			}
			continue
		}

		inv := 1 / direction[i]
		t1 := (a.Min[i] - origin[i]) * inv
		t2 := (a.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	return tMin, true
}

// TransformAABB returns the world AABB enclosing a local box moved by the transform
func TransformAABB(local AABB, transform Transform) AABB {
	corners := [8]mgl32.Vec3{
		{local.Min.X(), local.Min.Y(), local.Min.Z()},
		{local.Max.X(), local.Min.Y(), local.Min.Z()},
		{local.Min.X(), local.Max.Y(), local.Min.Z()},
		{local.Max.X(), local.Max.Y(), local.Min.Z()},
		{local.Min.X(), local.Min.Y(), local.Max.Z()},
		{local.Max.X(), local.Min.Y(), local.Max.Z()},
		{local.Min.X(), local.Max.Y(), local.Max.Z()},
		{local.Max.X(), local.Max.Y(), local.Max.Z()},
	}

	worldCorner := transform.PointToWorld(corners[0])
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = transform.PointToWorld(corners[i])

		min[0] = math32.Min(min[0], worldCorner[0])
		min[1] = math32.Min(min[1], worldCorner[1])
		min[2] = math32.Min(min[2], worldCorner[2])

		max[0] = math32.Max(max[0], worldCorner[0])
		max[1] = math32.Max(max[1], worldCorner[1])
		max[2] = math32.Max(max[2], worldCorner[2])
	}

	return AABB{Min: min, Max: max}
}

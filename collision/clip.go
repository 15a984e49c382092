package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const clipTolerance float32 = 1e-6

// halfPlane is the set of points x with Normal·(x - Point) >= 0
type halfPlane struct {
	Point  mgl32.Vec2
	Normal mgl32.Vec2
}

func (h halfPlane) distance(p mgl32.Vec2) float32 {
	return h.Normal.Dot(p.Sub(h.Point))
}

// edgePlanes returns the inner half-planes of the edges of a convex polygon, whatever its winding
func edgePlanes(polygon []mgl32.Vec2, out []halfPlane) []halfPlane {
	out = out[:0]
	if len(polygon) < 3 {
		return out
	}

	var center mgl32.Vec2
	for _, p := range polygon {
		center = center.Add(p)
	}
	center = center.Mul(1 / float32(len(polygon)))

	for i := range polygon {
		v1 := polygon[i]
		v2 := polygon[(i+1)%len(polygon)]
		edge := v2.Sub(v1)
		normal := mgl32.Vec2{-edge.Y(), edge.X()}
		if normal.Dot(center.Sub(v1)) < 0 {
			normal = normal.Mul(-1)
		}
		if length := normal.Len(); length > 1e-12 {
			out = append(out, halfPlane{Point: v1, Normal: normal.Mul(1 / length)})
		}
	}

	return out
}

// clipPolygon implements Sutherland-Hodgman: the subject polygon is clipped by each half-plane
// in turn. A 2 points subject is clipped as a segment. work is a scratch buffer.
func clipPolygon(subject []mgl32.Vec2, planes []halfPlane, out, work []mgl32.Vec2) ([]mgl32.Vec2, []mgl32.Vec2) {
	out = append(out[:0], subject...)

	for _, plane := range planes {
		if len(out) == 0 {
			break
		}
		work = append(work[:0], out...)
		out = out[:0]

		if len(work) == 2 {
			out = clipSegment(work[0], work[1], plane, out)
			continue
		}

		for i := range work {
			current := work[i]
			next := work[(i+1)%len(work)]
			currentDist := plane.distance(current)
			nextDist := plane.distance(next)

			if currentDist >= -clipTolerance {
				out = append(out, current)
				if nextDist < -clipTolerance {
					out = append(out, intersect(current, next, currentDist, nextDist))
				}
			} else if nextDist >= -clipTolerance {
				out = append(out, intersect(current, next, currentDist, nextDist))
			}
		}
	}

	return out, work
}

func clipSegment(a, b mgl32.Vec2, plane halfPlane, out []mgl32.Vec2) []mgl32.Vec2 {
	distA := plane.distance(a)
	distB := plane.distance(b)

	switch {
	case distA >= -clipTolerance && distB >= -clipTolerance:
		return append(out, a, b)
	case distA < -clipTolerance && distB < -clipTolerance:
		return out
	case distA < -clipTolerance:
		return append(out, intersect(a, b, distA, distB), b)
	default:
		return append(out, a, intersect(a, b, distA, distB))
	}
}

func intersect(a, b mgl32.Vec2, distA, distB float32) mgl32.Vec2 {
	denom := distA - distB
	if math32.Abs(denom) < 1e-12 {
		return a
	}
	t := min(max(distA/denom, 0), 1)

	return a.Add(b.Sub(a).Mul(t))
}

// cyrusBeck clips the segment p0-p1 against convex half-planes, and returns the parameters
// of the clipped segment. It reports false when nothing is left.
func cyrusBeck(p0, p1 mgl32.Vec2, planes []halfPlane) (float32, float32, bool) {
	tEnter, tLeave := float32(0), float32(1)
	direction := p1.Sub(p0)

	for _, plane := range planes {
		numerator := plane.distance(p0)
		denominator := plane.Normal.Dot(direction)

		if math32.Abs(denominator) < 1e-12 {
			// parallel to the boundary
			if numerator < -clipTolerance {
				return 0, 0, false
			}
			continue
		}

		t := -numerator / denominator
		if denominator > 0 {
			tEnter = max(tEnter, t)
		} else {
			tLeave = min(tLeave, t)
		}
		if tEnter > tLeave {
			return 0, 0, false
		}
	}

	return tEnter, tLeave, true
}

// closestSegmentPoints returns the closest points of the segments p1-q1 and p2-q2.
//
// Ericson, "Real-Time Collision Detection" (2005), 5.1.9.
func closestSegmentPoints(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32
	switch {
	case a <= 1e-12 && e <= 1e-12:
		return p1, p2
	case a <= 1e-12:
		t = min(max(f/e, 0), 1)
	default:
		c := d1.Dot(r)
		if e <= 1e-12 {
			s = min(max(-c/a, 0), 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > 1e-12 {
				s = min(max((b*f-c*e)/denom, 0), 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = min(max(-c/a, 0), 1)
			} else if t > 1 {
				t = 1
				s = min(max((b-c)/a, 0), 1)
			}
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

package collision

import (
	"github.com/akmonengine/impulse/constraint"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// candidate is a contact point before reduction
type candidate struct {
	planar mgl32.Vec2
	depth  float32
	pointA mgl32.Vec3
	pointB mgl32.Vec3
}

// reduce keeps at most MaxContacts candidates spanning the largest area:
// the deepest one, the farthest from it, the one making the largest triangle,
// then the one adding the largest area to that triangle.
func reduce(candidates []candidate, out []candidate) []candidate {
	out = out[:0]
	if len(candidates) <= constraint.MaxContacts {
		return append(out, candidates...)
	}

	deepest := 0
	for i, c := range candidates {
		if c.depth > candidates[deepest].depth {
			deepest = i
		}
	}
	out = append(out, candidates[deepest])

	farthest, best := -1, float32(-1)
	for i, c := range candidates {
		if d := c.planar.Sub(out[0].planar).LenSqr(); d > best {
			farthest, best = i, d
		}
	}
	out = append(out, candidates[farthest])

	third, best := -1, float32(-1)
	for i, c := range candidates {
		if area := math32.Abs(cross2(out[0].planar, out[1].planar, c.planar)); area > best {
			third, best = i, area
		}
	}
	out = append(out, candidates[third])

	// the 4th point must lie outside an edge of the triangle
	orientation := cross2(out[0].planar, out[1].planar, out[2].planar)
	fourth, best := -1, float32(0)
	for i, c := range candidates {
		for e := 0; e < 3; e++ {
			gain := -cross2(out[e].planar, out[(e+1)%3].planar, c.planar)
			if orientation < 0 {
				gain = -gain
			}
			if gain > best {
				fourth, best = i, gain
			}
		}
	}
	if fourth >= 0 {
		out = append(out, candidates[fourth])
	}

	return out
}

// cross2 is twice the signed area of the triangle abc
func cross2(a, b, c mgl32.Vec2) float32 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	return ab.X()*ac.Y() - ab.Y()*ac.X()
}

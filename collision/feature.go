package collision

import (
	"cmp"
	"slices"

	"github.com/akmonengine/impulse/actor"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// tilt of the sampling directions around the contact normal, as a tangent ratio
	samplingTilt float32 = 0.25
	// depthTolerance and mergeTolerance are ratios of the shape bounding radius
	depthTolerance float32 = 0.02
	mergeTolerance float32 = 0.01
)

// basis is the tangent-bitangent-normal frame of a contact
type basis struct {
	tangent   mgl32.Vec3
	bitangent mgl32.Vec3
	normal    mgl32.Vec3
}

// planar projects a world point on the tangent plane
func (b basis) planar(p mgl32.Vec3) mgl32.Vec2 {
	return mgl32.Vec2{p.Dot(b.tangent), p.Dot(b.bitangent)}
}

// world rebuilds a world point from its tangent plane coordinates and its height along the normal
func (b basis) world(q mgl32.Vec2, height float32) mgl32.Vec3 {
	return b.tangent.Mul(q.X()).Add(b.bitangent.Mul(q.Y())).Add(b.normal.Mul(height))
}

type vertex struct {
	world  mgl32.Vec3
	planar mgl32.Vec2
	height float32
	angle  float32
}

// feature is the set of extreme points of a shape along a direction:
// a point, an edge (2 vertices) or a convex polygon wound counter-clockwise in the tangent plane.
type feature struct {
	vertices []vertex

	// plane of a polygon feature, as height = offset - slope·q
	slope  mgl32.Vec2
	offset float32
}

func (f *feature) reset() {
	f.vertices = f.vertices[:0]
	f.slope = mgl32.Vec2{}
	f.offset = 0
}

func (f *feature) count() int {
	return len(f.vertices)
}

// collect samples the shape support along direction, tilted toward the tangent axes and
// their diagonals, and keeps the distinct points lying on the extreme plane.
// Flat shapes also keep the points within depth of that plane: a tilted face still penetrates.
func (f *feature) collect(shape actor.Shape, direction mgl32.Vec3, frame basis, depth float32) {
	f.reset()

	radius := max(shape.BoundingRadius(), 1e-3)
	merge := mergeTolerance * radius
	tilts := [9][2]float32{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	best := float32(math32.Inf(-1))
	for _, tilt := range tilts {
		sample := direction.
			Add(frame.tangent.Mul(tilt[0] * samplingTilt)).
			Add(frame.bitangent.Mul(tilt[1] * samplingTilt))
		p := shape.ExtremePointWorld(sample)

		if f.contains(p, merge) {
			continue
		}
		projection := p.Dot(direction)
		best = max(best, projection)
		f.vertices = append(f.vertices, vertex{
			world:  p,
			planar: frame.planar(p),
			height: p.Dot(frame.normal),
		})
	}

	// keep the points on the extreme plane
	tolerance := depthTolerance * radius
	if shape.Type() != actor.ShapeTypeSphere {
		tolerance = max(tolerance, depth)
	}
	f.vertices = slices.DeleteFunc(f.vertices, func(v vertex) bool {
		return best-v.world.Dot(direction) > tolerance
	})

	f.sort()
	f.fitPlane()
}

func (f *feature) contains(p mgl32.Vec3, tolerance float32) bool {
	for _, v := range f.vertices {
		if v.world.Sub(p).LenSqr() <= tolerance*tolerance {
			return true
		}
	}
	return false
}

// sort winds a polygon counter-clockwise around its centroid in the tangent plane
func (f *feature) sort() {
	if len(f.vertices) < 3 {
		return
	}

	centroid := f.centroid()
	for i := range f.vertices {
		d := f.vertices[i].planar.Sub(centroid)
		f.vertices[i].angle = math32.Atan2(d.Y(), d.X())
	}
	slices.SortFunc(f.vertices, func(a, b vertex) int {
		return cmp.Compare(a.angle, b.angle)
	})
}

func (f *feature) centroid() mgl32.Vec2 {
	var sum mgl32.Vec2
	for _, v := range f.vertices {
		sum = sum.Add(v.planar)
	}
	return sum.Mul(1 / float32(len(f.vertices)))
}

// fitPlane computes the height of a polygon feature as a linear function of the tangent plane
// coordinates, from its Newell normal.
func (f *feature) fitPlane() {
	if len(f.vertices) < 3 {
		return
	}

	// Newell normal in the (t, b, n) frame
	var nx, ny, nz float32
	var cx, cy, cz float32
	for i, v := range f.vertices {
		next := f.vertices[(i+1)%len(f.vertices)]
		x0, y0, z0 := v.planar.X(), v.planar.Y(), v.height
		x1, y1, z1 := next.planar.X(), next.planar.Y(), next.height
		nx += (y0 - y1) * (z0 + z1)
		ny += (z0 - z1) * (x0 + x1)
		nz += (x0 - x1) * (y0 + y1)
		cx, cy, cz = cx+x0, cy+y0, cz+z0
	}
	count := float32(len(f.vertices))
	cx, cy, cz = cx/count, cy/count, cz/count

	if math32.Abs(nz) < 1e-9 {
		// polygon seen edge-on: use its mean height
		f.slope = mgl32.Vec2{}
		f.offset = cz
		return
	}

	// nx*x + ny*y + nz*h = nx*cx + ny*cy + nz*cz
	f.slope = mgl32.Vec2{nx / nz, ny / nz}
	f.offset = cz + f.slope.Dot(mgl32.Vec2{cx, cy})
}

// heightAt returns the height along the normal of the feature, at a point of the tangent plane
func (f *feature) heightAt(q mgl32.Vec2) float32 {
	switch {
	case len(f.vertices) == 0:
		return 0
	case len(f.vertices) == 1:
		return f.vertices[0].height
	case len(f.vertices) == 2:
		a, b := f.vertices[0], f.vertices[1]
		ab := b.planar.Sub(a.planar)
		lenSqr := ab.Dot(ab)
		if lenSqr < 1e-12 {
			return (a.height + b.height) / 2
		}
		s := min(max(q.Sub(a.planar).Dot(ab)/lenSqr, 0), 1)
		return a.height + (b.height-a.height)*s
	}

	return f.offset - f.slope.Dot(q)
}

func (f *feature) planarPoints(out []mgl32.Vec2) []mgl32.Vec2 {
	out = out[:0]
	for _, v := range f.vertices {
		out = append(out, v.planar)
	}
	return out
}

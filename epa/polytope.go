package epa

import (
	"sync"

	"github.com/akmonengine/impulse/gjk"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Face is a triangle of the polytope. The vertices are wound counter-clockwise
// seen from outside, so the normal points away from the polytope.
type Face struct {
	Indices  [3]int
	Normal   mgl32.Vec3
	Distance float32 // Distance from the origin to the face plane
}

// Edge is a directed edge of the horizon, kept with the winding of the removed face
type Edge struct {
	A, B int
}

// Polytope is the convex hull expanded by EPA, stored as indexed triangles.
type Polytope struct {
	vertices []gjk.SupportPoint
	faces    []Face
	edges    []Edge
}

const polytopeInitialCapacity = 16

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &Polytope{
			vertices: make([]gjk.SupportPoint, 0, polytopeInitialCapacity),
			faces:    make([]Face, 0, polytopeInitialCapacity*2),
			edges:    make([]Edge, 0, polytopeInitialCapacity),
		}
	},
}

// Reset prepares the polytope for reuse
func (p *Polytope) Reset() {
	p.vertices = p.vertices[:0]
	p.faces = p.faces[:0]
	p.edges = p.edges[:0]
}

func (p *Polytope) addVertex(point gjk.SupportPoint) int {
	p.vertices = append(p.vertices, point)
	return len(p.vertices) - 1
}

// addFace appends the triangle (i, j, k). It reports false for a zero area triangle.
func (p *Polytope) addFace(i, j, k int) bool {
	a := p.vertices[i].P
	b := p.vertices[j].P
	c := p.vertices[k].P

	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < 1e-12 {
		return false
	}
	normal = normal.Mul(1 / length)

	p.faces = append(p.faces, Face{
		Indices:  [3]int{i, j, k},
		Normal:   normal,
		Distance: normal.Dot(a),
	})

	return true
}

// buildTetrahedron creates the 4 faces of the seed, wound outward.
// It reports false if the 4 vertices are coplanar.
func (p *Polytope) buildTetrahedron() bool {
	v := p.vertices
	volume := v[1].P.Sub(v[0].P).Cross(v[2].P.Sub(v[0].P)).Dot(v[3].P.Sub(v[0].P))
	if math32.Abs(volume) < MinSeedVolume {
		return false
	}

	// with a positive volume, v3 is on the side of (v1-v0)x(v2-v0): flip the base
	if volume > 0 {
		v[1], v[2] = v[2], v[1]
	}

	return p.addFace(0, 1, 2) &&
		p.addFace(0, 3, 1) &&
		p.addFace(0, 2, 3) &&
		p.addFace(1, 3, 2)
}

// closestFace returns the index of the face closest to the origin
func (p *Polytope) closestFace() int {
	closest := 0
	for i := 1; i < len(p.faces); i++ {
		if p.faces[i].Distance < p.faces[closest].Distance {
			closest = i
		}
	}

	return closest
}

// addEdge records a horizon edge. An edge shared by two removed faces shows up
// in both windings and cancels out: only the silhouette stays.
func (p *Polytope) addEdge(a, b int) {
	for i, e := range p.edges {
		if e.A == b && e.B == a {
			last := len(p.edges) - 1
			p.edges[i] = p.edges[last]
			p.edges = p.edges[:last]
			return
		}
	}
	p.edges = append(p.edges, Edge{A: a, B: b})
}

// expand inserts the support point: every face that can see it is removed,
// and the hole is closed by connecting the silhouette edges to the new vertex.
// It reports false when no face is visible or the new faces are degenerate.
func (p *Polytope) expand(point gjk.SupportPoint) bool {
	p.edges = p.edges[:0]

	for i := len(p.faces) - 1; i >= 0; i-- {
		face := p.faces[i]
		if face.Normal.Dot(point.P.Sub(p.vertices[face.Indices[0]].P)) <= visibilityTolerance {
			continue
		}

		p.addEdge(face.Indices[0], face.Indices[1])
		p.addEdge(face.Indices[1], face.Indices[2])
		p.addEdge(face.Indices[2], face.Indices[0])

		last := len(p.faces) - 1
		p.faces[i] = p.faces[last]
		p.faces = p.faces[:last]
	}

	if len(p.edges) == 0 {
		return false
	}

	index := p.addVertex(point)
	for _, e := range p.edges {
		if !p.addFace(e.A, e.B, index) {
			return false
		}
	}

	return true
}

// barycentric returns the weights of the projection of point on the triangle (a, b, c)
func barycentric(point, a, b, c mgl32.Vec3) (float32, float32, float32) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := point.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if math32.Abs(denom) < 1e-12 {
		return 1, 0, 0
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom

	return 1 - v - w, v, w
}

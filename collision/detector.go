// Package collision builds the contact manifolds of colliding bodies.
//
// GJK tells whether two shapes overlap, EPA gives the penetration normal and depth.
// The contact points are then generated from the features of both shapes facing each other:
// a single point, an edge, or a polygon. Features are projected on the plane orthogonal
// to the normal and clipped against each other, with Sutherland-Hodgman for polygons and
// Cyrus-Beck for parallel edges.
package collision

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/epa"
	"github.com/akmonengine/impulse/gjk"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// parallelTolerance is the sine below which two edges are considered parallel
const parallelTolerance float32 = 1e-3

// Detector is the narrow phase. It is not safe for concurrent use: each goroutine needs its own.
type Detector struct {
	GJK gjk.GJK
	EPA epa.EPA

	// OnDegenerate is called when EPA cannot build a polytope for an overlapping pair.
	// The pair gets no contact for this step.
	OnDegenerate func(a, b *actor.RigidBody)

	frame    basis
	featureA feature
	featureB feature

	subject    []mgl32.Vec2
	clipped    []mgl32.Vec2
	work       []mgl32.Vec2
	planes     []halfPlane
	candidates []candidate
	reduced    []candidate
}

func NewDetector() *Detector {
	return &Detector{
		subject:    make([]mgl32.Vec2, 0, 16),
		clipped:    make([]mgl32.Vec2, 0, 16),
		work:       make([]mgl32.Vec2, 0, 16),
		planes:     make([]halfPlane, 0, 16),
		candidates: make([]candidate, 0, 16),
		reduced:    make([]candidate, 0, constraint.MaxContacts),
	}
}

// Detect tests a pair of bodies, and commits their manifold into the manager when they collide.
// When only one body is kinematic, it becomes body B of the manifold.
func (d *Detector) Detect(a, b *actor.RigidBody, manager *constraint.ContactManager) (*constraint.ContactManifold, bool) {
	if a == nil || b == nil || a == b || a.Shape() == nil || b.Shape() == nil {
		return nil, false
	}
	if a.IsKinematic() && b.IsKinematic() {
		return nil, false
	}
	if a.IsKinematic() {
		a, b = b, a
	}

	shapeA, shapeB := a.Shape(), b.Shape()
	if !shapeA.WorldBounds().Overlaps(shapeB.WorldBounds()) {
		return nil, false
	}
	if !d.GJK.Run(shapeA, shapeB) {
		return nil, false
	}
	if !d.EPA.Run(&d.GJK.Simplex, shapeA, shapeB) {
		if d.OnDegenerate != nil {
			d.OnDegenerate(a, b)
		}
		return nil, false
	}

	result := d.EPA.Result
	manifold := manager.NewManifold(a, b)
	manifold.SetBasis(result.Normal)
	manifold.Depth = result.Depth
	manifold.GJKSteps = d.GJK.Stats.Steps
	manifold.EPAIterations = result.Iterations

	d.frame = basis{tangent: manifold.Tangent, bitangent: manifold.Bitangent, normal: manifold.Normal}
	d.featureA.collect(shapeA, manifold.Normal, d.frame, result.Depth)
	d.featureB.collect(shapeB, manifold.Normal.Mul(-1), d.frame, result.Depth)

	d.candidates = d.candidates[:0]
	tolerance := depthTolerance * min(shapeA.BoundingRadius(), shapeB.BoundingRadius())

	countA, countB := d.featureA.count(), d.featureB.count()
	switch {
	case countA <= 1 || countB <= 1:
		manifold.Type = constraint.ManifoldPoint
	case countA == 2 && countB == 2:
		manifold.Type = constraint.ManifoldEdgeEdge
		d.edgeEdge(tolerance)
	case countA == 2 || countB == 2:
		manifold.Type = constraint.ManifoldEdgeFace
		d.clipFeatures(tolerance)
	default:
		manifold.Type = constraint.ManifoldFaceFace
		d.clipFeatures(tolerance)
	}

	if len(d.candidates) == 0 {
		// point contact, or clipping left nothing: use the EPA witnesses
		d.candidates = append(d.candidates, candidate{
			planar: d.frame.planar(result.PointA.Add(result.PointB).Mul(0.5)),
			depth:  result.Depth,
			pointA: result.PointA,
			pointB: result.PointB,
		})
		manifold.Type = constraint.ManifoldPoint
	}

	d.reduced = reduce(d.candidates, d.reduced)
	for _, c := range d.reduced {
		contact := manager.NewContact()
		contact.PointA = c.pointA
		contact.PointB = c.pointB
		contact.Depth = c.depth
		manifold.AddContact(contact)
	}

	if !manager.Commit(manifold) {
		return nil, false
	}

	return manifold, true
}

// clipFeatures clips the feature of A against the polygon of B, or the other way around
// when B holds the edge. Both are polygons or an edge and a polygon.
func (d *Detector) clipFeatures(tolerance float32) {
	subject, clipper := &d.featureA, &d.featureB
	if clipper.count() < 3 {
		subject, clipper = clipper, subject
	}

	d.subject = subject.planarPoints(d.subject)
	d.work = clipper.planarPoints(d.work)
	d.planes = edgePlanes(d.work, d.planes)
	d.clipped, d.work = clipPolygon(d.subject, d.planes, d.clipped, d.work)

	for _, q := range d.clipped {
		d.addCandidate(q, tolerance)
	}
}

// edgeEdge builds two contacts for parallel edges, clipped to their overlap,
// or one contact at the closest points of crossing edges.
func (d *Detector) edgeEdge(tolerance float32) {
	a0, a1 := d.featureA.vertices[0], d.featureA.vertices[1]
	b0, b1 := d.featureB.vertices[0], d.featureB.vertices[1]

	dirA := a1.planar.Sub(a0.planar)
	dirB := b1.planar.Sub(b0.planar)
	lenA, lenB := dirA.Len(), dirB.Len()

	if lenA > 1e-6 && lenB > 1e-6 {
		sine := math32.Abs(dirA.X()*dirB.Y()-dirA.Y()*dirB.X()) / (lenA * lenB)
		if sine < parallelTolerance {
			// slab between the endpoints of B, along its direction
			axis := dirB.Mul(1 / lenB)
			d.planes = append(d.planes[:0],
				halfPlane{Point: b0.planar, Normal: axis},
				halfPlane{Point: b1.planar, Normal: axis.Mul(-1)},
			)
			if t0, t1, ok := cyrusBeck(a0.planar, a1.planar, d.planes); ok {
				d.addCandidate(a0.planar.Add(dirA.Mul(t0)), tolerance)
				if t1-t0 > 1e-6 {
					d.addCandidate(a0.planar.Add(dirA.Mul(t1)), tolerance)
				}
			}
			return
		}
	}

	pointA, pointB := closestSegmentPoints(a0.world, a1.world, b0.world, b1.world)
	depth := pointA.Sub(pointB).Dot(d.frame.normal)
	if depth < -tolerance {
		return
	}
	d.candidates = append(d.candidates, candidate{
		planar: d.frame.planar(pointA.Add(pointB).Mul(0.5)),
		depth:  max(depth, 0),
		pointA: pointA,
		pointB: pointB,
	})
}

// addCandidate lifts a point of the tangent plane back on both features.
// Points where the features are separated by more than tolerance are dropped.
func (d *Detector) addCandidate(q mgl32.Vec2, tolerance float32) {
	heightA := d.featureA.heightAt(q)
	heightB := d.featureB.heightAt(q)
	depth := heightA - heightB
	if depth < -tolerance {
		return
	}

	d.candidates = append(d.candidates, candidate{
		planar: q,
		depth:  max(depth, 0),
		pointA: d.frame.world(q, heightA),
		pointB: d.frame.world(q, heightB),
	})
}

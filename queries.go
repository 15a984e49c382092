package impulse

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
)

// AllGroups matches every body in the queries
const AllGroups uint32 = 0xFFFFFFFF

// Hit is the closest body found by a raycast or a sweep test
type Hit struct {
	Body *actor.RigidBody
	// Point is on the surface of Body
	Point mgl32.Vec3
	// Normal is the surface normal of Body at Point, facing the query
	Normal   mgl32.Vec3
	Distance float32
	// Fraction of the ray length or of the sweep translation
	Fraction float32
}

// Penetration is a body overlapping the shape of a penetration test
type Penetration struct {
	Body *actor.RigidBody
	// Normal points from the tested shape toward Body.
	// Moving the shape by -Normal*Depth separates them.
	Normal mgl32.Vec3
	Depth  float32
	// PointA is on the tested shape, PointB on Body
	PointA mgl32.Vec3
	PointB mgl32.Vec3
}

// collectQueryBodies copies the registered bodies whose group matches the mask
func (p *Physics) collectQueryBodies(mask uint32) []*actor.RigidBody {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queryBodies = p.queryBodies[:0]
	for _, bodies := range [2][]*actor.RigidBody{p.dynamicBodies, p.kinematicBodies} {
		for _, body := range bodies {
			if body.Shape() != nil && body.Group&mask != 0 {
				p.queryBodies = append(p.queryBodies, body)
			}
		}
	}

	return p.queryBodies
}

// Raycast returns the closest body hit by the ray from origin along direction, up to maxDistance.
// Only the bodies whose group matches mask are tested. A ray starting inside a body hits it at 0.
func (p *Physics) Raycast(origin, direction mgl32.Vec3, maxDistance float32, mask uint32) (Hit, bool) {
	dirLen := direction.Len()
	if dirLen < 1e-8 || maxDistance <= 0 {
		return Hit{}, false
	}
	direction = direction.Mul(1 / dirLen)

	closest := Hit{Distance: maxDistance}
	found := false
	for _, body := range p.collectQueryBodies(mask) {
		entry, ok := body.Shape().WorldBounds().IntersectRay(origin, direction, closest.Distance)
		if !ok || (found && entry > closest.Distance) {
			continue
		}

		hit, ok := p.rayCaster.Cast(body.Shape(), origin, direction, maxDistance)
		if !ok || (found && hit.Distance >= closest.Distance) {
			continue
		}

		closest = Hit{
			Body:     body,
			Point:    hit.Point,
			Normal:   hit.Normal,
			Distance: hit.Distance,
			Fraction: hit.Fraction,
		}
		found = true
	}

	return closest, found
}

// placeShape moves the cache of shape to transform for a query. The returned function puts
// the shape of a registered body back at the body transform; a free shape stays at transform.
func (p *Physics) placeShape(shape actor.Shape, transform actor.Transform) func() {
	shape.UpdateCacheData(transform)

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, bodies := range [2][]*actor.RigidBody{p.dynamicBodies, p.kinematicBodies} {
		for _, body := range bodies {
			if body.Shape() == shape {
				return func() { shape.UpdateCacheData(body.Transform()) }
			}
		}
	}

	return func() {}
}

// SweepTest moves shape from transform along translation, and returns the first body it touches.
// The bodies owning shape are skipped, so a registered body can be swept with its own shape
// from any transform; its cache is restored before returning.
func (p *Physics) SweepTest(shape actor.Shape, transform actor.Transform, translation mgl32.Vec3, mask uint32) (Hit, bool) {
	if shape == nil {
		return Hit{}, false
	}
	defer p.placeShape(shape, transform)()

	start := shape.WorldBounds()
	swept := start.Union(start.Translated(translation))
	length := translation.Len()

	var closest Hit
	found := false
	for _, body := range p.collectQueryBodies(mask) {
		if body.Shape() == shape || !swept.Overlaps(body.Shape().WorldBounds()) {
			continue
		}

		hit, ok := p.rayCaster.Sweep(shape, body.Shape(), translation)
		if !ok || (found && hit.Fraction >= closest.Fraction) {
			continue
		}

		closest = Hit{
			Body:     body,
			Point:    hit.Point,
			Normal:   hit.Normal,
			Distance: hit.Fraction * length,
			Fraction: hit.Fraction,
		}
		found = true
	}

	return closest, found
}

// PenetrationTest places shape at transform, and appends to out every body it overlaps.
// Bodies owning shape are skipped, and their cache is restored before returning.
func (p *Physics) PenetrationTest(shape actor.Shape, transform actor.Transform, mask uint32, out []Penetration) []Penetration {
	if shape == nil {
		return out
	}
	defer p.placeShape(shape, transform)()
	bounds := shape.WorldBounds()

	for _, body := range p.collectQueryBodies(mask) {
		if body.Shape() == shape || !bounds.Overlaps(body.Shape().WorldBounds()) {
			continue
		}
		if !p.queryGJK.Run(shape, body.Shape()) {
			continue
		}
		if !p.queryEPA.Run(&p.queryGJK.Simplex, shape, body.Shape()) {
			continue
		}

		result := p.queryEPA.Result
		out = append(out, Penetration{
			Body:   body,
			Normal: result.Normal,
			Depth:  result.Depth,
			PointA: result.PointA,
			PointB: result.PointB,
		})
	}

	return out
}

package actor

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeBox ShapeType = iota
	ShapeTypeSphere
	ShapeTypeRectangle
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeBox:
		return "box"
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeRectangle:
		return "rectangle"
	}
	return "unknown"
}

// Shape is the interface that all convex collision shapes implement.
//
// A shape lives in the space of its rigid body (LocalTransform) and caches its world
// transform and world bounds. The cache is only valid after UpdateCacheData has been
// called with the current transform of the owning body.
type Shape interface {
	Type() ShapeType

	// ExtremePointWorld returns the point of the shape furthest along direction, in world space
	ExtremePointWorld(direction mgl32.Vec3) mgl32.Vec3
	CalculateInertiaTensor(mass float32) mgl32.Mat3
	Volume() float32
	// LocalBounds are expressed in the shape space
	LocalBounds() AABB
	// BoundingRadius is the radius of the sphere enclosing the shape around its origin
	BoundingRadius() float32

	UpdateCacheData(bodyTransform Transform)
	WorldBounds() AABB
	WorldTransform() Transform
	LocalTransform() Transform
	SetLocalTransform(transform Transform)

	Material() Material
	SetMaterial(material Material)
	StaticFriction() float32
	DynamicFriction() float32
	Restitution() float32
}

// ShapeBase carries the state shared by every shape
type ShapeBase struct {
	local       Transform
	world       Transform
	worldBounds AABB
	material    Material
}

func newShapeBase() ShapeBase {
	return ShapeBase{
		local:    NewTransform(),
		world:    NewTransform(),
		material: DefaultMaterial(),
	}
}

func (s *ShapeBase) WorldBounds() AABB {
	return s.worldBounds
}

func (s *ShapeBase) WorldTransform() Transform {
	return s.world
}

func (s *ShapeBase) LocalTransform() Transform {
	return s.local
}

// SetLocalTransform sets the offset of the shape in its rigid body space.
// The world cache is stale until the next UpdateCacheData.
func (s *ShapeBase) SetLocalTransform(transform Transform) {
	s.local = transform.Normalized()
}

func (s *ShapeBase) Material() Material {
	return s.material
}

func (s *ShapeBase) SetMaterial(material Material) {
	s.material = material
}

func (s *ShapeBase) StaticFriction() float32 {
	return s.material.StaticFriction
}

func (s *ShapeBase) DynamicFriction() float32 {
	return s.material.DynamicFriction
}

func (s *ShapeBase) Restitution() float32 {
	return s.material.Restitution
}

func (s *ShapeBase) updateCache(bodyTransform Transform, localBounds AABB) {
	s.world = bodyTransform.Normalized().Compose(s.local.Normalized())
	s.worldBounds = TransformAABB(localBounds, s.world)
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	ShapeBase
	HalfExtents mgl32.Vec3
}

func NewBox(halfExtents mgl32.Vec3) *Box {
	return &Box{ShapeBase: newShapeBase(), HalfExtents: halfExtents}
}

func (b *Box) Type() ShapeType {
	return ShapeTypeBox
}

// Support returns the local extreme point of the box along a local direction
func (b *Box) Support(direction mgl32.Vec3) mgl32.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl32.Vec3{hx, hy, hz}
}

func (b *Box) ExtremePointWorld(direction mgl32.Vec3) mgl32.Vec3 {
	return b.world.PointToWorld(b.Support(b.world.DirectionToLocal(direction)))
}

func (b *Box) CalculateInertiaTensor(mass float32) mgl32.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0

	return mgl32.Diag3(mgl32.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}

func (b *Box) Volume() float32 {
	return 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()
}

func (b *Box) LocalBounds() AABB {
	return AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
}

func (b *Box) BoundingRadius() float32 {
	return b.HalfExtents.Len()
}

func (b *Box) UpdateCacheData(bodyTransform Transform) {
	b.updateCache(bodyTransform, b.LocalBounds())
}

// Sphere represents a spherical collision shape
type Sphere struct {
	ShapeBase
	Radius float32
}

func NewSphere(radius float32) *Sphere {
	return &Sphere{ShapeBase: newShapeBase(), Radius: radius}
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

func (s *Sphere) Support(direction mgl32.Vec3) mgl32.Vec3 {
	lenSqr := direction.LenSqr()
	if lenSqr < 1e-12 {
		return mgl32.Vec3{s.Radius, 0, 0}
	}

	return direction.Mul(s.Radius / math32.Sqrt(lenSqr))
}

// ExtremePointWorld skips the rotation, a sphere is invariant to it
func (s *Sphere) ExtremePointWorld(direction mgl32.Vec3) mgl32.Vec3 {
	return s.world.Position.Add(s.Support(direction))
}

func (s *Sphere) CalculateInertiaTensor(mass float32) mgl32.Mat3 {
	// I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl32.Diag3(mgl32.Vec3{i, i, i})
}

func (s *Sphere) Volume() float32 {
	return (4.0 / 3.0) * math32.Pi * s.Radius * s.Radius * s.Radius
}

func (s *Sphere) LocalBounds() AABB {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: r.Mul(-1), Max: r}
}

func (s *Sphere) BoundingRadius() float32 {
	return s.Radius
}

func (s *Sphere) UpdateCacheData(bodyTransform Transform) {
	s.world = bodyTransform.Normalized().Compose(s.local.Normalized())
	// Sphere AABB is not affected by rotation, only by position
	s.worldBounds = s.LocalBounds().Translated(s.world.Position)
}

// Rectangle is a flat quad lying in the local XZ plane, facing +Y.
// It has no thickness and is mostly used for kinematic floors and walls.
type Rectangle struct {
	ShapeBase
	HalfExtents mgl32.Vec2 // half size along local X and local Z
}

func NewRectangle(halfExtents mgl32.Vec2) *Rectangle {
	return &Rectangle{ShapeBase: newShapeBase(), HalfExtents: halfExtents}
}

func (r *Rectangle) Type() ShapeType {
	return ShapeTypeRectangle
}

func (r *Rectangle) Support(direction mgl32.Vec3) mgl32.Vec3 {
	hx, hz := r.HalfExtents.X(), r.HalfExtents.Y()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl32.Vec3{hx, 0, hz}
}

func (r *Rectangle) ExtremePointWorld(direction mgl32.Vec3) mgl32.Vec3 {
	return r.world.PointToWorld(r.Support(r.world.DirectionToLocal(direction)))
}

// CalculateInertiaTensor uses the thin plate formula
func (r *Rectangle) CalculateInertiaTensor(mass float32) mgl32.Mat3 {
	x := r.HalfExtents.X() * 2
	z := r.HalfExtents.Y() * 2
	factor := mass / 12.0

	return mgl32.Diag3(mgl32.Vec3{
		factor * z * z,
		factor * (x*x + z*z),
		factor * x * x,
	})
}

func (r *Rectangle) Volume() float32 {
	return 0
}

func (r *Rectangle) LocalBounds() AABB {
	return AABB{
		Min: mgl32.Vec3{-r.HalfExtents.X(), 0, -r.HalfExtents.Y()},
		Max: mgl32.Vec3{r.HalfExtents.X(), 0, r.HalfExtents.Y()},
	}
}

func (r *Rectangle) BoundingRadius() float32 {
	return r.HalfExtents.Len()
}

func (r *Rectangle) UpdateCacheData(bodyTransform Transform) {
	r.updateCache(bodyTransform, r.LocalBounds())
}

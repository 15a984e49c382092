package actor

import "github.com/go-gl/mathgl/mgl32"

// Transform represents a position and an orientation in 3D space
type Transform struct {
	Position        mgl32.Vec3
	Rotation        mgl32.Quat
	InverseRotation mgl32.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl32.Vec3{0, 0, 0},
		Rotation:        mgl32.QuatIdent(),
		InverseRotation: mgl32.QuatIdent(),
	}
}

// NewTransformAt creates a transform from a position and a rotation.
// The rotation is normalized, a zero quaternion is read as the identity.
func NewTransformAt(position mgl32.Vec3, rotation mgl32.Quat) Transform {
	return Transform{Position: position, Rotation: rotation}.Normalized()
}

// Normalized returns the transform with a unit rotation and a matching inverse rotation.
func (t Transform) Normalized() Transform {
	if t.Rotation.Dot(t.Rotation) < 1e-12 {
		t.Rotation = mgl32.QuatIdent()
	} else {
		t.Rotation = t.Rotation.Normalize()
	}
	t.InverseRotation = t.Rotation.Conjugate()

	return t
}

// PointToWorld transforms a point from the local space of the transform into its parent space
func (t Transform) PointToWorld(local mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// PointToLocal is the inverse of PointToWorld
func (t Transform) PointToLocal(world mgl32.Vec3) mgl32.Vec3 {
	return t.InverseRotation.Rotate(world.Sub(t.Position))
}

// DirectionToLocal rotates a direction into the local space of the transform
func (t Transform) DirectionToLocal(world mgl32.Vec3) mgl32.Vec3 {
	return t.InverseRotation.Rotate(world)
}

// Compose returns the transform of a child expressed in this transform's space.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.PointToWorld(child.Position),
		Rotation: t.Rotation.Mul(child.Rotation),
	}.Normalized()
}

// Matrix returns the 4x4 world matrix, as consumed by the renderer
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).Mul4(t.Rotation.Mat4())
}

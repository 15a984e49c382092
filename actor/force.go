package actor

import "github.com/go-gl/mathgl/mgl32"

// GlobalForce is a force rule applied to every dynamic body at each fixed step.
// Implementations are registered by pointer so they can be removed again.
type GlobalForce interface {
	Apply(body *RigidBody)
}

// Gravity applies a uniform acceleration (m/s²)
type Gravity struct {
	Acceleration mgl32.Vec3
}

func NewGravity(acceleration mgl32.Vec3) *Gravity {
	return &Gravity{Acceleration: acceleration}
}

// Apply adds m*g, without waking the body
func (g *Gravity) Apply(body *RigidBody) {
	if body.IsKinematic() || body.IsSleeping() {
		return
	}
	body.AddForce(g.Acceleration.Mul(body.Mass()), false)
}

// Wind pushes the bodies with a constant force, scaled by their exposed bounds area
type Wind struct {
	Force mgl32.Vec3 // N per square meter
}

func (w *Wind) Apply(body *RigidBody) {
	if body.IsKinematic() || body.IsSleeping() || body.Shape() == nil {
		return
	}

	extents := body.Shape().WorldBounds().Extents()
	area := 4 * (extents.X()*extents.Y() + extents.Y()*extents.Z() + extents.X()*extents.Z()) / 3
	body.AddForce(w.Force.Mul(area), false)
}

package constraint

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Solver axes of a contact
const (
	AxisTangent = iota
	AxisBitangent
	AxisNormal
)

// Jacobian is the velocity coupling of one body along an axis: J·v = Linear·v + Angular·ω
type Jacobian struct {
	Linear  mgl32.Vec3
	Angular mgl32.Vec3
}

// ClipFunc bounds the accumulated impulse of an axis after each iteration
type ClipFunc func(lambda float32, contact *Contact) float32

// SolverAxis is the velocity constraint of a contact along one axis
type SolverAxis struct {
	Jacobians     [2]Jacobian // body A, body B
	EffectiveMass float32     // 1 / (J·M⁻¹·Jᵗ)
	Lambda        float32     // accumulated impulse
	Bias          float32     // target constraint velocity
	Clip          ClipFunc
}

// Contact is a single contact point between two shapes
type Contact struct {
	PointA mgl32.Vec3 // world point on A
	PointB mgl32.Vec3 // world point on B
	Depth  float32

	Axes [3]SolverAxis

	// Friction is the coefficient bounding the tangent impulses
	Friction float32
}

// Point is the world point the impulses are applied at
func (c *Contact) Point() mgl32.Vec3 {
	return c.PointA.Add(c.PointB).Mul(0.5)
}

// NormalImpulse is the accumulated impulse along the contact normal
func (c *Contact) NormalImpulse() float32 {
	return c.Axes[AxisNormal].Lambda
}

func (c *Contact) reset() {
	*c = Contact{}
}

// ClipNormal keeps the normal impulse repulsive
func ClipNormal(lambda float32, _ *Contact) float32 {
	return max(lambda, 0)
}

// ClipFriction keeps the friction impulse inside the Coulomb cone: |λt| ≤ μ·λn
func ClipFriction(lambda float32, contact *Contact) float32 {
	limit := contact.Friction * contact.Axes[AxisNormal].Lambda

	return min(max(lambda, -limit), limit)
}

package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultVelocityIterations = 8
	// DefaultRestitutionThreshold is the approach speed (m/s) under which contacts don't bounce
	DefaultRestitutionThreshold float32 = 1.0
)

// VelocitySolver resolves the contact velocity constraints with sequential impulses.
//
// Each contact carries three axes (tangent, bitangent, normal). An iteration applies, for each
// axis, the impulse driving the constraint velocity toward its bias, the accumulated impulse
// being clipped after each update.
type VelocitySolver struct {
	Iterations           int
	RestitutionThreshold float32
}

func NewVelocitySolver() *VelocitySolver {
	return &VelocitySolver{
		Iterations:           DefaultVelocityIterations,
		RestitutionThreshold: DefaultRestitutionThreshold,
	}
}

// bodyState caches the mass properties of both bodies during a manifold solve
type bodyState struct {
	body           *actor.RigidBody
	inverseMass    float32
	inverseInertia mgl32.Mat3
	position       mgl32.Vec3
	movable        bool
}

func newBodyState(body *actor.RigidBody) bodyState {
	return bodyState{
		body:           body,
		inverseMass:    body.InverseMass(),
		inverseInertia: body.InverseInertiaWorld(),
		position:       body.Location(),
		movable:        !body.IsKinematic(),
	}
}

func (s *bodyState) pointVelocity(r mgl32.Vec3) mgl32.Vec3 {
	linear, angular := s.body.Velocities()
	return linear.Add(angular.Cross(r))
}

func (s *bodyState) apply(jacobian Jacobian, lambda float32) {
	if !s.movable {
		return
	}
	s.body.ApplyVelocityDelta(
		jacobian.Linear.Mul(s.inverseMass*lambda),
		s.inverseInertia.Mul3x1(jacobian.Angular).Mul(lambda),
	)
}

// Solve prepares the axes of every contact, then iterates over all the manifolds
func (s *VelocitySolver) Solve(manifolds []*ContactManifold, dt float32) {
	for _, manifold := range manifolds {
		s.prepare(manifold)
	}

	for i := 0; i < s.Iterations; i++ {
		for _, manifold := range manifolds {
			s.solveManifold(manifold)
		}
	}

	for _, manifold := range manifolds {
		clampSmallVelocities(manifold.BodyA)
		if !manifold.IsKinematic() {
			clampSmallVelocities(manifold.BodyB)
		}
	}
}

// prepare computes the Jacobians, effective masses, biases and friction of each contact
func (s *VelocitySolver) prepare(manifold *ContactManifold) {
	a := newBodyState(manifold.BodyA)
	b := newBodyState(manifold.BodyB)

	shapeA, shapeB := a.body.Shape(), b.body.Shape()
	restitution := ComputeRestitution(shapeA, shapeB)
	staticFriction := ComputeStaticFriction(shapeA, shapeB)
	dynamicFriction := ComputeDynamicFriction(shapeA, shapeB)

	axes := [3]mgl32.Vec3{manifold.Tangent, manifold.Bitangent, manifold.Normal}
	clips := [3]ClipFunc{ClipFriction, ClipFriction, ClipNormal}

	for _, contact := range manifold.Contacts() {
		point := contact.Point()
		rA := point.Sub(a.position)
		rB := point.Sub(b.position)

		relative := b.pointVelocity(rB).Sub(a.pointVelocity(rA))
		normalSpeed := relative.Dot(manifold.Normal)
		tangentSpeed := relative.Sub(manifold.Normal.Mul(normalSpeed)).Len()

		contact.Friction = dynamicFriction
		if tangentSpeed < s.RestitutionThreshold {
			contact.Friction = staticFriction
		}

		for i, direction := range axes {
			axis := &contact.Axes[i]
			axis.Jacobians[0] = Jacobian{Linear: direction.Mul(-1), Angular: rA.Cross(direction).Mul(-1)}
			axis.Jacobians[1] = Jacobian{Linear: direction, Angular: rB.Cross(direction)}
			axis.Lambda = 0
			axis.Bias = 0
			axis.Clip = clips[i]

			k := a.inverseMass + b.inverseMass +
				a.inverseInertia.Mul3x1(axis.Jacobians[0].Angular).Dot(axis.Jacobians[0].Angular) +
				b.inverseInertia.Mul3x1(axis.Jacobians[1].Angular).Dot(axis.Jacobians[1].Angular)
			axis.EffectiveMass = 0
			if k > 1e-10 {
				axis.EffectiveMass = 1 / k
			}
		}

		// bounce only when approaching fast enough
		if normalSpeed < -s.RestitutionThreshold {
			contact.Axes[AxisNormal].Bias = -restitution * normalSpeed
		}
	}
}

func (s *VelocitySolver) solveManifold(manifold *ContactManifold) {
	a := newBodyState(manifold.BodyA)
	b := newBodyState(manifold.BodyB)

	// Friction first: non-penetration is more important, it has the last word
	for _, contact := range manifold.Contacts() {
		s.solveAxis(contact, AxisTangent, &a, &b)
		s.solveAxis(contact, AxisBitangent, &a, &b)
	}
	for _, contact := range manifold.Contacts() {
		s.solveAxis(contact, AxisNormal, &a, &b)
	}
}

func (s *VelocitySolver) solveAxis(contact *Contact, index int, a, b *bodyState) {
	axis := &contact.Axes[index]
	if axis.EffectiveMass == 0 {
		return
	}

	linearA, angularA := a.body.Velocities()
	linearB, angularB := b.body.Velocities()

	velocity := axis.Jacobians[0].Linear.Dot(linearA) + axis.Jacobians[0].Angular.Dot(angularA) +
		axis.Jacobians[1].Linear.Dot(linearB) + axis.Jacobians[1].Angular.Dot(angularB)

	lambda := axis.EffectiveMass * (axis.Bias - velocity)

	accumulated := axis.Lambda + lambda
	if axis.Clip != nil {
		accumulated = axis.Clip(accumulated, contact)
	}
	lambda = accumulated - axis.Lambda
	axis.Lambda = accumulated

	a.apply(axis.Jacobians[0], lambda)
	b.apply(axis.Jacobians[1], lambda)
}

package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/chewxy/math32"
)

// Solver is a pass over the contact manifolds of one step
type Solver interface {
	Solve(manifolds []*ContactManifold, dt float32)
}

func ComputeRestitution(a, b actor.Shape) float32 {
	// Average (more realistic than the maximum)
	return (a.Restitution() + b.Restitution()) / 2.0
}

func ComputeStaticFriction(a, b actor.Shape) float32 {
	// geometric mean
	return math32.Sqrt(a.StaticFriction() * b.StaticFriction())
}

func ComputeDynamicFriction(a, b actor.Shape) float32 {
	return math32.Sqrt(a.DynamicFriction() * b.DynamicFriction())
}

func clampSmallVelocities(rb *actor.RigidBody) {
	const velocityThreshold = 1e-5

	linear, angular := rb.Velocities()
	if linear.Len() >= velocityThreshold && angular.Len() >= velocityThreshold {
		return
	}
	if linear.Len() < velocityThreshold {
		linear = linear.Mul(0)
	}
	if angular.Len() < velocityThreshold {
		angular = angular.Mul(0)
	}
	rb.SetVelocities(linear, angular, false)
}

package actor

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeKinematic bodies are moved only by their velocities, set by the gameplay code.
	// They have infinite mass and are never pushed by contacts (e.g., ground, platforms)
	BodyTypeKinematic
)

// DefaultGroup is the query group of a new body
const DefaultGroup uint32 = 1

// RigidBody represents a rigid body in the physics simulation.
//
// Every mutator takes a wake flag: a sleeping body is woken up by the mutation unless
// wake is false.
type RigidBody struct {
	transform Transform

	linearVelocity  mgl32.Vec3 // m/s
	angularVelocity mgl32.Vec3 // rad/s

	mass        float32
	inverseMass float32

	inertiaLocal        mgl32.Mat3
	inverseInertiaLocal mgl32.Mat3
	inverseInertiaWorld mgl32.Mat3
	inertiaDirty        bool

	accumulatedForce  mgl32.Vec3
	accumulatedTorque mgl32.Vec3

	LinearDamping  float32 // 0.0 - 1.0, typical: 0.01
	AngularDamping float32 // 0.0 - 1.0, typical: 0.05

	// Group is matched against the mask of the physics queries
	Group uint32

	bodyType   BodyType
	sleeping   bool
	sleepTimer float32

	shape   Shape
	context any
}

// NewRigidBody creates a new rigid body.
// density is used to compute the mass from the shape volume; a shape without volume gets
// a mass equal to the density. A zero density takes the density of the shape material,
// any other value is stored into it.
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, density float32) *RigidBody {
	rb := &RigidBody{
		transform:    transform.Normalized(),
		bodyType:     bodyType,
		shape:        shape,
		Group:        DefaultGroup,
		inertiaDirty: true,
	}

	rb.setMass(massOf(shape, density))
	rb.updateShapeCache()

	return rb
}

func massOf(shape Shape, density float32) float32 {
	if shape == nil {
		return density
	}

	material := shape.Material()
	if density <= 0 {
		density = material.Density
	} else {
		material.Density = density
		shape.SetMaterial(material)
	}

	if shape.Volume() > 0 {
		return shape.Volume() * density
	}
	return density
}

// SetDensity recomputes the mass from the shape volume and density, see NewRigidBody
func (rb *RigidBody) SetDensity(density float32, wake bool) {
	rb.setMass(massOf(rb.shape, density))
	rb.wakeIf(wake)
}

func (rb *RigidBody) Transform() Transform {
	return rb.transform
}

func (rb *RigidBody) Location() mgl32.Vec3 {
	return rb.transform.Position
}

func (rb *RigidBody) Rotation() mgl32.Quat {
	return rb.transform.Rotation
}

// Velocities returns the linear and the angular velocity
func (rb *RigidBody) Velocities() (mgl32.Vec3, mgl32.Vec3) {
	return rb.linearVelocity, rb.angularVelocity
}

func (rb *RigidBody) LinearVelocity() mgl32.Vec3 {
	return rb.linearVelocity
}

func (rb *RigidBody) AngularVelocity() mgl32.Vec3 {
	return rb.angularVelocity
}

func (rb *RigidBody) Mass() float32 {
	return rb.mass
}

// InverseMass is zero for kinematic bodies
func (rb *RigidBody) InverseMass() float32 {
	if rb.bodyType == BodyTypeKinematic {
		return 0
	}
	return rb.inverseMass
}

func (rb *RigidBody) BodyType() BodyType {
	return rb.bodyType
}

func (rb *RigidBody) IsKinematic() bool {
	return rb.bodyType == BodyTypeKinematic
}

func (rb *RigidBody) IsSleeping() bool {
	return rb.sleeping
}

// IsActive reports whether the body can start a contact: an awake dynamic body or a moving kinematic one
func (rb *RigidBody) IsActive() bool {
	if rb.bodyType == BodyTypeKinematic {
		return rb.linearVelocity.LenSqr() > 0 || rb.angularVelocity.LenSqr() > 0
	}
	return !rb.sleeping
}

func (rb *RigidBody) SleepTimer() float32 {
	return rb.sleepTimer
}

func (rb *RigidBody) Shape() Shape {
	return rb.shape
}

// Context returns the opaque value attached by the gameplay code
func (rb *RigidBody) Context() any {
	return rb.context
}

func (rb *RigidBody) SetContext(context any) {
	rb.context = context
}

func (rb *RigidBody) SetLocation(location mgl32.Vec3, wake bool) {
	rb.transform.Position = location
	rb.updateShapeCache()
	rb.wakeIf(wake)
}

func (rb *RigidBody) SetRotation(rotation mgl32.Quat, wake bool) {
	rb.transform.Rotation = rotation
	rb.transform = rb.transform.Normalized()
	rb.inertiaDirty = true
	rb.updateShapeCache()
	rb.wakeIf(wake)
}

func (rb *RigidBody) SetVelocities(linear, angular mgl32.Vec3, wake bool) {
	rb.linearVelocity = linear
	rb.angularVelocity = angular
	rb.wakeIf(wake)
}

// AddForce accumulates a force (N) at the center of mass until the next integration
func (rb *RigidBody) AddForce(force mgl32.Vec3, wake bool) {
	if rb.bodyType == BodyTypeKinematic {
		return
	}
	rb.wakeIf(wake)
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// AddForceAtPoint accumulates a force applied at a world point, producing a torque
func (rb *RigidBody) AddForceAtPoint(force, point mgl32.Vec3, wake bool) {
	if rb.bodyType == BodyTypeKinematic {
		return
	}
	rb.wakeIf(wake)
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
	rb.accumulatedTorque = rb.accumulatedTorque.Add(point.Sub(rb.transform.Position).Cross(force))
}

// AddTorque accumulates a torque (N⋅m)
func (rb *RigidBody) AddTorque(torque mgl32.Vec3, wake bool) {
	if rb.bodyType == BodyTypeKinematic {
		return
	}
	rb.wakeIf(wake)
	rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
}

// AddImpulse changes the velocities immediately, as if impulse (N⋅s) was applied at a world point
func (rb *RigidBody) AddImpulse(impulse, point mgl32.Vec3, wake bool) {
	if rb.bodyType == BodyTypeKinematic {
		return
	}
	rb.wakeIf(wake)
	rb.linearVelocity = rb.linearVelocity.Add(impulse.Mul(rb.inverseMass))
	angularImpulse := point.Sub(rb.transform.Position).Cross(impulse)
	rb.angularVelocity = rb.angularVelocity.Add(rb.InverseInertiaWorld().Mul3x1(angularImpulse))
}

// ApplyVelocityDelta is used by the solvers, it never wakes the body
func (rb *RigidBody) ApplyVelocityDelta(linear, angular mgl32.Vec3) {
	rb.linearVelocity = rb.linearVelocity.Add(linear)
	rb.angularVelocity = rb.angularVelocity.Add(angular)
}

// Translate moves the body without touching its velocities, used by the location solver
func (rb *RigidBody) Translate(offset mgl32.Vec3) {
	rb.transform.Position = rb.transform.Position.Add(offset)
	rb.updateShapeCache()
}

// EnableKinematic turns the body into an immovable one; its velocities are kept
func (rb *RigidBody) EnableKinematic() {
	rb.bodyType = BodyTypeKinematic
	rb.sleeping = false
	rb.sleepTimer = 0
	rb.ClearForces()
}

func (rb *RigidBody) DisableKinematic() {
	rb.bodyType = BodyTypeDynamic
	rb.WakeUp()
}

// SetMass sets the mass and recomputes the inertia tensor from the shape
func (rb *RigidBody) SetMass(mass float32, wake bool) {
	rb.setMass(mass)
	rb.wakeIf(wake)
}

// SetShape replaces the collision shape, recomputing inertia and bounds
func (rb *RigidBody) SetShape(shape Shape, wake bool) {
	rb.shape = shape
	rb.setMass(rb.mass)
	rb.updateShapeCache()
	rb.wakeIf(wake)
}

func (rb *RigidBody) setMass(mass float32) {
	rb.mass = mass
	rb.inverseMass = 0
	if mass > 0 {
		rb.inverseMass = 1.0 / mass
	}

	rb.inertiaLocal = mgl32.Mat3{}
	if rb.shape != nil {
		rb.inertiaLocal = rb.shape.CalculateInertiaTensor(mass)
	}
	// Inv returns the zero matrix for singular tensors (flat shapes, zero mass)
	rb.inverseInertiaLocal = rb.inertiaLocal.Inv()
	rb.inertiaDirty = true
}

// InverseInertiaWorld returns the inverse inertia tensor in world space, zero for kinematic bodies
func (rb *RigidBody) InverseInertiaWorld() mgl32.Mat3 {
	if rb.bodyType == BodyTypeKinematic {
		return mgl32.Mat3{}
	}

	if rb.inertiaDirty {
		// I_world^(-1) = R * I_local^(-1) * R^T
		R := rb.transform.Rotation.Mat4().Mat3()
		rb.inverseInertiaWorld = R.Mul3(rb.inverseInertiaLocal).Mul3(R.Transpose())
		rb.inertiaDirty = false
	}

	return rb.inverseInertiaWorld
}

// Integrate turns the accumulated forces into velocities (semi-implicit Euler) and applies damping
func (rb *RigidBody) Integrate(dt float32) {
	if rb.bodyType == BodyTypeKinematic || rb.sleeping {
		rb.ClearForces()
		return
	}

	// Linear
	rb.linearVelocity = rb.linearVelocity.Add(rb.accumulatedForce.Mul(rb.inverseMass * dt))
	rb.linearVelocity = rb.linearVelocity.Mul(math32.Exp(-rb.LinearDamping * dt))

	// Angular
	angularAccel := rb.InverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
	rb.angularVelocity = rb.angularVelocity.Add(angularAccel.Mul(dt))
	rb.angularVelocity = rb.angularVelocity.Mul(math32.Exp(-rb.AngularDamping * dt))

	rb.ClearForces()
}

// UpdatePositionAndRotation integrates the location and the orientation from the velocities,
// then rebuilds the transform and the shape cache
func (rb *RigidBody) UpdatePositionAndRotation(dt float32) {
	if rb.sleeping {
		return
	}

	rb.transform.Position = rb.transform.Position.Add(rb.linearVelocity.Mul(dt))

	if rb.angularVelocity.LenSqr() > 0 {
		omegaQuat := mgl32.Quat{V: rb.angularVelocity, W: 0}
		qDot := omegaQuat.Mul(rb.transform.Rotation).Scale(0.5)
		rb.transform.Rotation = rb.transform.Rotation.Add(qDot.Scale(dt))
		rb.transform = rb.transform.Normalized()
		rb.inertiaDirty = true
	}

	rb.updateShapeCache()
}

// UpdateSleep advances the sleep timer while the body is slower than the thresholds,
// and puts it to sleep once the timer reaches timeout. It returns true when the body falls asleep.
func (rb *RigidBody) UpdateSleep(dt, linearThreshold, angularThreshold, timeout float32) bool {
	if rb.bodyType == BodyTypeKinematic || rb.sleeping || timeout <= 0 {
		return false
	}

	if rb.linearVelocity.Len() < linearThreshold && rb.angularVelocity.Len() < angularThreshold {
		rb.sleepTimer += dt
		if rb.sleepTimer >= timeout {
			rb.Sleep()
			return true
		}
	} else {
		rb.sleepTimer = 0
	}

	return false
}

func (rb *RigidBody) Sleep() {
	if rb.bodyType == BodyTypeKinematic {
		return
	}
	rb.sleeping = true
	rb.sleepTimer = 0

	rb.ClearForces()
	rb.linearVelocity = mgl32.Vec3{}
	rb.angularVelocity = mgl32.Vec3{}
}

func (rb *RigidBody) WakeUp() {
	rb.sleeping = false
	rb.sleepTimer = 0
}

func (rb *RigidBody) wakeIf(wake bool) {
	if wake {
		rb.WakeUp()
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl32.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl32.Vec3{0, 0, 0}
}

// AccumulatedForce returns the force and torque waiting for the next integration
func (rb *RigidBody) AccumulatedForce() (mgl32.Vec3, mgl32.Vec3) {
	return rb.accumulatedForce, rb.accumulatedTorque
}

func (rb *RigidBody) updateShapeCache() {
	if rb.shape != nil {
		rb.shape.UpdateCacheData(rb.transform)
	}
}

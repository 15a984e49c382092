package actor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestGravity_Apply(t *testing.T) {
	gravity := NewGravity(mgl32.Vec3{0, -10, 0})

	t.Run("scaled by the mass", func(t *testing.T) {
		rb := newTestBox(mgl32.Vec3{}, BodyTypeDynamic)
		rb.SetMass(3, false)

		gravity.Apply(rb)

		force, _ := rb.AccumulatedForce()
		assert.Equal(t, mgl32.Vec3{0, -30, 0}, force)
	})

	t.Run("skips kinematic bodies", func(t *testing.T) {
		rb := newTestBox(mgl32.Vec3{}, BodyTypeKinematic)

		gravity.Apply(rb)

		force, _ := rb.AccumulatedForce()
		assert.Equal(t, mgl32.Vec3{}, force)
	})

	t.Run("does not wake sleeping bodies", func(t *testing.T) {
		rb := newTestBox(mgl32.Vec3{}, BodyTypeDynamic)
		rb.Sleep()

		gravity.Apply(rb)

		force, _ := rb.AccumulatedForce()
		assert.Equal(t, mgl32.Vec3{}, force)
		assert.True(t, rb.IsSleeping())
	})
}

func TestWind_Apply(t *testing.T) {
	wind := &Wind{Force: mgl32.Vec3{1, 0, 0}}

	t.Run("unit cube", func(t *testing.T) {
		rb := newTestBox(mgl32.Vec3{}, BodyTypeDynamic)

		wind.Apply(rb)

		// 4 * (3 * 0.25) / 3 = 1
		force, _ := rb.AccumulatedForce()
		assertVec3InDelta(t, mgl32.Vec3{1, 0, 0}, force, epsilon)
	})

	t.Run("body without shape", func(t *testing.T) {
		rb := NewRigidBody(NewTransform(), nil, BodyTypeDynamic, 1.0)

		wind.Apply(rb)

		force, _ := rb.AccumulatedForce()
		assert.Equal(t, mgl32.Vec3{}, force)
	})
}

func TestGlobalForce_Interface(t *testing.T) {
	forces := []GlobalForce{NewGravity(mgl32.Vec3{0, -1, 0}), &Wind{Force: mgl32.Vec3{0, 0, 1}}}
	rb := newTestBox(mgl32.Vec3{}, BodyTypeDynamic)

	for _, force := range forces {
		force.Apply(rb)
	}

	force, _ := rb.AccumulatedForce()
	assertVec3InDelta(t, mgl32.Vec3{0, -1, 1}, force, epsilon)
}

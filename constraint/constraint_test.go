package constraint

import (
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBody(position mgl32.Vec3, bodyType actor.BodyType, material actor.Material) *actor.RigidBody {
	shape := actor.NewBox(mgl32.Vec3{0.5, 0.5, 0.5})
	shape.SetMaterial(material)

	return actor.NewRigidBody(actor.NewTransformAt(position, mgl32.QuatIdent()), shape, bodyType, 1.0)
}

// stackedManifold builds the face contact of a unit box resting over the top face of a unit box at the origin
func stackedManifold(manager *ContactManager, a, b *actor.RigidBody, depth float32) *ContactManifold {
	manifold := manager.NewManifold(a, b)
	manifold.SetBasis(mgl32.Vec3{0, 1, 0})
	manifold.Depth = depth
	manifold.Type = ManifoldFaceFace

	for _, corner := range [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}} {
		contact := manager.NewContact()
		contact.PointA = mgl32.Vec3{corner[0], 0.5, corner[1]}
		contact.PointB = mgl32.Vec3{corner[0], 0.5 - depth, corner[1]}
		contact.Depth = depth
		manifold.AddContact(contact)
	}
	manager.Commit(manifold)

	return manifold
}

func TestComputeRestitution(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float32
		expected float32
	}{
		{"both zero", 0, 0, 0},
		{"one zero one high", 0, 0.8, 0.4},
		{"same", 0.5, 0.5, 0.5},
		{"different", 0.3, 0.7, 0.5},
		{"perfect", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := actor.NewSphere(1)
			a.SetMaterial(actor.Material{Restitution: tt.a})
			b := actor.NewSphere(1)
			b.SetMaterial(actor.Material{Restitution: tt.b})

			assert.InDelta(t, tt.expected, ComputeRestitution(a, b), 1e-6)
		})
	}
}

func TestComputeFriction(t *testing.T) {
	a := actor.NewBox(mgl32.Vec3{1, 1, 1})
	a.SetMaterial(actor.Material{StaticFriction: 0.4, DynamicFriction: 0.1})
	b := actor.NewBox(mgl32.Vec3{1, 1, 1})
	b.SetMaterial(actor.Material{StaticFriction: 0.9, DynamicFriction: 0.4})

	assert.InDelta(t, 0.6, ComputeStaticFriction(a, b), 1e-6)
	assert.InDelta(t, 0.2, ComputeDynamicFriction(a, b), 1e-6)
}

func TestClipFunctions(t *testing.T) {
	contact := &Contact{Friction: 0.5}
	contact.Axes[AxisNormal].Lambda = 2

	assert.Equal(t, float32(0), ClipNormal(-1, contact))
	assert.Equal(t, float32(3), ClipNormal(3, contact))

	assert.Equal(t, float32(1), ClipFriction(4, contact))
	assert.Equal(t, float32(-1), ClipFriction(-4, contact))
	assert.Equal(t, float32(0.5), ClipFriction(0.5, contact))
}

func TestContactManager(t *testing.T) {
	t.Run("pointers stay valid while growing", func(t *testing.T) {
		manager := NewContactManager()

		first := manager.NewContact()
		first.Depth = 42
		for i := 0; i < poolChunkSize*3; i++ {
			manager.NewContact()
		}
		assert.Equal(t, float32(42), first.Depth)
	})

	t.Run("only committed manifolds with contacts are listed", func(t *testing.T) {
		manager := NewContactManager()
		a := createBody(mgl32.Vec3{0, 0, 0}, actor.BodyTypeKinematic, actor.DefaultMaterial())
		b := createBody(mgl32.Vec3{0, 0.9, 0}, actor.BodyTypeDynamic, actor.DefaultMaterial())

		empty := manager.NewManifold(a, b)
		assert.False(t, manager.Commit(empty))

		self := manager.NewManifold(a, a)
		self.AddContact(manager.NewContact())
		assert.False(t, manager.Commit(self))

		stackedManifold(manager, a, b, 0.1)
		require.Len(t, manager.Manifolds(), 1)

		m := manager.Manifolds()[0]
		assert.Equal(t, 4, m.ContactCount())
		assert.NotSame(t, m.BodyA, m.BodyB)
		assert.False(t, m.AddContact(manager.NewContact()), "a manifold holds 4 contacts at most")

		manager.Reset()
		assert.Empty(t, manager.Manifolds())
	})

	t.Run("reset reuses zeroed storage", func(t *testing.T) {
		manager := NewContactManager()
		contact := manager.NewContact()
		contact.Depth = 1
		contact.Axes[AxisNormal].Lambda = 3

		manager.Reset()
		reused := manager.NewContact()
		assert.Same(t, contact, reused)
		assert.Zero(t, reused.Depth)
		assert.Zero(t, reused.NormalImpulse())
	})
}

func TestTangentBasis(t *testing.T) {
	normals := []mgl32.Vec3{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, -1},
		mgl32.Vec3{1, 2, 3}.Normalize(),
	}

	for _, n := range normals {
		tangent, bitangent := TangentBasis(n)
		assert.InDelta(t, 1.0, tangent.Len(), 1e-5)
		assert.InDelta(t, 1.0, bitangent.Len(), 1e-5)
		assert.InDelta(t, 0.0, tangent.Dot(n), 1e-5)
		assert.InDelta(t, 0.0, bitangent.Dot(n), 1e-5)
		assert.InDelta(t, 0.0, tangent.Dot(bitangent), 1e-5)
	}
}

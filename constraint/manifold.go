package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxContacts is the maximal number of contacts of a manifold
const MaxContacts = 4

// ManifoldType is the pair of features in contact
type ManifoldType int

const (
	ManifoldPoint ManifoldType = iota
	ManifoldEdgeEdge
	ManifoldEdgeFace
	ManifoldFaceFace
)

func (t ManifoldType) String() string {
	switch t {
	case ManifoldPoint:
		return "point"
	case ManifoldEdgeEdge:
		return "edge-edge"
	case ManifoldEdgeFace:
		return "edge-face"
	case ManifoldFaceFace:
		return "face-face"
	}
	return "unknown"
}

// ContactManifold holds all the contacts between one ordered pair of bodies, for one step.
// BodyB may be kinematic, BodyA never is when BodyB is dynamic.
// The normal points from A toward B.
type ContactManifold struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	contacts     [MaxContacts]*Contact
	contactCount int

	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	Normal    mgl32.Vec3
	Depth     float32
	Type      ManifoldType

	GJKSteps      int
	EPAIterations int

	// body locations when the contacts were built, used to estimate the remaining depth
	originA mgl32.Vec3
	originB mgl32.Vec3
}

func (m *ContactManifold) reset() {
	*m = ContactManifold{}
}

// AddContact appends a contact. It reports false when the manifold is full.
func (m *ContactManifold) AddContact(contact *Contact) bool {
	if m.contactCount >= MaxContacts {
		return false
	}
	m.contacts[m.contactCount] = contact
	m.contactCount++

	return true
}

func (m *ContactManifold) Contacts() []*Contact {
	return m.contacts[:m.contactCount]
}

func (m *ContactManifold) ContactCount() int {
	return m.contactCount
}

// IsKinematic reports whether body B is immovable
func (m *ContactManifold) IsKinematic() bool {
	return m.BodyB.IsKinematic()
}

// SetBasis stores the contact normal and builds the tangent plane around it
func (m *ContactManifold) SetBasis(normal mgl32.Vec3) {
	m.Normal = normal
	m.Tangent, m.Bitangent = TangentBasis(normal)
}

// TangentBasis returns two unit vectors completing the unit normal into an orthonormal basis
func TangentBasis(normal mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	tangent := mgl32.Vec3{1, 0, 0}
	if normal.X() > 0.9 || normal.X() < -0.9 {
		tangent = mgl32.Vec3{0, 1, 0}
	}

	tangent = tangent.Sub(normal.Mul(tangent.Dot(normal))).Normalize()
	bitangent := normal.Cross(tangent).Normalize()

	return tangent, bitangent
}

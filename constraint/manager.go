package constraint

import "github.com/akmonengine/impulse/actor"

const poolChunkSize = 64

// ContactManager owns the contacts and manifolds of one simulation step.
//
// Storage grows by fixed size chunks, so the pointers handed out stay valid until Reset.
// Nothing allocated here must be kept across steps.
type ContactManager struct {
	contactChunks  [][]Contact
	contactCount   int
	manifoldChunks [][]ContactManifold
	manifoldCount  int

	manifolds []*ContactManifold
}

func NewContactManager() *ContactManager {
	return &ContactManager{
		manifolds: make([]*ContactManifold, 0, poolChunkSize),
	}
}

// Reset invalidates every contact and manifold, keeping the storage
func (m *ContactManager) Reset() {
	m.contactCount = 0
	m.manifoldCount = 0
	clear(m.manifolds)
	m.manifolds = m.manifolds[:0]
}

// NewContact returns a zeroed contact from the pool
func (m *ContactManager) NewContact() *Contact {
	chunk, index := m.contactCount/poolChunkSize, m.contactCount%poolChunkSize
	if chunk == len(m.contactChunks) {
		m.contactChunks = append(m.contactChunks, make([]Contact, poolChunkSize))
	}
	m.contactCount++

	contact := &m.contactChunks[chunk][index]
	contact.reset()

	return contact
}

// NewManifold returns an empty manifold for the pair. It is not part of the step until committed.
func (m *ContactManager) NewManifold(a, b *actor.RigidBody) *ContactManifold {
	chunk, index := m.manifoldCount/poolChunkSize, m.manifoldCount%poolChunkSize
	if chunk == len(m.manifoldChunks) {
		m.manifoldChunks = append(m.manifoldChunks, make([]ContactManifold, poolChunkSize))
	}
	m.manifoldCount++

	manifold := &m.manifoldChunks[chunk][index]
	manifold.reset()
	manifold.BodyA = a
	manifold.BodyB = b

	return manifold
}

// Commit adds a manifold holding at least one contact to the step
func (m *ContactManager) Commit(manifold *ContactManifold) bool {
	if manifold.contactCount == 0 || manifold.BodyA == nil || manifold.BodyB == nil || manifold.BodyA == manifold.BodyB {
		return false
	}
	m.manifolds = append(m.manifolds, manifold)

	return true
}

// Manifolds returns the committed manifolds of the current step
func (m *ContactManager) Manifolds() []*ContactManifold {
	return m.manifolds
}

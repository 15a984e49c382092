package constraint

const (
	DefaultLocationIterations         = 4
	DefaultLocationSlop       float32 = 0.005
	DefaultLocationFactor     float32 = 0.8
)

// LocationSolver pushes penetrating bodies apart by moving their locations.
// Velocities are left untouched, so the correction never injects energy.
type LocationSolver struct {
	Iterations int
	// Slop is the penetration allowed to stay, keeping resting contacts alive
	Slop float32
	// Factor is the share of the remaining penetration corrected per iteration
	Factor float32
}

func NewLocationSolver() *LocationSolver {
	return &LocationSolver{
		Iterations: DefaultLocationIterations,
		Slop:       DefaultLocationSlop,
		Factor:     DefaultLocationFactor,
	}
}

func (s *LocationSolver) Solve(manifolds []*ContactManifold, dt float32) {
	for _, manifold := range manifolds {
		manifold.originA = manifold.BodyA.Location()
		manifold.originB = manifold.BodyB.Location()
	}

	for i := 0; i < s.Iterations; i++ {
		for _, manifold := range manifolds {
			s.solveManifold(manifold)
		}
	}
}

// Depth estimates the current penetration of a manifold: its deepest contact,
// minus the separation made by both bodies along the normal since the contacts were built.
func (s *LocationSolver) Depth(manifold *ContactManifold) float32 {
	displacementA := manifold.BodyA.Location().Sub(manifold.originA)
	displacementB := manifold.BodyB.Location().Sub(manifold.originB)
	separation := displacementB.Sub(displacementA).Dot(manifold.Normal)

	deepest := float32(0)
	for _, contact := range manifold.Contacts() {
		deepest = max(deepest, contact.Depth)
	}

	return deepest - separation
}

func (s *LocationSolver) solveManifold(manifold *ContactManifold) {
	correction := s.Factor * max(s.Depth(manifold)-s.Slop, 0)
	if correction <= 0 {
		return
	}

	bodyA, bodyB := manifold.BodyA, manifold.BodyB
	inverseMassA := bodyA.InverseMass()
	inverseMassB := bodyB.InverseMass()
	total := inverseMassA + inverseMassB
	if total <= 0 {
		return
	}

	// split by mass ratio: a kinematic body has no inverse mass and takes none of it
	offset := manifold.Normal.Mul(correction / total)
	if inverseMassA > 0 {
		bodyA.Translate(offset.Mul(-inverseMassA))
	}
	if inverseMassB > 0 {
		bodyB.Translate(offset.Mul(inverseMassB))
	}
}

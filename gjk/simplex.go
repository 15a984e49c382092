package gjk

import "github.com/go-gl/mathgl/mgl32"

// SupportPoint is a vertex of the Minkowski difference A - B, along with
// the two world points it was built from (P = A - B).
type SupportPoint struct {
	P mgl32.Vec3
	A mgl32.Vec3
	B mgl32.Vec3
}

// Simplex represents a set of 1-4 support points in the Minkowski difference space.
// Size progression: 1 point → 2 points (line) → 3 points (triangle) → 4 points (tetrahedron)
type Simplex struct {
	Points [4]SupportPoint
	Count  int

	// barycentric weights of the closest point, filled by closest()
	weights [4]float32
}

func (s *Simplex) Reset() {
	s.Count = 0
}

// Add appends a point to the simplex. It reports false when the simplex is already full.
func (s *Simplex) Add(point SupportPoint) bool {
	if s.Count >= len(s.Points) {
		return false
	}
	s.Points[s.Count] = point
	s.Count++

	return true
}

// Contains reports whether a vertex of the simplex lies within tolerance of p
func (s *Simplex) Contains(p mgl32.Vec3, tolerance float32) bool {
	tolSq := tolerance * tolerance
	for i := 0; i < s.Count; i++ {
		if s.Points[i].P.Sub(p).LenSqr() <= tolSq {
			return true
		}
	}

	return false
}

// Witnesses returns the points on A and B matching the last closest point computation
func (s *Simplex) Witnesses() (mgl32.Vec3, mgl32.Vec3) {
	var a, b mgl32.Vec3
	for i := 0; i < s.Count; i++ {
		a = a.Add(s.Points[i].A.Mul(s.weights[i]))
		b = b.Add(s.Points[i].B.Mul(s.weights[i]))
	}

	return a, b
}


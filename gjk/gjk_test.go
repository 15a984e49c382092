package gjk

import (
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions

func createBox(position mgl32.Vec3, halfExtents mgl32.Vec3) *actor.Box {
	box := actor.NewBox(halfExtents)
	box.UpdateCacheData(actor.NewTransformAt(position, mgl32.QuatIdent()))
	return box
}

func createSphere(position mgl32.Vec3, radius float32) *actor.Sphere {
	sphere := actor.NewSphere(radius)
	sphere.UpdateCacheData(actor.NewTransformAt(position, mgl32.QuatIdent()))
	return sphere
}

func TestMinkowskiSupport(t *testing.T) {
	t.Run("two separated spheres along x-axis", func(t *testing.T) {
		a := createSphere(mgl32.Vec3{0, 0, 0}, 1.0)
		b := createSphere(mgl32.Vec3{3, 0, 0}, 1.0)

		support := MinkowskiSupport(a, b, mgl32.Vec3{1, 0, 0})

		// max(A.x) - min(B.x) = 1 - 2 = -1
		assert.InDelta(t, -1.0, support.P.X(), 1e-6)
		assert.InDelta(t, 1.0, support.A.X(), 1e-6)
		assert.InDelta(t, 2.0, support.B.X(), 1e-6)
	})

	t.Run("witnesses rebuild the support point", func(t *testing.T) {
		a := createBox(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1})
		b := createSphere(mgl32.Vec3{0, 0, 2}, 0.5)

		support := MinkowskiSupport(a, b, mgl32.Vec3{0.3, -1, 0.2})
		assert.True(t, support.P.ApproxEqualThreshold(support.A.Sub(support.B), 1e-6))
	})
}

func TestGJK_Intersecting(t *testing.T) {
	testCases := []struct {
		name string
		a, b actor.Shape
	}{
		{"overlapping spheres", createSphere(mgl32.Vec3{0, 0, 0}, 1), createSphere(mgl32.Vec3{1.5, 0, 0}, 1)},
		{"identical spheres", createSphere(mgl32.Vec3{0, 0, 0}, 1), createSphere(mgl32.Vec3{0, 0, 0}, 1)},
		{"overlapping boxes", createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), createBox(mgl32.Vec3{1.5, 0, 0}, mgl32.Vec3{1, 1, 1})},
		{"box inside box", createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2}), createBox(mgl32.Vec3{0, 1, 1}, mgl32.Vec3{1, 1, 1})},
		{"sphere inside box", createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2}), createSphere(mgl32.Vec3{0, 0, 0}, 0.5)},
		{"sphere on box corner", createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), createSphere(mgl32.Vec3{1.5, 1.5, 1.5}, 1)},
		{"large spheres", createSphere(mgl32.Vec3{0, 0, 0}, 1000), createSphere(mgl32.Vec3{1500, 0, 0}, 1000)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := GJK{}
			require.True(t, g.Run(tc.a, tc.b))
			assert.GreaterOrEqual(t, g.Simplex.Count, 1)
			assert.LessOrEqual(t, g.Simplex.Count, 4)
			assert.LessOrEqual(t, g.Stats.Steps, MaxIterations)
		})
	}
}

func TestGJK_Separated(t *testing.T) {
	testCases := []struct {
		name string
		a, b actor.Shape
	}{
		{"far apart spheres", createSphere(mgl32.Vec3{0, 0, 0}, 1), createSphere(mgl32.Vec3{10, 0, 0}, 1)},
		{"barely separated spheres", createSphere(mgl32.Vec3{0, 0, 0}, 1), createSphere(mgl32.Vec3{2.1, 0, 0}, 1)},
		{"separated diagonally", createSphere(mgl32.Vec3{0, 0, 0}, 1), createSphere(mgl32.Vec3{3, 3, 3}, 1)},
		{"barely separated boxes", createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), createBox(mgl32.Vec3{2.1, 0, 0}, mgl32.Vec3{1, 1, 1})},
		{"sphere near box", createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), createSphere(mgl32.Vec3{2.5, 0, 0}, 0.4)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := GJK{}
			assert.False(t, g.Run(tc.a, tc.b))
			assert.GreaterOrEqual(t, g.Simplex.Count, 1)
			assert.LessOrEqual(t, g.Simplex.Count, 4)
		})
	}
}

func TestGJK_RotatedBoxes(t *testing.T) {
	a := createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})

	b := actor.NewBox(mgl32.Vec3{1, 1, 1})
	rotation := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 0, 1})

	// the rotated corner reaches x = 2.3 - sqrt(2) ≈ 0.886
	b.UpdateCacheData(actor.NewTransformAt(mgl32.Vec3{2.3, 0, 0}, rotation))
	g := GJK{}
	assert.True(t, g.Run(a, b))

	// and x = 2.5 - sqrt(2) ≈ 1.086 once moved away
	b.UpdateCacheData(actor.NewTransformAt(mgl32.Vec3{2.5, 0, 0}, rotation))
	assert.False(t, g.Run(a, b))
}

func TestGJK_StatsReset(t *testing.T) {
	a := createBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	b := createBox(mgl32.Vec3{1, 0.5, 0.25}, mgl32.Vec3{1, 1, 1})

	g := GJK{}
	require.True(t, g.Run(a, b))
	first := g.Stats

	require.True(t, g.Run(a, b))
	assert.Equal(t, first, g.Stats)
	assert.Positive(t, g.Stats.Steps)
}

func TestSimplex(t *testing.T) {
	t.Run("add is bounded", func(t *testing.T) {
		s := Simplex{}
		for i := 0; i < 4; i++ {
			assert.True(t, s.Add(SupportPoint{P: mgl32.Vec3{float32(i), 0, 0}}))
		}
		assert.False(t, s.Add(SupportPoint{}))
		assert.Equal(t, 4, s.Count)
	})

	t.Run("contains", func(t *testing.T) {
		s := Simplex{}
		s.Add(SupportPoint{P: mgl32.Vec3{1, 2, 3}})
		assert.True(t, s.Contains(mgl32.Vec3{1, 2, 3.00001}, 1e-4))
		assert.False(t, s.Contains(mgl32.Vec3{1, 2, 4}, 1e-4))
	})

	t.Run("reset", func(t *testing.T) {
		s := Simplex{}
		s.Add(SupportPoint{})
		s.Reset()
		assert.Equal(t, 0, s.Count)
	})
}

func TestSimplex_Closest(t *testing.T) {
	t.Run("segment interior", func(t *testing.T) {
		s := Simplex{}
		s.Add(SupportPoint{P: mgl32.Vec3{-1, 1, 0}, B: mgl32.Vec3{-1, 1, 0}})
		s.Add(SupportPoint{P: mgl32.Vec3{1, 1, 0}, B: mgl32.Vec3{1, 1, 0}})

		v, inside := s.closest(mgl32.Vec3{})
		assert.False(t, inside)
		assert.Equal(t, 2, s.Count)
		// y = -P, so the closest point of the shifted segment is (0, -1, 0)
		assert.True(t, v.ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-6))

		_, b := s.Witnesses()
		assert.True(t, b.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6))
	})

	t.Run("triangle vertex region drops the others", func(t *testing.T) {
		s := Simplex{}
		s.Add(SupportPoint{P: mgl32.Vec3{1, 1, 0}})
		s.Add(SupportPoint{P: mgl32.Vec3{3, 1, 0}})
		s.Add(SupportPoint{P: mgl32.Vec3{1, 3, 0}})

		v, _ := s.closest(mgl32.Vec3{})
		assert.Equal(t, 1, s.Count)
		assert.True(t, v.ApproxEqualThreshold(mgl32.Vec3{-1, -1, 0}, 1e-6))
	})

	t.Run("tetrahedron containing the origin", func(t *testing.T) {
		s := Simplex{}
		s.Add(SupportPoint{P: mgl32.Vec3{1, 0, -1}})
		s.Add(SupportPoint{P: mgl32.Vec3{-1, 0, -1}})
		s.Add(SupportPoint{P: mgl32.Vec3{0, 1, 1}})
		s.Add(SupportPoint{P: mgl32.Vec3{0, -1, 1}})

		_, inside := s.closest(mgl32.Vec3{})
		assert.True(t, inside)
		assert.Equal(t, 4, s.Count)

		var sum float32
		for i := 0; i < 4; i++ {
			sum += s.weights[i]
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	})
}

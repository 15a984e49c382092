package impulse

import (
	"slices"
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBox(position mgl32.Vec3, halfExtents mgl32.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl32.QuatIdent()),
		actor.NewBox(halfExtents),
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createTestGround() *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransform(),
		actor.NewBox(mgl32.Vec3{10, 0.5, 10}),
		actor.BodyTypeKinematic,
		1.0,
	)
}

func cellsOf(grid *SpatialGrid, body *actor.RigidBody) []int {
	bounds := body.Shape().WorldBounds()
	minCell := grid.worldToCell(bounds.Min)
	maxCell := grid.worldToCell(bounds.Max)

	var cells []int
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cells = append(cells, grid.hashCell(CellKey{x, y, z}))
			}
		}
	}
	return cells
}

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl32.Vec3
		expected CellKey
	}{
		{"origin", mgl32.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl32.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl32.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fraction", mgl32.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"large", mgl32.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, grid.worldToCell(tt.position))
		})
	}
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origin", CellKey{0, 0, 0}, 0},
		{"simple", CellKey{1, 2, 3}, 0},
		{"negative", CellKey{-1, -2, -3}, 13},
		{"large", CellKey{100, 200, 300}, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			assert.GreaterOrEqual(t, result, 0)
			assert.Less(t, result, len(grid.cells))
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNewSpatialGrid_PowerOfTwo(t *testing.T) {
	assert.Len(t, NewSpatialGrid(1.0, 100).cells, 128)
	assert.Len(t, NewSpatialGrid(1.0, 0).cells, 1)
	assert.Len(t, NewSpatialGrid(1.0, 64).cells, 64)
}

func TestInsert(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodies := []*actor.RigidBody{
		createTestBox(mgl32.Vec3{1.0, 1.0, 1.0}, mgl32.Vec3{0.4, 0.4, 0.4}),
		createTestBox(mgl32.Vec3{2.0, 2.0, 2.0}, mgl32.Vec3{0.4, 0.4, 0.4}),
		createTestBox(mgl32.Vec3{3.0, 3.0, 3.0}, mgl32.Vec3{0.4, 0.4, 0.4}),
	}

	for i, body := range bodies {
		grid.Insert(i, body)
	}

	for i, body := range bodies {
		for _, cell := range cellsOf(grid, body) {
			assert.Contains(t, grid.cells[cell].bodyIndices, i)
		}
	}

	t.Run("body without shape is ignored", func(t *testing.T) {
		grid.Clear()
		grid.Insert(0, actor.NewRigidBody(actor.NewTransform(), nil, actor.BodyTypeDynamic, 1.0))
		for _, cell := range grid.cells {
			assert.Empty(t, cell.bodyIndices)
		}
	})
}

func TestClear(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	grid.Insert(0, createTestBox(mgl32.Vec3{1.0, 1.0, 1.0}, mgl32.Vec3{0.4, 0.4, 0.4}))
	grid.Insert(1, createTestBox(mgl32.Vec3{2.0, 2.0, 2.0}, mgl32.Vec3{0.4, 0.4, 0.4}))

	grid.Clear()

	for _, cell := range grid.cells {
		assert.Empty(t, cell.bodyIndices)
	}
}

func TestSortCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	grid.cells[0].bodyIndices = append(grid.cells[0].bodyIndices, 5, 2, 8, 1, 9, 3)

	grid.SortCells()

	assert.True(t, slices.IsSorted(grid.cells[0].bodyIndices))
	assert.Equal(t, []int{1, 2, 3, 5, 8, 9}, grid.cells[0].bodyIndices)
}

func findPairs(grid *SpatialGrid, bodies []*actor.RigidBody) []Pair {
	grid.Clear()
	for i, body := range bodies {
		grid.Insert(i, body)
	}
	grid.SortCells()

	return grid.FindPairs(bodies, nil)
}

func TestFindPairs(t *testing.T) {
	t.Run("far apart", func(t *testing.T) {
		pairs := findPairs(NewSpatialGrid(1.0, 16), []*actor.RigidBody{
			createTestBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.4, 0.4, 0.4}),
			createTestBox(mgl32.Vec3{10, 10, 10}, mgl32.Vec3{0.4, 0.4, 0.4}),
		})
		assert.Empty(t, pairs)
	})

	t.Run("overlapping", func(t *testing.T) {
		bodies := []*actor.RigidBody{
			createTestBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.4, 0.4, 0.4}),
			createTestBox(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0.4, 0.4, 0.4}),
		}
		pairs := findPairs(NewSpatialGrid(1.0, 16), bodies)

		require.Len(t, pairs, 1, "a pair sharing many cells is reported once")
		assert.Same(t, bodies[0], pairs[0].BodyA)
		assert.Same(t, bodies[1], pairs[0].BodyB)
	})

	t.Run("kinematic pair", func(t *testing.T) {
		a := createTestBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.4, 0.4, 0.4})
		b := createTestBox(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0.4, 0.4, 0.4})
		a.EnableKinematic()
		b.EnableKinematic()

		assert.Empty(t, findPairs(NewSpatialGrid(1.0, 16), []*actor.RigidBody{a, b}))
	})

	t.Run("sleeping pair", func(t *testing.T) {
		a := createTestBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.4, 0.4, 0.4})
		b := createTestBox(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0.4, 0.4, 0.4})
		a.Sleep()
		b.Sleep()

		assert.Empty(t, findPairs(NewSpatialGrid(1.0, 16), []*actor.RigidBody{a, b}))
	})

	t.Run("sleeping body on static ground", func(t *testing.T) {
		box := createTestBox(mgl32.Vec3{0, 0.9, 0}, mgl32.Vec3{0.5, 0.5, 0.5})
		box.Sleep()

		assert.Empty(t, findPairs(NewSpatialGrid(1.0, 16), []*actor.RigidBody{createTestGround(), box}))
	})

	t.Run("awake body on large ground", func(t *testing.T) {
		ground := createTestGround()
		boxes := []*actor.RigidBody{
			ground,
			createTestBox(mgl32.Vec3{-5, 0.9, 3}, mgl32.Vec3{0.5, 0.5, 0.5}),
			createTestBox(mgl32.Vec3{5, 0.9, -3}, mgl32.Vec3{0.5, 0.5, 0.5}),
		}

		pairs := findPairs(NewSpatialGrid(1.0, 64), boxes)
		require.Len(t, pairs, 2)
		for _, pair := range pairs {
			assert.Same(t, ground, pair.BodyA)
		}
	})
}

func TestBoundaryCases(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	body := createTestBox(mgl32.Vec3{1.0, 1.0, 1.0}, mgl32.Vec3{0.5, 0.5, 0.5})

	bounds := body.Shape().WorldBounds()
	minCell := grid.worldToCell(bounds.Min)
	maxCell := grid.worldToCell(bounds.Max)

	// exactly on the boundary: 2 cells in each dimension
	assert.Equal(t, CellKey{1, 1, 1}, CellKey{maxCell.X - minCell.X, maxCell.Y - minCell.Y, maxCell.Z - minCell.Z})
}

func TestLargeBodySpanningManyCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	body := createTestBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{5.0, 5.0, 5.0})

	grid.Insert(0, body)

	for _, cell := range cellsOf(grid, body) {
		assert.Contains(t, grid.cells[cell].bodyIndices, 0)
	}
}

func BenchmarkFindPairs(b *testing.B) {
	grid := NewSpatialGrid(1.0, 1024)
	bodies := make([]*actor.RigidBody, 100)

	for i := range bodies {
		pos := mgl32.Vec3{
			float32(i%10) * 2.0,
			float32((i/10)%10) * 2.0,
			float32((i/100)%10) * 2.0,
		}
		bodies[i] = createTestBox(pos, mgl32.Vec3{0.4, 0.4, 0.4})
	}
	for i, body := range bodies {
		grid.Insert(i, body)
	}

	var pairs []Pair
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pairs = grid.FindPairs(bodies, pairs)
	}
}

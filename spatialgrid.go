package impulse

import (
	"slices"

	"github.com/akmonengine/impulse/actor"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CellKey is the coordinates of a cell of the grid
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies overlapping it
type Cell struct {
	bodyIndices []int
}

// Pair is a pair of bodies whose bounds overlap
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform grid, hashed into a fixed number of cells, used as broad phase
type SpatialGrid struct {
	cellSize float32
	cells    []Cell
	cellMask int

	seen []bool
}

// NewSpatialGrid creates a grid. numCells is rounded up to a power of two.
func NewSpatialGrid(cellSize float32, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds the body to every cell its bounds overlap. Bodies without a shape are ignored.
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	if body.Shape() == nil {
		return
	}

	bounds := body.Shape().WorldBounds()
	minCell := sg.worldToCell(bounds.Min)
	maxCell := sg.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				// a large body may hash several of its cells to the same index
				if indices := sg.cells[cellIdx].bodyIndices; len(indices) > 0 && indices[len(indices)-1] == bodyIndex {
					continue
				}
				sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			slices.Sort(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns the pairs of bodies with overlapping bounds, in a deterministic order.
// Pairs of kinematic bodies, and pairs where no body is awake, are skipped.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody, pairs []Pair) []Pair {
	pairs = pairs[:0]
	if cap(sg.seen) < len(bodies) {
		sg.seen = make([]bool, len(bodies))
	}
	seen := sg.seen[:len(bodies)]

	for bodyIdx, bodyA := range bodies {
		if bodyA.Shape() == nil {
			continue
		}
		clear(seen)

		boundsA := bodyA.Shape().WorldBounds()
		minCell := sg.worldToCell(boundsA.Min)
		maxCell := sg.worldToCell(boundsA.Max)

		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					cellIdx := sg.hashCell(CellKey{x, y, z})

					for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
						// each pair once, (A,B) and never (B,A)
						if otherIdx <= bodyIdx || seen[otherIdx] {
							continue
						}
						seen[otherIdx] = true

						bodyB := bodies[otherIdx]
						if bodyA.IsKinematic() && bodyB.IsKinematic() {
							continue
						}
						if !bodyA.IsActive() && !bodyB.IsActive() {
							continue
						}

						if boundsA.Overlaps(bodyB.Shape().WorldBounds()) {
							pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
						}
					}
				}
			}
		}
	}

	return pairs
}

func (sg *SpatialGrid) worldToCell(pos mgl32.Vec3) CellKey {
	return CellKey{
		X: int(math32.Floor(pos.X() / sg.cellSize)),
		Y: int(math32.Floor(pos.Y() / sg.cellSize)),
		Z: int(math32.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

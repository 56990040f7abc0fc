package maze

import (
	"github.com/pkg/errors"
)

// MaxDimensions is the largest rank a Grid supports; the 2D wall flags of a
// cell are packed into one uint64.
const MaxDimensions = 32

// MaxCells bounds the cell count of a Grid.
const MaxCells = 1 << 26

// Grid is a dense n-dimensional box of cells with per-direction wall flags.
// Cells start solid and walls start present. Cells are stored row-major with
// the last axis varying fastest.
type Grid struct {
	dims    []int
	strides []int
	dirs    DirectionTable
	cells   []bool   // true = solid
	walls   []uint64 // bit d set = wall toward direction d present
}

// CellCount returns the number of cells a grid with the given extents holds.
// It fails with ErrInvalidDimensions for a rank outside 1..MaxDimensions, an
// extent below 1 or more than MaxCells cells.
func CellCount(dims []int) (int, error) {
	if len(dims) == 0 || len(dims) > MaxDimensions {
		return 0, errors.Wrapf(ErrInvalidDimensions, "rank %d", len(dims))
	}
	total := 1
	for axis, n := range dims {
		if n < 1 {
			return 0, errors.Wrapf(ErrInvalidDimensions, "axis %d has extent %d", axis, n)
		}
		if total > MaxCells/n {
			return 0, errors.Wrapf(ErrInvalidDimensions, "%v exceeds %d cells", dims, MaxCells)
		}
		total *= n
	}
	return total, nil
}

// NewGrid returns a fully solid grid with every wall present.
func NewGrid(dims []int) (*Grid, error) {
	total, err := CellCount(dims)
	if err != nil {
		return nil, err
	}
	strides := make([]int, len(dims))
	stride := 1
	for axis := len(dims) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= dims[axis]
	}

	g := &Grid{
		dims:    append([]int(nil), dims...),
		strides: strides,
		dirs:    BuildDirections(dims),
		cells:   make([]bool, total),
		walls:   make([]uint64, total),
	}
	all := uint64(1)<<(2*len(dims)) - 1
	for i := range g.cells {
		g.cells[i] = true
		g.walls[i] = all
	}
	return g, nil
}

// Dimensions returns a copy of the per-axis extents.
func (g *Grid) Dimensions() []int { return append([]int(nil), g.dims...) }

// Rank returns the number of axes.
func (g *Grid) Rank() int { return len(g.dims) }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Directions returns the direction table for this grid's shape.
func (g *Grid) Directions() DirectionTable { return g.dirs }

// Contains reports whether pos lies inside the grid.
func (g *Grid) Contains(pos Position) bool {
	if len(pos) != len(g.dims) {
		return false
	}
	for axis, v := range pos {
		if v < 0 || v >= g.dims[axis] {
			return false
		}
	}
	return true
}

// Index converts pos to its flat cell index.
func (g *Grid) Index(pos Position) (int, error) {
	if len(pos) != len(g.dims) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "position %v on %d-D grid", pos, len(g.dims))
	}
	if !g.Contains(pos) {
		return 0, errors.Wrapf(ErrOutOfBounds, "position %v in %v", pos, g.dims)
	}
	return g.index(pos), nil
}

func (g *Grid) index(pos []int) int {
	i := 0
	for axis, v := range pos {
		i += v * g.strides[axis]
	}
	return i
}

// Position converts a flat index back to a coordinate.
func (g *Grid) Position(i int) Position {
	pos := make(Position, len(g.dims))
	for axis := range g.dims {
		pos[axis] = i / g.strides[axis]
		i %= g.strides[axis]
	}
	return pos
}

func (g *Grid) coord(i, axis int) int {
	return (i / g.strides[axis]) % g.dims[axis]
}

// neighborIndex is the flat-index form of DirectionTable.Neighbor.
func (g *Grid) neighborIndex(i, dir int) (int, bool) {
	axis := Axis(dir)
	v := g.coord(i, axis) + Sign(dir)
	if v < 0 || v >= g.dims[axis] {
		return 0, false
	}
	return i + Sign(dir)*g.strides[axis], true
}

// IsCellSolid reports whether the cell at pos is still unexcavated.
func (g *Grid) IsCellSolid(pos Position) (bool, error) {
	i, err := g.Index(pos)
	if err != nil {
		return false, err
	}
	return g.cells[i], nil
}

// WallState reports whether the wall of pos toward dir is present.
func (g *Grid) WallState(pos Position, dir int) (bool, error) {
	i, err := g.Index(pos)
	if err != nil {
		return false, err
	}
	if dir < 0 || dir >= g.dirs.Len() {
		return false, errors.Wrapf(ErrInvalidFace, "direction %d", dir)
	}
	return g.hasWall(i, dir), nil
}

// WallAt is the unchecked accessor used by renderers walking the grid in
// bounds. Positions outside the grid read as walled.
func (g *Grid) WallAt(pos []int, dir int) bool {
	if !g.Contains(pos) {
		return true
	}
	return g.hasWall(g.index(pos), dir)
}

// SolidAt is the unchecked counterpart of IsCellSolid. Positions outside the
// grid read as solid.
func (g *Grid) SolidAt(pos []int) bool {
	if !g.Contains(pos) {
		return true
	}
	return g.cells[g.index(pos)]
}

func (g *Grid) hasWall(i, dir int) bool { return g.walls[i]&(1<<uint(dir)) != 0 }

func (g *Grid) clearWall(i, dir int) { g.walls[i] &^= 1 << uint(dir) }

func (g *Grid) solidAt(i int) bool { return g.cells[i] }

func (g *Grid) excavate(i int) { g.cells[i] = false }

// RemoveWallBetween opens the shared wall of two unit-adjacent cells on both
// sides. It is the only way an interior wall is cleared.
func (g *Grid) RemoveWallBetween(a, b Position) error {
	ia, err := g.Index(a)
	if err != nil {
		return err
	}
	ib, err := g.Index(b)
	if err != nil {
		return err
	}
	dir, ok := directionBetween(a, b)
	if !ok {
		return errors.Wrapf(ErrInvalidAdjacency, "%v and %v", a, b)
	}
	g.removeWall(ia, ib, dir)
	return nil
}

func (g *Grid) removeWall(ia, ib, dir int) {
	g.clearWall(ia, dir)
	g.clearWall(ib, Mirror(dir))
}

// OpenBoundary clears the wall of pos toward dir when that wall faces outside
// the grid. Boundary walls have no counterpart, so symmetry is unaffected.
func (g *Grid) OpenBoundary(pos Position, dir int) error {
	i, err := g.Index(pos)
	if err != nil {
		return err
	}
	if dir < 0 || dir >= g.dirs.Len() {
		return errors.Wrapf(ErrInvalidFace, "direction %d", dir)
	}
	if _, inside := g.neighborIndex(i, dir); inside {
		return errors.Wrapf(ErrInvalidAdjacency, "%v is not on face %d", pos, dir)
	}
	g.clearWall(i, dir)
	return nil
}

// ExcavateRegion marks every cell of the box [position, position+shape) empty.
// Walls are left untouched.
func (g *Grid) ExcavateRegion(position, shape Position) error {
	if err := g.checkBox(position, shape); err != nil {
		return err
	}
	g.eachInBox(position, shape, func(i int) bool {
		g.excavate(i)
		return true
	})
	return nil
}

// SolidCount returns the number of cells not yet excavated.
func (g *Grid) SolidCount() int {
	n := 0
	for _, solid := range g.cells {
		if solid {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{
		dims:    append([]int(nil), g.dims...),
		strides: append([]int(nil), g.strides...),
		dirs:    g.dirs,
		cells:   append([]bool(nil), g.cells...),
		walls:   append([]uint64(nil), g.walls...),
	}
}

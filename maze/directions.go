package maze

// Position is a grid coordinate, one entry per axis.
type Position []int

// Clone returns an independent copy of p.
func (p Position) Clone() Position {
	return append(Position(nil), p...)
}

// Equal reports whether p and q name the same cell.
func (p Position) Equal(q Position) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// DirectionTable maps direction indices to unit offsets for one grid shape.
// Direction 2k steps +1 along axis k, direction 2k+1 steps -1 along axis k.
type DirectionTable struct {
	dims    []int
	offsets [][]int
}

// BuildDirections derives the 2D offset vectors for dims.
func BuildDirections(dims []int) DirectionTable {
	n := len(dims)
	t := DirectionTable{
		dims:    append([]int(nil), dims...),
		offsets: make([][]int, 2*n),
	}
	for dir := range t.offsets {
		off := make([]int, n)
		off[Axis(dir)] = Sign(dir)
		t.offsets[dir] = off
	}
	return t
}

// Len returns the number of directions (2D).
func (t DirectionTable) Len() int { return len(t.offsets) }

// Offset returns the unit vector of dir. The slice must not be modified.
func (t DirectionTable) Offset(dir int) []int { return t.offsets[dir] }

// Neighbor returns the cell one step from pos along dir, or false when that
// step would leave the grid.
func (t DirectionTable) Neighbor(pos Position, dir int) (Position, bool) {
	if dir < 0 || dir >= len(t.offsets) || len(pos) != len(t.dims) {
		return nil, false
	}
	axis := Axis(dir)
	v := pos[axis] + Sign(dir)
	if v < 0 || v >= t.dims[axis] {
		return nil, false
	}
	n := pos.Clone()
	n[axis] = v
	return n, true
}

// Mirror returns the opposite direction: same axis, flipped sign.
func Mirror(dir int) int { return dir ^ 1 }

// Axis returns the axis a direction moves along.
func Axis(dir int) int { return dir >> 1 }

// Sign returns +1 for even directions and -1 for odd ones.
func Sign(dir int) int {
	if dir&1 == 0 {
		return 1
	}
	return -1
}

// Direction is the inverse of Axis and Sign.
func Direction(axis, sign int) int {
	if sign < 0 {
		return 2*axis + 1
	}
	return 2 * axis
}

// directionBetween returns the direction leading from a to b when they differ
// by exactly one unit along exactly one axis.
func directionBetween(a, b Position) (int, bool) {
	if len(a) != len(b) {
		return 0, false
	}
	dir := -1
	for axis := range a {
		switch b[axis] - a[axis] {
		case 0:
			continue
		case 1, -1:
			if dir >= 0 {
				return 0, false
			}
			dir = Direction(axis, b[axis]-a[axis])
		default:
			return 0, false
		}
	}
	return dir, dir >= 0
}

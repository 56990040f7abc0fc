package maze

import "github.com/pkg/errors"

// DistanceField records, per cell, the carve-stack depth when the cell was
// last visited. It has the same shape and index layout as the Grid it was
// carved from.
type DistanceField struct {
	dims    []int
	strides []int
	values  []int
}

func newDistanceField(g *Grid) *DistanceField {
	return &DistanceField{
		dims:    append([]int(nil), g.dims...),
		strides: append([]int(nil), g.strides...),
		values:  make([]int, len(g.cells)),
	}
}

// Dimensions returns a copy of the per-axis extents.
func (d *DistanceField) Dimensions() []int { return append([]int(nil), d.dims...) }

// At returns the distance recorded at pos.
func (d *DistanceField) At(pos Position) (int, error) {
	if len(pos) != len(d.dims) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "position %v on %d-D field", pos, len(d.dims))
	}
	i := 0
	for axis, v := range pos {
		if v < 0 || v >= d.dims[axis] {
			return 0, errors.Wrapf(ErrOutOfBounds, "position %v in %v", pos, d.dims)
		}
		i += v * d.strides[axis]
	}
	return d.values[i], nil
}

// Max returns the largest recorded distance.
func (d *DistanceField) Max() int {
	m := 0
	for _, v := range d.values {
		m = max(m, v)
	}
	return m
}

// Values exposes the flat, row-major distance slice. Callers must treat it
// as read-only.
func (d *DistanceField) Values() []int { return d.values }

func (d *DistanceField) sameShape(g *Grid) bool {
	if len(d.dims) != len(g.dims) {
		return false
	}
	for i := range d.dims {
		if d.dims[i] != g.dims[i] {
			return false
		}
	}
	return true
}

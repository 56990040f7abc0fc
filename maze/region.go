package maze

import "github.com/pkg/errors"

// checkBox validates that [lo, lo+shape) is a non-empty box inside the grid.
func (g *Grid) checkBox(lo, shape Position) error {
	if len(lo) != len(g.dims) || len(shape) != len(g.dims) {
		return errors.Wrapf(ErrDimensionMismatch, "box %v+%v on %d-D grid", lo, shape, len(g.dims))
	}
	for axis := range g.dims {
		if shape[axis] < 1 || lo[axis] < 0 || lo[axis]+shape[axis] > g.dims[axis] {
			return errors.Wrapf(ErrOutOfBounds, "box %v+%v in %v", lo, shape, g.dims)
		}
	}
	return nil
}

// eachInBox visits the flat index of every cell in [lo, lo+shape) in
// ascending order. Iteration stops early when fn returns false, and the
// result reports whether it ran to completion. The box must be in bounds.
func (g *Grid) eachInBox(lo, shape []int, fn func(i int) bool) bool {
	n := len(g.dims)
	cur := append([]int(nil), lo...)
	base := g.index(lo)
	for {
		if !fn(base) {
			return false
		}
		// odometer step, last axis fastest
		axis := n - 1
		for ; axis >= 0; axis-- {
			cur[axis]++
			base += g.strides[axis]
			if cur[axis] < lo[axis]+shape[axis] {
				break
			}
			base -= shape[axis] * g.strides[axis]
			cur[axis] = lo[axis]
		}
		if axis < 0 {
			return true
		}
	}
}

// boxSolid reports whether every cell of the box is still solid.
func (g *Grid) boxSolid(lo, shape []int) bool {
	return g.eachInBox(lo, shape, g.solidAt)
}

// haloBox grows [lo, lo+shape) by margin cells on every side, clipped to the
// grid.
func (g *Grid) haloBox(lo, shape []int, margin int) (Position, Position) {
	hlo := make(Position, len(lo))
	hshape := make(Position, len(lo))
	for axis := range lo {
		a := max(lo[axis]-margin, 0)
		b := min(lo[axis]+shape[axis]+margin, g.dims[axis])
		hlo[axis] = a
		hshape[axis] = b - a
	}
	return hlo, hshape
}

// inBox reports whether flat index i lies within [lo, lo+shape).
func (g *Grid) inBox(i int, lo, shape []int) bool {
	for axis := range g.dims {
		v := g.coord(i, axis)
		if v < lo[axis] || v >= lo[axis]+shape[axis] {
			return false
		}
	}
	return true
}

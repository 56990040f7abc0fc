// Package voxel turns a cell-and-wall maze into a dense boolean volume.
package voxel

import "github.com/pkg/errors"

// ErrInvalidSize is returned for non-positive passage widths, wall
// thicknesses or volume extents.
var ErrInvalidSize = errors.New("voxel: invalid size")

// MaxVoxels bounds the voxel count of a single volume.
const MaxVoxels = 1 << 30

// Volume is a dense n-dimensional occupancy grid, row-major with the last
// axis varying fastest. true means solid.
type Volume struct {
	dims    []int
	strides []int
	data    []bool
}

// Count returns the number of voxels a volume with the given extents holds,
// or ErrInvalidSize if an extent is below 1 or the count exceeds MaxVoxels.
func Count(dims []int) (int, error) {
	if len(dims) == 0 {
		return 0, errors.Wrap(ErrInvalidSize, "volume needs at least one axis")
	}
	total := 1
	for axis, n := range dims {
		if n < 1 {
			return 0, errors.Wrapf(ErrInvalidSize, "axis %d has extent %d", axis, n)
		}
		if total > MaxVoxels/n {
			return 0, errors.Wrapf(ErrInvalidSize, "extents %v exceed %d voxels", dims, MaxVoxels)
		}
		total *= n
	}
	return total, nil
}

// NewVolume returns an empty volume with the given extents.
func NewVolume(dims []int) (*Volume, error) {
	total, err := Count(dims)
	if err != nil {
		return nil, err
	}
	strides := make([]int, len(dims))
	stride := 1
	for axis := len(dims) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= dims[axis]
	}
	return &Volume{
		dims:    append([]int(nil), dims...),
		strides: strides,
		data:    make([]bool, total),
	}, nil
}

// Dimensions returns a copy of the per-axis extents.
func (v *Volume) Dimensions() []int { return append([]int(nil), v.dims...) }

// Rank returns the number of axes.
func (v *Volume) Rank() int { return len(v.dims) }

// Len returns the number of voxels.
func (v *Volume) Len() int { return len(v.data) }

// Contains reports whether pos lies inside the volume.
func (v *Volume) Contains(pos []int) bool {
	if len(pos) != len(v.dims) {
		return false
	}
	for axis, p := range pos {
		if p < 0 || p >= v.dims[axis] {
			return false
		}
	}
	return true
}

// At reports whether the voxel at pos is solid. Positions outside the
// volume read as empty.
func (v *Volume) At(pos []int) bool {
	if !v.Contains(pos) {
		return false
	}
	return v.data[v.index(pos)]
}

// Set marks the voxel at pos. Out-of-range positions are ignored.
func (v *Volume) Set(pos []int, solid bool) {
	if v.Contains(pos) {
		v.data[v.index(pos)] = solid
	}
}

// Data exposes the flat backing slice.
func (v *Volume) Data() []bool { return v.data }

// SolidCount returns the number of solid voxels.
func (v *Volume) SolidCount() int {
	n := 0
	for _, s := range v.data {
		if s {
			n++
		}
	}
	return n
}

func (v *Volume) index(pos []int) int {
	i := 0
	for axis, p := range pos {
		i += p * v.strides[axis]
	}
	return i
}

package voxel

import "github.com/pkg/errors"

// Source is the read-only view of a maze the renderer needs. Direction 2k
// points along +axis k and 2k+1 along -axis k.
type Source interface {
	Dimensions() []int
	SolidAt(pos []int) bool
	WallAt(pos []int, dir int) bool
}

// Render expands every cell into a block of passageWidth+2*wallThickness
// voxels per axis. A walled face becomes a wallThickness-deep solid slab,
// the 2^D corner voxels of each block are always solid and an unexcavated
// cell renders fully solid.
func Render(src Source, passageWidth, wallThickness int) (*Volume, error) {
	if passageWidth < 1 {
		return nil, errors.Wrapf(ErrInvalidSize, "passage width %d", passageWidth)
	}
	if wallThickness < 1 {
		return nil, errors.Wrapf(ErrInvalidSize, "wall thickness %d", wallThickness)
	}
	if passageWidth > MaxVoxels || wallThickness > MaxVoxels {
		return nil, errors.Wrapf(ErrInvalidSize, "cell of %d+2*%d voxels", passageWidth, wallThickness)
	}
	dims := src.Dimensions()
	cellSize := passageWidth + 2*wallThickness
	out := make([]int, len(dims))
	for axis, d := range dims {
		if d > MaxVoxels/cellSize {
			return nil, errors.Wrapf(ErrInvalidSize, "axis %d: %d cells of %d voxels", axis, d, cellSize)
		}
		out[axis] = d * cellSize
	}
	vol, err := NewVolume(out)
	if err != nil {
		return nil, err
	}

	rank := len(dims)
	cell := make([]int, rank)
	local := make([]int, rank)
	walls := make([]bool, 2*rank)
	for {
		solid := src.SolidAt(cell)
		for dir := range walls {
			walls[dir] = src.WallAt(cell, dir)
		}
		base := 0
		for axis, c := range cell {
			base += c * cellSize * vol.strides[axis]
		}
		clear(local)
		for {
			if solid || blockVoxel(local, walls, cellSize, wallThickness) {
				i := base
				for axis, l := range local {
					i += l * vol.strides[axis]
				}
				vol.data[i] = true
			}
			if !advance(local, cellSize) {
				break
			}
		}
		if !advanceCell(cell, dims) {
			break
		}
	}
	return vol, nil
}

// blockVoxel decides one voxel of a cell block from its local coordinate.
func blockVoxel(local []int, walls []bool, cellSize, thickness int) bool {
	corner := true
	for axis, l := range local {
		if l < thickness && walls[2*axis+1] {
			return true
		}
		if l >= cellSize-thickness && walls[2*axis] {
			return true
		}
		if l != 0 && l != cellSize-1 {
			corner = false
		}
	}
	return corner
}

func advance(pos []int, extent int) bool {
	for axis := len(pos) - 1; axis >= 0; axis-- {
		pos[axis]++
		if pos[axis] < extent {
			return true
		}
		pos[axis] = 0
	}
	return false
}

func advanceCell(pos, dims []int) bool {
	for axis := len(pos) - 1; axis >= 0; axis-- {
		pos[axis]++
		if pos[axis] < dims[axis] {
			return true
		}
		pos[axis] = 0
	}
	return false
}

package maze

import (
	"slices"

	"github.com/pkg/errors"
)

// tiling maps segment-local cells into a grid made of layout[i] segments per
// axis.
type tiling struct {
	layout  []int
	segDims []int
	merged  *Grid
}

func newTiling(layout, segDims []int) (*tiling, error) {
	if len(layout) != len(segDims) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "layout %v for %d-D segments", layout, len(segDims))
	}
	dims := make([]int, len(layout))
	for axis, n := range layout {
		if n < 1 || segDims[axis] < 1 || n > MaxCells/segDims[axis] {
			return nil, errors.Wrapf(ErrInvalidDimensions, "layout %v of %v segments", layout, segDims)
		}
		dims[axis] = n * segDims[axis]
	}
	merged, err := NewGrid(dims)
	if err != nil {
		return nil, err
	}
	return &tiling{layout: append([]int(nil), layout...), segDims: append([]int(nil), segDims...), merged: merged}, nil
}

// segmentCount is the number of segments in the layout.
func (t *tiling) segmentCount() int { return boxVolume(t.layout) }

// slot converts a row-major segment number to its layout coordinate.
func (t *tiling) slot(k int) []int {
	pos := make([]int, len(t.layout))
	for axis := len(t.layout) - 1; axis >= 0; axis-- {
		pos[axis] = k % t.layout[axis]
		k /= t.layout[axis]
	}
	return pos
}

func (t *tiling) slotIndex(slot []int) int {
	k := 0
	for axis, v := range slot {
		k = k*t.layout[axis] + v
	}
	return k
}

// place converts a segment-local position to merged coordinates.
func (t *tiling) place(slot []int, local Position) Position {
	pos := make(Position, len(local))
	for axis, v := range local {
		pos[axis] = slot[axis]*t.segDims[axis] + v
	}
	return pos
}

// copySegment writes seg's cells and walls into its slot of the merged grid.
func (t *tiling) copySegment(slot []int, seg *Grid) {
	for i := range seg.cells {
		j := t.merged.index(t.place(slot, seg.Position(i)))
		t.merged.cells[j] = seg.cells[i]
		t.merged.walls[j] = seg.walls[i]
	}
}

// sealSeams opens the far side of every shared wall that is open on one side
// only. Inside a segment walls are already symmetric, so only seams change.
func (t *tiling) sealSeams() {
	g := t.merged
	for i := range g.cells {
		for axis := range g.dims {
			dir := Direction(axis, 1)
			j, ok := g.neighborIndex(i, dir)
			if ok && g.hasWall(i, dir) != g.hasWall(j, Mirror(dir)) {
				g.removeWall(i, j, dir)
			}
		}
	}
}

// MergeSegments tiles equally shaped grids into one. layout[i] is the number
// of segments along axis i and segments are listed in row-major layout order.
// A boundary wall opened on either side of a seam becomes a passage.
func MergeSegments(layout []int, segments []*Grid) (*Grid, error) {
	if len(segments) == 0 || segments[0] == nil {
		return nil, errors.Wrap(ErrInvalidOption, "no segments to merge")
	}
	t, err := newTiling(layout, segments[0].dims)
	if err != nil {
		return nil, err
	}
	if len(segments) != t.segmentCount() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d segments for layout %v", len(segments), layout)
	}
	for k, seg := range segments {
		if seg == nil || !slices.Equal(seg.dims, t.segDims) {
			return nil, errors.Wrapf(ErrDimensionMismatch, "segment %d differs from segment 0", k)
		}
		t.copySegment(t.slot(k), seg)
	}
	t.sealSeams()
	return t.merged, nil
}

// serpentine lists every layout slot so that consecutive slots differ by one
// step along one axis: a boustrophedon walk, axis 0 slowest.
func serpentine(layout []int) [][]int {
	n := boxVolume(layout)
	order := make([][]int, n)
	for q := range n {
		slot := make([]int, len(layout))
		inner := n
		for axis, c := range layout {
			inner /= c
			prefix := q / inner
			d := prefix % c
			if (prefix/c)%2 == 1 {
				d = c - 1 - d
			}
			slot[axis] = d
		}
		order[q] = slot
	}
	return order
}

// stepBetween returns the axis and sign of the unit step from a to b.
func stepBetween(a, b []int) (int, int) {
	for axis := range a {
		if d := b[axis] - a[axis]; d != 0 {
			return axis, d
		}
	}
	return 0, 0
}

// boundaryFaces lists the faces of slot that lie on the outside of the
// layout.
func boundaryFaces(layout, slot []int) []int {
	var faces []int
	for axis, v := range slot {
		if v == layout[axis]-1 {
			faces = append(faces, Direction(axis, 1))
		}
		if v == 0 {
			faces = append(faces, Direction(axis, -1))
		}
	}
	return faces
}

// GenerateChain carves layout[i] segments of opts.Dimensions per axis and
// joins them into one maze. Segments are visited in serpentine order: each
// segment's exit faces the next segment, whose start is the cell just across
// that face. Distances continue from one segment to the next, so the merged
// DistanceField still grows along the solution path. opts.ExitFace applies to
// the last segment and must lie on the outside of the layout.
func GenerateChain(opts Options, layout []int) (*Result, error) {
	if opts.Rand == nil {
		return nil, errors.Wrap(ErrInvalidOption, "a random source is required")
	}
	t, err := newTiling(layout, opts.Dimensions)
	if err != nil {
		return nil, err
	}
	order := serpentine(layout)
	last := order[len(order)-1]
	finalFace := opts.ExitFace
	outer := boundaryFaces(layout, last)
	if finalFace == AnyFace {
		finalFace = outer[opts.Rand.Intn(len(outer))]
	} else if !slices.Contains(outer, finalFace) {
		return nil, errors.Wrapf(ErrInvalidFace, "face %d of the last segment %v is not on the outside", finalFace, last)
	}

	log := loggerOrDiscard(opts.Logger)
	res := &Result{}
	segments := make([]*Grid, len(order))
	distances := make([]*DistanceField, len(order))
	offsets := make([]int, len(order))
	start := opts.Start
	total := 0
	for n, slot := range order {
		segOpts := opts
		segOpts.Start = start
		segOpts.SkipRender = true
		segOpts.ExitFace = finalFace
		axis, sign := 0, 0
		if n+1 < len(order) {
			axis, sign = stepBetween(slot, order[n+1])
			segOpts.ExitFace = Direction(axis, sign)
		}
		seg, err := carveGrid(segOpts)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %v", slot)
		}

		k := t.slotIndex(slot)
		segments[k], distances[k], offsets[k] = seg.Grid, seg.Distance, total
		exitDist, err := seg.Distance.At(seg.Exit)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %v exit", slot)
		}
		total += exitDist + 1
		res.Warnings = append(res.Warnings, seg.Warnings...)
		res.Shortcuts += seg.Shortcuts
		for _, j := range seg.Jumps {
			res.Jumps = append(res.Jumps, t.place(slot, j))
		}

		if n+1 < len(order) {
			start = seg.Exit.Clone()
			if sign > 0 {
				start[axis] = 0
			} else {
				start[axis] = opts.Dimensions[axis] - 1
			}
		} else {
			res.Exit, res.ExitFace = t.place(slot, seg.Exit), seg.ExitFace
		}
	}

	for k, seg := range segments {
		t.copySegment(t.slot(k), seg)
	}
	t.sealSeams()
	res.Grid = t.merged

	res.Distance = newDistanceField(res.Grid)
	for k, d := range distances {
		slot := t.slot(k)
		for i, v := range d.values {
			res.Distance.values[res.Grid.index(t.place(slot, segments[k].Position(i)))] = v + offsets[k]
		}
	}
	res.Components = Components(res.Grid)
	log.Info("chain joined", "segments", len(order), "dims", res.Grid.dims, "exit", res.Exit)

	if err := render(res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

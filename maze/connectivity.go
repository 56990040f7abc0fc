package maze

import "github.com/zyedidia/generic/mapset"

// Components counts the connected regions of empty cells, where two cells
// are connected when the wall between them is open.
func Components(g *Grid) int {
	visited := mapset.New[int]()
	queue := make([]int, 0, 64)
	ndir := g.dirs.Len()
	count := 0
	for start := range g.cells {
		if g.solidAt(start) || visited.Has(start) {
			continue
		}
		count++
		visited.Put(start)
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for dir := 0; dir < ndir; dir++ {
				if g.hasWall(cur, dir) {
					continue
				}
				n, ok := g.neighborIndex(cur, dir)
				if !ok || g.solidAt(n) || visited.Has(n) {
					continue
				}
				visited.Put(n)
				queue = append(queue, n)
			}
		}
	}
	return count
}

// OpenWallPairs counts interior walls that are open on both sides.
func OpenWallPairs(g *Grid) int {
	n := 0
	for i := range g.cells {
		for axis := range g.dims {
			dir := Direction(axis, 1)
			j, ok := g.neighborIndex(i, dir)
			if ok && !g.hasWall(i, dir) && !g.hasWall(j, Mirror(dir)) {
				n++
			}
		}
	}
	return n
}

// SymmetryViolations counts adjacent pairs whose shared wall is open on one
// side only. A grid only mutated through its own methods always reports 0.
func SymmetryViolations(g *Grid) int {
	n := 0
	for i := range g.cells {
		for axis := range g.dims {
			dir := Direction(axis, 1)
			j, ok := g.neighborIndex(i, dir)
			if ok && g.hasWall(i, dir) != g.hasWall(j, Mirror(dir)) {
				n++
			}
		}
	}
	return n
}

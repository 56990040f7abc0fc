package maze

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Carver runs a randomized depth-first carve with a per-axis straightness
// bias. Flatness has one value per axis; higher values favour long straight
// runs along that axis, lower values favour turning.
type Carver struct {
	Flatness []float64
	Rand     *rand.Rand
	Logger   *slog.Logger

	// StrictConnectivity makes a jump into an unreachable region an error
	// instead of a logged recovery.
	StrictConnectivity bool
}

// CarveResult is what a carve hands downstream.
type CarveResult struct {
	Distance *DistanceField
	// Jumps lists the cells the carver was forced to restart from because
	// every remaining solid cell was cut off from the carved region.
	Jumps []Position
}

// Carve excavates every solid cell of g starting at start, opening one wall
// per step so the carved passages form a tree on each reachable component.
func (c *Carver) Carve(g *Grid, start Position) (*CarveResult, error) {
	if len(c.Flatness) != g.Rank() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "flatness has %d values for %d axes", len(c.Flatness), g.Rank())
	}
	for axis, f := range c.Flatness {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Wrapf(ErrInvalidOption, "flatness[%d] = %v", axis, f)
		}
	}
	if c.Rand == nil {
		return nil, errors.Wrap(ErrInvalidOption, "carver needs a random source")
	}
	cur, err := g.Index(start)
	if err != nil {
		return nil, errors.Wrap(err, "carve start")
	}
	log := loggerOrDiscard(c.Logger)

	ndir := g.dirs.Len()
	weights := make([]float64, ndir)
	for dir := range weights {
		weights[dir] = axisWeight(c.Flatness[Axis(dir)])
	}

	dist := newDistanceField(g)
	res := &CarveResult{Distance: dist}
	remaining := g.SolidCount()
	if g.solidAt(cur) {
		g.excavate(cur)
		remaining--
	}

	stack := make([]int, 0, 64)
	candidates := make([]int, 0, ndir)
	next := make([]int, ndir)

	for remaining > 0 {
		candidates = candidates[:0]
		for dir := 0; dir < ndir; dir++ {
			n, ok := g.neighborIndex(cur, dir)
			if ok && g.solidAt(n) {
				candidates = append(candidates, dir)
				next[dir] = n
			}
		}

		switch {
		case len(candidates) > 0:
			dir := candidates[0]
			if len(candidates) > 1 {
				dir = weightedIndex(c.Rand, weights, candidates)
			}
			stack = append(stack, cur)
			dist.values[cur] = len(stack)
			g.removeWall(cur, next[dir], dir)
			cur = next[dir]
			g.excavate(cur)
			remaining--

		case len(stack) > 0:
			dist.values[cur] = len(stack)
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

		default:
			cur = c.jump(g, remaining)
			pos := g.Position(cur)
			if c.StrictConnectivity {
				return res, errors.Wrapf(ErrDisconnected, "%d solid cells unreachable, next at %v", remaining, pos)
			}
			log.Warn("carver jump", "position", pos, "remaining", remaining)
			res.Jumps = append(res.Jumps, pos)
			g.excavate(cur)
			remaining--
		}
	}
	dist.values[cur] = len(stack)
	return res, nil
}

// jump picks a uniformly random cell among the remaining solid ones.
func (c *Carver) jump(g *Grid, remaining int) int {
	k := c.Rand.Intn(remaining)
	for i, solid := range g.cells {
		if !solid {
			continue
		}
		if k == 0 {
			return i
		}
		k--
	}
	panic("maze: solid count out of sync")
}

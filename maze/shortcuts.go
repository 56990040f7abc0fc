package maze

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// ShortcutOptions adds loops to a carved maze.
type ShortcutOptions struct {
	// Density is the chance, per dead end, of opening one extra wall.
	Density float64
	// Strength bounds how far apart (as a share of the largest distance) the
	// two joined cells may be. 0.2 lets a shortcut skip at most 20% of the
	// longest path.
	Strength float64
}

func (o ShortcutOptions) validate() error {
	if math.IsNaN(o.Density) || o.Density < 0 || o.Density > 1 {
		return errors.Wrapf(ErrInvalidOption, "shortcuts: density %v", o.Density)
	}
	if math.IsNaN(o.Strength) || o.Strength < 0 || o.Strength > 1 {
		return errors.Wrapf(ErrInvalidOption, "shortcuts: strength %v", o.Strength)
	}
	return nil
}

// AddShortcuts joins dead ends to a neighbouring passage across a closed
// interior wall and returns the number of walls opened.
func AddShortcuts(g *Grid, dist *DistanceField, opts ShortcutOptions, rng *rand.Rand) (int, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}
	if opts.Density == 0 {
		return 0, nil
	}
	if dist == nil || !dist.sameShape(g) {
		return 0, errors.Wrap(ErrDimensionMismatch, "distance field does not match grid")
	}
	if rng == nil {
		return 0, errors.Wrap(ErrInvalidOption, "shortcuts need a random source")
	}

	limit := opts.Strength * float64(dist.Max())
	ndir := g.dirs.Len()
	candidates := make([]int, 0, ndir)
	next := make([]int, ndir)
	opened := 0
	for i := range g.cells {
		if g.solidAt(i) {
			continue
		}
		exits := 0
		candidates = candidates[:0]
		for dir := 0; dir < ndir; dir++ {
			j, ok := g.neighborIndex(i, dir)
			if !ok {
				continue
			}
			if !g.hasWall(i, dir) {
				exits++
				continue
			}
			gap := math.Abs(float64(dist.values[i] - dist.values[j]))
			if !g.solidAt(j) && gap <= limit {
				candidates = append(candidates, dir)
				next[dir] = j
			}
		}
		if exits != 1 || len(candidates) == 0 || rng.Float64() >= opts.Density {
			continue
		}
		dir := candidates[rng.Intn(len(candidates))]
		g.removeWall(i, next[dir], dir)
		opened++
	}
	return opened, nil
}

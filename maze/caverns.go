package maze

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// CavernOptions configures organically sized voids. Caverns are mainly meant
// for 3-D grids but work at any rank.
type CavernOptions struct {
	FillRatio       float64 // share of the grid volume to excavate, 0..1
	TypicalDiameter float64 // median diameter, in cells
	SizeDeviation   float64 // 0 gives identical caverns

	// AllowTouching drops the one-cell buffer so caverns may merge.
	AllowTouching bool

	MaxPlacementAttempts   int // tries per cavern; default 1000
	MaxConsecutiveFailures int // skipped caverns in a row before giving up; default 50
}

func (o CavernOptions) withDefaults() CavernOptions {
	if o.MaxPlacementAttempts <= 0 {
		o.MaxPlacementAttempts = 1000
	}
	if o.MaxConsecutiveFailures <= 0 {
		o.MaxConsecutiveFailures = 50
	}
	return o
}

func (o CavernOptions) validate() error {
	switch {
	case math.IsNaN(o.FillRatio) || o.FillRatio < 0 || o.FillRatio > 1:
		return errors.Wrapf(ErrInvalidOption, "caverns: fill ratio %v", o.FillRatio)
	case (o.FillRatio > 0 && !(o.TypicalDiameter > 0)) || math.IsInf(o.TypicalDiameter, 0):
		return errors.Wrapf(ErrInvalidOption, "caverns: typical diameter %v", o.TypicalDiameter)
	case math.IsNaN(o.SizeDeviation) || o.SizeDeviation < 0 || math.IsInf(o.SizeDeviation, 0):
		return errors.Wrapf(ErrInvalidOption, "caverns: size deviation %v", o.SizeDeviation)
	}
	return nil
}

// CavernReport summarizes an excavation.
type CavernReport struct {
	Placed   int
	Skipped  int
	Volume   int
	Warnings []error
}

// ExcavateCaverns places caverns until their combined volume reaches
// FillRatio of the grid. Each cavern is opened internally and joined to any
// empty cell it touches.
func ExcavateCaverns(g *Grid, opts CavernOptions, rng *rand.Rand, logger *slog.Logger) (CavernReport, error) {
	var rep CavernReport
	if err := opts.validate(); err != nil {
		return rep, err
	}
	if opts.FillRatio == 0 {
		return rep, nil
	}
	if rng == nil {
		return rep, errors.Wrap(ErrInvalidOption, "caverns need a random source")
	}
	opts = opts.withDefaults()
	log := loggerOrDiscard(logger)

	margin := 1
	if opts.AllowTouching {
		margin = 0
	}
	target := opts.FillRatio * float64(g.Len())
	failures := 0
	for float64(rep.Volume) < target {
		diameter := logNormal(rng, opts.TypicalDiameter, opts.SizeDeviation)
		shape := cavernShape(g.dims, diameter)
		lo, ok := placeBox(g, shape, margin, opts.MaxPlacementAttempts, rng)
		if !ok {
			rep.Skipped++
			failures++
			w := errors.Wrapf(ErrPlacementExhausted, "cavern %v after %d attempts", shape, opts.MaxPlacementAttempts)
			rep.Warnings = append(rep.Warnings, w)
			log.Warn("cavern skipped", "shape", shape)
			if failures >= opts.MaxConsecutiveFailures {
				break
			}
			continue
		}
		failures = 0
		g.openCavern(lo, shape)
		rep.Placed++
		rep.Volume += boxVolume(shape)
	}
	log.Debug("caverns placed", "placed", rep.Placed, "skipped", rep.Skipped, "volume", rep.Volume, "target", target)
	return rep, nil
}

// cavernShape turns a diameter into a box: an equal-volume cube stretched by
// the grid's aspect ratio relative to its shortest axis.
func cavernShape(dims []int, diameter float64) []int {
	n := len(dims)
	shortest := dims[0]
	for _, d := range dims {
		shortest = min(shortest, d)
	}
	ratioProduct := 1.0
	for _, d := range dims {
		ratioProduct *= float64(d) / float64(shortest)
	}
	side := diameter / math.Pow(ratioProduct, 1/float64(n))

	shape := make([]int, n)
	for axis, d := range dims {
		s := int(math.Round(side * float64(d) / float64(shortest)))
		shape[axis] = min(max(s, 1), d)
	}
	return shape
}

// openCavern excavates the box, opens every wall inside it and every wall
// between the box and an already empty neighbour.
func (g *Grid) openCavern(lo, shape []int) {
	g.eachInBox(lo, shape, func(i int) bool {
		g.excavate(i)
		return true
	})
	ndir := g.dirs.Len()
	g.eachInBox(lo, shape, func(i int) bool {
		for dir := 0; dir < ndir; dir++ {
			j, ok := g.neighborIndex(i, dir)
			if !ok {
				continue
			}
			if g.inBox(j, lo, shape) || !g.solidAt(j) {
				g.removeWall(i, j, dir)
			}
		}
		return true
	})
}

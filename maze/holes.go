package maze

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

const (
	holeDeviation       = 0.3
	holeVolumeTolerance = 0.02
	holeSideResamples   = 100
)

// HoleOptions configures rectangular voids placed before carving.
// Zero attempt limits select the defaults.
type HoleOptions struct {
	Volume float64 // target total volume, in cells
	Count  int

	MaxSizingAttempts    int // batch size draws; default 100000
	MaxPlacementAttempts int // tries per hole per batch; default 1000
	MaxBatchAttempts     int // layout restarts; default 10000 x Count
}

func (o HoleOptions) withDefaults() HoleOptions {
	if o.MaxSizingAttempts <= 0 {
		o.MaxSizingAttempts = 100000
	}
	if o.MaxPlacementAttempts <= 0 {
		o.MaxPlacementAttempts = 1000
	}
	if o.MaxBatchAttempts <= 0 {
		o.MaxBatchAttempts = 10000 * o.Count
	}
	return o
}

// HoleReport summarizes an excavation.
type HoleReport struct {
	Placed  int
	Volume  int
	Batches int
	// Warning is non-nil (wrapping ErrPlacementExhausted) when not every
	// hole could be sized or placed.
	Warning error
}

// ExcavateHoles sizes Count boxes whose volumes sum to within 2% of Volume
// and places them without overlap. Holes only flip occupancy.
func ExcavateHoles(g *Grid, opts HoleOptions, rng *rand.Rand, logger *slog.Logger) (HoleReport, error) {
	var rep HoleReport
	if opts.Count < 0 || opts.Volume < 0 || math.IsNaN(opts.Volume) || math.IsInf(opts.Volume, 0) {
		return rep, errors.Wrapf(ErrInvalidOption, "holes: volume %v, count %d", opts.Volume, opts.Count)
	}
	if opts.Count == 0 || opts.Volume == 0 {
		return rep, nil
	}
	if rng == nil {
		return rep, errors.Wrap(ErrInvalidOption, "holes need a random source")
	}
	opts = opts.withDefaults()
	log := loggerOrDiscard(logger)

	shapes, err := sizeHoles(g.dims, opts, rng)
	if err != nil {
		rep.Warning = err
		log.Warn("hole sizing exhausted", "volume", opts.Volume, "count", opts.Count)
		return rep, nil
	}

	snapshot := append([]bool(nil), g.cells...)
	for rep.Batches < opts.MaxBatchAttempts {
		rep.Batches++
		if rep.Batches > 1 {
			copy(g.cells, snapshot)
		}
		rep.Placed, rep.Volume = 0, 0
		for _, shape := range shapes {
			lo, ok := placeBox(g, shape, 0, opts.MaxPlacementAttempts, rng)
			if !ok {
				continue
			}
			g.eachInBox(lo, shape, func(i int) bool {
				g.excavate(i)
				return true
			})
			rep.Placed++
			rep.Volume += boxVolume(shape)
		}
		if rep.Placed == len(shapes) {
			log.Debug("hole batch placed", "holes", rep.Placed, "volume", rep.Volume, "batches", rep.Batches)
			return rep, nil
		}
	}

	rep.Warning = errors.Wrapf(ErrPlacementExhausted, "placed %d of %d holes after %d layouts", rep.Placed, len(shapes), rep.Batches)
	log.Warn("hole placement exhausted", "placed", rep.Placed, "wanted", len(shapes), "batches", rep.Batches)
	return rep, nil
}

// sizeHoles draws per-axis side lengths around an aspect-scaled average until
// the batch volume lands within tolerance of the target.
func sizeHoles(dims []int, opts HoleOptions, rng *rand.Rand) ([][]int, error) {
	n := len(dims)
	single := opts.Volume / float64(opts.Count)

	ratioProduct := 1.0
	ratios := make([]float64, n)
	for axis, d := range dims {
		ratios[axis] = float64(d) / float64(dims[0])
		ratioProduct *= ratios[axis]
	}
	first := math.Pow(single/ratioProduct, 1/float64(n))

	lowest := opts.Volume * (1 - holeVolumeTolerance)
	highest := opts.Volume * (1 + holeVolumeTolerance)
	shapes := make([][]int, opts.Count)
	for attempt := 0; attempt < opts.MaxSizingAttempts; attempt++ {
		total := 0.0
		for h := range shapes {
			shape := make([]int, n)
			for axis := range shape {
				shape[axis] = sampleSide(rng, ratios[axis]*first, dims[axis])
			}
			shapes[h] = shape
			total += float64(boxVolume(shape))
		}
		if total > lowest && total < highest {
			return shapes, nil
		}
	}
	return nil, errors.Wrapf(ErrPlacementExhausted, "hole sizes for volume %v did not converge", opts.Volume)
}

func sampleSide(rng *rand.Rand, mean float64, limit int) int {
	for range holeSideResamples {
		side := int(math.Round(mean + rng.NormFloat64()*mean*holeDeviation))
		if side >= 1 && side <= limit {
			return side
		}
	}
	return min(max(int(math.Round(mean)), 1), limit)
}

// placeBox tries random in-bounds origins for shape and returns the first
// whose box, grown by margin cells, is entirely solid.
func placeBox(g *Grid, shape []int, margin, attempts int, rng *rand.Rand) (Position, bool) {
	lo := make(Position, len(shape))
	for axis, s := range shape {
		if s > g.dims[axis] {
			return nil, false
		}
	}
	for range attempts {
		for axis, s := range shape {
			lo[axis] = rng.Intn(g.dims[axis] - s + 1)
		}
		hlo, hshape := g.haloBox(lo, shape, margin)
		if g.boxSolid(hlo, hshape) {
			return lo, true
		}
	}
	return nil, false
}

func boxVolume(shape []int) int {
	v := 1
	for _, s := range shape {
		v *= s
	}
	return v
}

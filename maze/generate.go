package maze

import (
	"log/slog"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/goocy/hypermaze/voxel"
)

// Options is the full input of one generation run.
type Options struct {
	Dimensions []int
	Start      Position
	Flatness   []float64

	Holes     *HoleOptions
	Caverns   *CavernOptions
	Shortcuts *ShortcutOptions

	// ExitFace is a face index in [0, 2D) or AnyFace. The zero value is
	// face 0 (+axis 0).
	ExitFace int

	PassageWidth  int
	WallThickness int
	// SkipRender leaves Result.Volume nil.
	SkipRender bool

	Rand   *rand.Rand
	Logger *slog.Logger

	StrictConnectivity bool
}

// Result is everything a run produces.
type Result struct {
	Grid     *Grid
	Distance *DistanceField
	Exit     Position
	ExitFace int
	Volume   *voxel.Volume

	Jumps      []Position
	Shortcuts  int
	Components int
	// Warnings collects the non-fatal placement failures of the excavators.
	Warnings []error
}

// Generate runs caverns, holes, the carver, shortcuts, exit selection and the
// renderer, in that order, on a fresh grid.
func Generate(opts Options) (*Result, error) {
	res, err := carveGrid(opts)
	if err != nil {
		return nil, err
	}
	if err := render(res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

func carveGrid(opts Options) (*Result, error) {
	if opts.Rand == nil {
		return nil, errors.Wrap(ErrInvalidOption, "a random source is required")
	}
	g, err := NewGrid(opts.Dimensions)
	if err != nil {
		return nil, err
	}
	if len(opts.Start) != g.Rank() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "start %v on %d-D grid", opts.Start, g.Rank())
	}
	if !g.Contains(opts.Start) {
		return nil, errors.Wrapf(ErrOutOfBounds, "start %v in %v", opts.Start, g.dims)
	}
	log := loggerOrDiscard(opts.Logger)
	res := &Result{Grid: g}

	if opts.Caverns != nil {
		rep, err := ExcavateCaverns(g, *opts.Caverns, opts.Rand, log)
		if err != nil {
			return nil, err
		}
		res.Warnings = append(res.Warnings, rep.Warnings...)
	}
	if opts.Holes != nil {
		rep, err := ExcavateHoles(g, *opts.Holes, opts.Rand, log)
		if err != nil {
			return nil, err
		}
		if rep.Warning != nil {
			res.Warnings = append(res.Warnings, rep.Warning)
		}
	}

	carver := &Carver{
		Flatness:           opts.Flatness,
		Rand:               opts.Rand,
		Logger:             log,
		StrictConnectivity: opts.StrictConnectivity,
	}
	carved, err := carver.Carve(g, opts.Start)
	if err != nil {
		return nil, err
	}
	res.Distance = carved.Distance
	res.Jumps = carved.Jumps

	if opts.Shortcuts != nil {
		if res.Shortcuts, err = AddShortcuts(g, res.Distance, *opts.Shortcuts, opts.Rand); err != nil {
			return nil, err
		}
	}

	if res.Exit, res.ExitFace, err = SelectExit(g, res.Distance, opts.ExitFace, opts.Rand); err != nil {
		return nil, err
	}
	exitDist, err := res.Distance.At(res.Exit)
	if err != nil {
		return nil, err
	}
	log.Info("exit selected", "face", res.ExitFace, "position", res.Exit, "distance", exitDist)

	res.Components = Components(g)
	if len(res.Jumps) > 0 {
		log.Warn("maze is disconnected", "components", res.Components, "jumps", len(res.Jumps))
	}
	return res, nil
}

func render(res *Result, opts Options) error {
	if opts.SkipRender {
		return nil
	}
	vol, err := voxel.Render(res.Grid, opts.PassageWidth, opts.WallThickness)
	if err != nil {
		return err
	}
	res.Volume = vol
	loggerOrDiscard(opts.Logger).Debug("render done", "dims", vol.Dimensions(), "solid", vol.SolidCount())
	return nil
}

package maze

import (
	"bytes"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/goocy/hypermaze/voxel"
)

func baseOptions(seed int64, dims ...int) Options {
	return Options{
		Dimensions:    dims,
		Start:         make(Position, len(dims)),
		Flatness:      make([]float64, len(dims)),
		PassageWidth:  2,
		WallThickness: 1,
		Rand:          rand.New(rand.NewSource(seed)),
	}
}

func TestGenerateSquareMaze(t *testing.T) {
	var buf bytes.Buffer
	opts := baseOptions(42, 5, 5)
	opts.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	res, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if n := OpenWallPairs(res.Grid); n != 24 {
		t.Errorf("OpenWallPairs = %d, want 24", n)
	}
	if n := boundaryOpenings(res.Grid); n != 1 {
		t.Errorf("%d boundary openings, want 1", n)
	}
	if res.ExitFace != 0 || res.Exit[0] != 4 {
		t.Errorf("exit %v on face %d, want the +x face", res.Exit, res.ExitFace)
	}
	exitDist, _ := res.Distance.At(res.Exit)
	for y := range 5 {
		if d, _ := res.Distance.At(Position{4, y}); d > exitDist {
			t.Errorf("cell (4, %d) has distance %d beyond the exit's %d", y, d, exitDist)
		}
	}
	if res.Components != 1 || len(res.Jumps) != 0 {
		t.Errorf("components %d, jumps %v", res.Components, res.Jumps)
	}
	if !slices.Equal(res.Volume.Dimensions(), []int{20, 20}) {
		t.Errorf("volume dims %v", res.Volume.Dimensions())
	}
	if !strings.Contains(buf.String(), "exit selected") {
		t.Errorf("log output missing exit line: %q", buf.String())
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(baseOptions(77, 6, 5, 4))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(baseOptions(77, 6, 5, 4))
	if err != nil {
		t.Fatal(err)
	}
	if !a.Exit.Equal(b.Exit) || !slices.Equal(a.Volume.Data(), b.Volume.Data()) {
		t.Fatal("same seed produced different mazes")
	}
}

func TestGenerateWithVoids(t *testing.T) {
	opts := baseOptions(5, 12, 12, 6)
	opts.Caverns = &CavernOptions{FillRatio: 0.1, TypicalDiameter: 3, SizeDeviation: 1}
	opts.Holes = &HoleOptions{Volume: 20, Count: 2}
	opts.Shortcuts = &ShortcutOptions{Density: 0.3, Strength: 0.2}
	opts.ExitFace = AnyFace

	res, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Grid.SolidCount() != 0 {
		t.Errorf("%d solid cells after carving", res.Grid.SolidCount())
	}
	if n := boundaryOpenings(res.Grid); n != 1 {
		t.Errorf("%d boundary openings, want 1", n)
	}
	if n := SymmetryViolations(res.Grid); n != 0 {
		t.Errorf("SymmetryViolations = %d", n)
	}
	if !slices.Equal(res.Volume.Dimensions(), []int{48, 48, 24}) {
		t.Errorf("volume dims %v", res.Volume.Dimensions())
	}
}

func TestGenerateSkipRender(t *testing.T) {
	opts := baseOptions(1, 3, 3)
	opts.SkipRender = true
	opts.PassageWidth = 0
	res, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Volume != nil {
		t.Error("volume rendered despite SkipRender")
	}
}

func TestGenerateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
		want   error
	}{
		{"no rand", func(o *Options) { o.Rand = nil }, ErrInvalidOption},
		{"bad dims", func(o *Options) { o.Dimensions = []int{4, 0} }, ErrInvalidDimensions},
		{"wrapping dims", func(o *Options) { o.Dimensions = []int{1 << 21, 1 << 21, 1 << 22} }, ErrInvalidDimensions},
		{"short start", func(o *Options) { o.Start = Position{0} }, ErrDimensionMismatch},
		{"start outside", func(o *Options) { o.Start = Position{0, 4} }, ErrOutOfBounds},
		{"short flatness", func(o *Options) { o.Flatness = []float64{1} }, ErrDimensionMismatch},
		{"bad face", func(o *Options) { o.ExitFace = 4 }, ErrInvalidFace},
		{"bad passage", func(o *Options) { o.PassageWidth = 0 }, voxel.ErrInvalidSize},
		{"huge volume", func(o *Options) { o.PassageWidth = 1 << 20 }, voxel.ErrInvalidSize},
		{"bad holes", func(o *Options) { o.Holes = &HoleOptions{Volume: -3, Count: 1} }, ErrInvalidOption},
	}
	for _, c := range cases {
		opts := baseOptions(1, 4, 4)
		c.mutate(&opts)
		if _, err := Generate(opts); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

package maze

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/pkg/errors"
)

// componentSizes returns the cell count of every connected empty region.
func componentSizes(g *Grid) []int {
	seen := make([]bool, g.Len())
	var sizes []int
	for start := range g.Len() {
		if seen[start] || g.solidAt(start) {
			continue
		}
		seen[start] = true
		stack := []int{start}
		size := 0
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			for dir := range g.dirs.Len() {
				n, ok := g.neighborIndex(cur, dir)
				if ok && !g.hasWall(cur, dir) && !g.solidAt(n) && !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
		sizes = append(sizes, size)
	}
	return sizes
}

func TestExcavateCavernsKeepsSpacing(t *testing.T) {
	g := mustGrid(t, 20, 20, 20)
	opts := CavernOptions{FillRatio: 0.1, TypicalDiameter: 4, SizeDeviation: 1}
	rep, err := ExcavateCaverns(g, opts, rand.New(rand.NewSource(3)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Placed == 0 {
		t.Fatal("no caverns placed")
	}
	if empty := g.Len() - g.SolidCount(); empty != rep.Volume {
		t.Fatalf("%d empty cells for a reported volume of %d", empty, rep.Volume)
	}
	// with the one-cell buffer every cavern stays its own region
	sizes := componentSizes(g)
	if len(sizes) != rep.Placed {
		t.Fatalf("%d regions for %d caverns", len(sizes), rep.Placed)
	}
	target := 0.1 * float64(g.Len())
	if rep.Skipped == 0 {
		if float64(rep.Volume) < target {
			t.Errorf("volume %d below target %v without skips", rep.Volume, target)
		}
		if float64(rep.Volume) >= target+float64(slices.Max(sizes)) {
			t.Errorf("volume %d overshoots target %v by more than one cavern", rep.Volume, target)
		}
	}
	if n := SymmetryViolations(g); n != 0 {
		t.Errorf("SymmetryViolations = %d", n)
	}
}

func TestCavernShape(t *testing.T) {
	if got := cavernShape([]int{10, 20, 40}, 8); !slices.Equal(got, []int{4, 8, 16}) {
		t.Errorf("stretched shape = %v, want [4 8 16]", got)
	}
	if got := cavernShape([]int{5, 5}, 100); !slices.Equal(got, []int{5, 5}) {
		t.Errorf("clamped shape = %v, want [5 5]", got)
	}
	if got := cavernShape([]int{9, 9}, 0.1); !slices.Equal(got, []int{1, 1}) {
		t.Errorf("tiny shape = %v, want [1 1]", got)
	}
}

func TestOpenCavernJoinsEmptyNeighbours(t *testing.T) {
	g := mustGrid(t, 5, 5)
	g.excavate(g.index([]int{0, 0}))
	g.openCavern([]int{1, 0}, []int{2, 2})

	open := func(a, b Position) bool {
		dir, _ := directionBetween(a, b)
		w, _ := g.WallState(a, dir)
		return !w
	}
	if !open(Position{1, 0}, Position{2, 0}) || !open(Position{1, 0}, Position{1, 1}) || !open(Position{2, 1}, Position{2, 0}) {
		t.Error("walls inside the cavern are not open")
	}
	if !open(Position{0, 0}, Position{1, 0}) {
		t.Error("cavern not joined to the empty neighbour")
	}
	if open(Position{0, 1}, Position{1, 1}) || open(Position{3, 0}, Position{2, 0}) {
		t.Error("wall toward a solid neighbour was opened")
	}
	if g.SolidCount() != 20 {
		t.Errorf("SolidCount = %d, want 20", g.SolidCount())
	}
	if n := SymmetryViolations(g); n != 0 {
		t.Errorf("SymmetryViolations = %d", n)
	}
}

func TestExcavateCavernsValidation(t *testing.T) {
	g := mustGrid(t, 4, 4)
	bad := []CavernOptions{
		{FillRatio: 1.5, TypicalDiameter: 2},
		{FillRatio: 0.2},
		{FillRatio: 0.2, TypicalDiameter: 2, SizeDeviation: -1},
	}
	for _, opts := range bad {
		if _, err := ExcavateCaverns(g, opts, rand.New(rand.NewSource(1)), nil); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("%+v: err = %v", opts, err)
		}
	}
	rep, err := ExcavateCaverns(g, CavernOptions{}, nil, nil)
	if err != nil || rep.Placed != 0 {
		t.Errorf("zero fill ratio: %+v, %v", rep, err)
	}
}

func TestExcavateCavernsGivesUp(t *testing.T) {
	// every 2x2 box on a 3x3 grid overlaps every other one
	g := mustGrid(t, 3, 3)
	opts := CavernOptions{FillRatio: 1, TypicalDiameter: 2, MaxPlacementAttempts: 5, MaxConsecutiveFailures: 4}
	rep, err := ExcavateCaverns(g, opts, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Placed != 1 || rep.Volume != 4 {
		t.Fatalf("placed %d caverns with volume %d, want one 2x2", rep.Placed, rep.Volume)
	}
	if rep.Skipped != 4 || len(rep.Warnings) != 4 {
		t.Fatalf("skipped %d with %d warnings, want 4", rep.Skipped, len(rep.Warnings))
	}
	if !errors.Is(rep.Warnings[0], ErrPlacementExhausted) {
		t.Errorf("warning = %v", rep.Warnings[0])
	}
}

func TestLogNormalDispersion(t *testing.T) {
	// deviation equal to the median: 5% of draws above 3x, 5% below 1/3
	const median, n = 4.0, 10000
	rng := rand.New(rand.NewSource(11))
	draws := make([]float64, n)
	for i := range draws {
		draws[i] = logNormal(rng, median, median)
	}
	slices.Sort(draws)
	if p50 := draws[n/2] / median; p50 < 0.95 || p50 > 1.05 {
		t.Errorf("median ratio %.3f", p50)
	}
	if p95 := draws[n*95/100] / median; p95 < 2.7 || p95 > 3.6 {
		t.Errorf("95th percentile at %.2fx the median, want about 3x", p95)
	}
	if p5 := draws[n*5/100] / median; p5 < 1/3.6 || p5 > 1/2.7 {
		t.Errorf("5th percentile at %.3fx the median, want about 1/3", p5)
	}
}

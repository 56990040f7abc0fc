package maze

import (
	"testing"

	"github.com/pkg/errors"
)

func mustGrid(t *testing.T, dims ...int) *Grid {
	t.Helper()
	g, err := NewGrid(dims)
	if err != nil {
		t.Fatalf("NewGrid(%v): %v", dims, err)
	}
	return g
}

func TestNewGridStartsSolidAndWalled(t *testing.T) {
	g := mustGrid(t, 3, 4, 2)
	if g.Len() != 24 || g.SolidCount() != 24 {
		t.Fatalf("len %d solid %d, want 24/24", g.Len(), g.SolidCount())
	}
	for i := range g.Len() {
		pos := g.Position(i)
		solid, err := g.IsCellSolid(pos)
		if err != nil || !solid {
			t.Fatalf("cell %v solid=%v err=%v", pos, solid, err)
		}
		for dir := range g.Directions().Len() {
			wall, err := g.WallState(pos, dir)
			if err != nil || !wall {
				t.Fatalf("wall %v/%d = %v, err=%v", pos, dir, wall, err)
			}
		}
	}
}

func TestNewGridRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][]int{nil, {}, {3, 0}, {-1}, make([]int, MaxDimensions+1), {1 << 21, 1 << 21, 1 << 22}, {1 << 13, 1 << 14}} {
		if _, err := NewGrid(dims); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewGrid(%v) err = %v, want ErrInvalidDimensions", dims, err)
		}
	}
}

func TestIndexPositionRoundTrip(t *testing.T) {
	g := mustGrid(t, 2, 3, 4)
	for i := range g.Len() {
		j, err := g.Index(g.Position(i))
		if err != nil || j != i {
			t.Fatalf("Index(Position(%d)) = %d, %v", i, j, err)
		}
	}
	// last axis varies fastest
	if i, _ := g.Index(Position{0, 0, 1}); i != 1 {
		t.Fatalf("Index(0,0,1) = %d, want 1", i)
	}
	if i, _ := g.Index(Position{1, 0, 0}); i != 12 {
		t.Fatalf("Index(1,0,0) = %d, want 12", i)
	}
}

func TestRemoveWallBetweenIsSymmetric(t *testing.T) {
	g := mustGrid(t, 3, 3, 3)
	a, b := Position{1, 1, 1}, Position{1, 2, 1}
	if err := g.RemoveWallBetween(a, b); err != nil {
		t.Fatal(err)
	}
	if w, _ := g.WallState(a, 2); w {
		t.Error("wall of a toward b still present")
	}
	if w, _ := g.WallState(b, 3); w {
		t.Error("wall of b toward a still present")
	}
	if w, _ := g.WallState(a, 0); !w {
		t.Error("unrelated wall of a was cleared")
	}
	if n := OpenWallPairs(g); n != 1 {
		t.Errorf("OpenWallPairs = %d, want 1", n)
	}
	if n := SymmetryViolations(g); n != 0 {
		t.Errorf("SymmetryViolations = %d", n)
	}

	// reversed argument order opens the same wall
	if err := g.RemoveWallBetween(Position{0, 0, 0}, Position{0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveWallBetween(Position{2, 2, 2}, Position{1, 2, 2}); err != nil {
		t.Fatal(err)
	}
	if n := OpenWallPairs(g); n != 3 {
		t.Errorf("OpenWallPairs = %d, want 3", n)
	}
	if n := SymmetryViolations(g); n != 0 {
		t.Errorf("SymmetryViolations = %d", n)
	}
}

func TestRemoveWallBetweenErrors(t *testing.T) {
	g := mustGrid(t, 5, 5)
	cases := []struct {
		a, b Position
		want error
	}{
		{Position{0, 0}, Position{1, 1}, ErrInvalidAdjacency},
		{Position{0, 0}, Position{0, 2}, ErrInvalidAdjacency},
		{Position{2, 2}, Position{2, 2}, ErrInvalidAdjacency},
		{Position{0, 0}, Position{-1, 0}, ErrOutOfBounds},
		{Position{4, 4}, Position{5, 4}, ErrOutOfBounds},
		{Position{0, 0}, Position{0, 0, 1}, ErrDimensionMismatch},
	}
	for _, c := range cases {
		if err := g.RemoveWallBetween(c.a, c.b); !errors.Is(err, c.want) {
			t.Errorf("RemoveWallBetween(%v, %v) = %v, want %v", c.a, c.b, err, c.want)
		}
	}
	if n := OpenWallPairs(g); n != 0 {
		t.Errorf("failed calls opened %d walls", n)
	}
}

func TestAccessorsReportBadPositions(t *testing.T) {
	g := mustGrid(t, 5, 5)
	if _, err := g.IsCellSolid(Position{5, 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("IsCellSolid out of bounds: %v", err)
	}
	if _, err := g.IsCellSolid(Position{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("IsCellSolid short position: %v", err)
	}
	if _, err := g.WallState(Position{0, 0}, 4); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("WallState bad direction: %v", err)
	}
	if !g.WallAt([]int{-1, 0}, 0) || !g.SolidAt([]int{0, 7}) {
		t.Error("outside positions should read as walled and solid")
	}
}

func TestExcavateRegion(t *testing.T) {
	g := mustGrid(t, 4, 4)
	if err := g.ExcavateRegion(Position{1, 1}, Position{2, 3}); err != nil {
		t.Fatal(err)
	}
	if g.SolidCount() != 10 {
		t.Fatalf("SolidCount = %d, want 10", g.SolidCount())
	}
	for _, p := range []Position{{1, 1}, {2, 3}, {1, 2}} {
		if s, _ := g.IsCellSolid(p); s {
			t.Errorf("%v still solid", p)
		}
	}
	if s, _ := g.IsCellSolid(Position{0, 1}); !s {
		t.Error("cell outside region was excavated")
	}
	if n := OpenWallPairs(g); n != 0 {
		t.Errorf("ExcavateRegion opened %d walls", n)
	}
	if err := g.ExcavateRegion(Position{3, 3}, Position{2, 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("overhanging region: %v", err)
	}
	if err := g.ExcavateRegion(Position{0}, Position{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("short region: %v", err)
	}
}

func TestOpenBoundary(t *testing.T) {
	g := mustGrid(t, 3, 3)
	if err := g.OpenBoundary(Position{1, 1}, 0); !errors.Is(err, ErrInvalidAdjacency) {
		t.Errorf("interior wall: %v", err)
	}
	if err := g.OpenBoundary(Position{2, 1}, 0); err != nil {
		t.Fatal(err)
	}
	if w, _ := g.WallState(Position{2, 1}, 0); w {
		t.Error("boundary wall still present")
	}
	if n := SymmetryViolations(g); n != 0 {
		t.Errorf("SymmetryViolations = %d", n)
	}
}

func TestDirectionTable(t *testing.T) {
	dt := BuildDirections([]int{3, 3})
	if dt.Len() != 4 {
		t.Fatalf("Len = %d", dt.Len())
	}
	if n, ok := dt.Neighbor(Position{0, 0}, 0); !ok || !n.Equal(Position{1, 0}) {
		t.Errorf("+x neighbour = %v, %v", n, ok)
	}
	if n, ok := dt.Neighbor(Position{0, 0}, 2); !ok || !n.Equal(Position{0, 1}) {
		t.Errorf("+y neighbour = %v, %v", n, ok)
	}
	if _, ok := dt.Neighbor(Position{0, 0}, 1); ok {
		t.Error("-x neighbour of origin should not exist")
	}
	if _, ok := dt.Neighbor(Position{2, 2}, 2); ok {
		t.Error("+y neighbour of far corner should not exist")
	}
	for dir := range dt.Len() {
		m := Mirror(dir)
		if Axis(m) != Axis(dir) || Sign(m) != -Sign(dir) || Mirror(m) != dir {
			t.Errorf("Mirror(%d) = %d", dir, m)
		}
		if Direction(Axis(dir), Sign(dir)) != dir {
			t.Errorf("Direction round trip for %d", dir)
		}
	}
	if off := dt.Offset(3); off[0] != 0 || off[1] != -1 {
		t.Errorf("Offset(3) = %v", off)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := mustGrid(t, 2, 2)
	c := g.Clone()
	if err := c.RemoveWallBetween(Position{0, 0}, Position{0, 1}); err != nil {
		t.Fatal(err)
	}
	if OpenWallPairs(g) != 0 || OpenWallPairs(c) != 1 {
		t.Error("clone shares wall storage")
	}
}

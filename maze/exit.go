package maze

import (
	"math/rand"

	"github.com/pkg/errors"
)

// AnyFace asks SelectExit to choose a face at random.
const AnyFace = -1

// SelectExit opens the boundary wall of the cell with the greatest distance
// on the requested face. Face f is the side reached by stepping in direction
// f, so face 2k is the layer at index dims[k]-1 and face 2k+1 is layer 0.
// Ties go to the lowest flat index. It returns the exit cell and the face
// actually used.
func SelectExit(g *Grid, dist *DistanceField, face int, rng *rand.Rand) (Position, int, error) {
	nfaces := g.dirs.Len()
	if face == AnyFace {
		if rng == nil {
			return nil, 0, errors.Wrap(ErrInvalidOption, "random exit face needs a random source")
		}
		face = rng.Intn(nfaces)
	}
	if face < 0 || face >= nfaces {
		return nil, 0, errors.Wrapf(ErrInvalidFace, "face %d of %d", face, nfaces)
	}
	if dist == nil || !dist.sameShape(g) {
		return nil, 0, errors.Wrap(ErrDimensionMismatch, "distance field does not match grid")
	}

	axis := Axis(face)
	lo := make([]int, g.Rank())
	shape := g.Dimensions()
	if Sign(face) > 0 {
		lo[axis] = g.dims[axis] - 1
	}
	shape[axis] = 1

	best, bestValue := -1, -1
	g.eachInBox(lo, shape, func(i int) bool {
		if v := dist.values[i]; v > bestValue {
			best, bestValue = i, v
		}
		return true
	})

	pos := g.Position(best)
	if err := g.OpenBoundary(pos, face); err != nil {
		return nil, 0, err
	}
	return pos, face, nil
}

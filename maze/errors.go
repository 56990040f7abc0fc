package maze

import "github.com/pkg/errors"

var (
	// ErrOutOfBounds reports a coordinate outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidAdjacency reports a wall removal between cells that are not unit neighbours.
	ErrInvalidAdjacency = errors.New("cells are not adjacent")
	// ErrInvalidFace reports an exit face index outside [0, 2D).
	ErrInvalidFace = errors.New("invalid face index")
	// ErrDimensionMismatch reports a per-axis vector whose length differs from the grid's dimensionality.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrPlacementExhausted reports a hole or cavern that could not be placed within its attempt budget.
	// It is non-fatal and is collected as a warning.
	ErrPlacementExhausted = errors.New("placement attempts exhausted")
	// ErrDisconnected is returned when the carver has to jump to an unreachable region
	// and Options.StrictConnectivity is set.
	ErrDisconnected = errors.New("unreachable region")

	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidOption     = errors.New("invalid option")
)

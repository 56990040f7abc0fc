package config

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"os"
	"slices"

	"github.com/pkg/errors"

	"github.com/goocy/hypermaze/maze"
	"github.com/goocy/hypermaze/vopl"
	"github.com/goocy/hypermaze/voxel"
)

// HoleConfig mirrors maze.HoleOptions.
type HoleConfig struct {
	Volume float64 `json:"volume"`
	Count  int     `json:"count"`
}

// CavernConfig mirrors maze.CavernOptions.
type CavernConfig struct {
	FillRatio       float64 `json:"fill_ratio"`
	TypicalDiameter float64 `json:"typical_diameter"`
	SizeDeviation   float64 `json:"size_deviation"`
	AllowTouching   bool    `json:"allow_touching"`
}

// ShortcutConfig mirrors maze.ShortcutOptions.
type ShortcutConfig struct {
	Density  float64 `json:"density"`
	Strength float64 `json:"strength"`
}

// Config is the JSON description of a maze run.
type Config struct {
	Dimensions []int     `json:"dimensions"`
	Start      []int     `json:"start,omitempty"`    // default: origin
	Flatness   []float64 `json:"flatness,omitempty"` // default: 0 on every axis
	Seed       int64     `json:"seed"`               // 0 = derive from clock

	Holes     *HoleConfig     `json:"holes,omitempty"`
	Caverns   *CavernConfig   `json:"caverns,omitempty"`
	Shortcuts *ShortcutConfig `json:"shortcuts,omitempty"`

	ExitFace      *int `json:"exit_face,omitempty"` // nil = random face
	PassageWidth  int  `json:"passage_width"`
	WallThickness int  `json:"wall_thickness"`

	// Chain, when set, builds the maze from chain[i] segments of Dimensions
	// per axis.
	Chain              []int `json:"chain,omitempty"`
	StrictConnectivity bool  `json:"strict_connectivity"`

	Compression string `json:"compression"` // none, zlib, zstd
	PackLayout  string `json:"pack_layout"` // raw, cdc
}

// DefaultConfig returns a small 2-D maze.
func DefaultConfig() *Config {
	return &Config{
		Dimensions:    []int{10, 10},
		PassageWidth:  2,
		WallThickness: 1,
		Compression:   "zstd",
		PackLayout:    "raw",
	}
}

// Parse overlays JSON onto the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Validate checks everything that can be checked without running the
// generator.
func (c *Config) Validate() error {
	if _, err := maze.CellCount(c.Dimensions); err != nil {
		return errors.Wrap(err, "dimensions")
	}
	d := len(c.Dimensions)
	if c.Start != nil {
		if len(c.Start) != d {
			return errors.Wrapf(maze.ErrDimensionMismatch, "start has %d values for %d axes", len(c.Start), d)
		}
		for axis, v := range c.Start {
			if v < 0 || v >= c.Dimensions[axis] {
				return errors.Wrapf(maze.ErrOutOfBounds, "start %v in %v", c.Start, c.Dimensions)
			}
		}
	}
	if c.Flatness != nil && len(c.Flatness) != d {
		return errors.Wrapf(maze.ErrDimensionMismatch, "flatness has %d values for %d axes", len(c.Flatness), d)
	}
	if c.ExitFace != nil && (*c.ExitFace < 0 || *c.ExitFace >= 2*d) {
		return errors.Wrapf(maze.ErrInvalidFace, "exit_face %d of %d", *c.ExitFace, 2*d)
	}
	if c.Chain != nil && len(c.Chain) != d {
		return errors.Wrapf(maze.ErrDimensionMismatch, "chain has %d values for %d axes", len(c.Chain), d)
	}
	grid := slices.Clone(c.Dimensions)
	for axis, n := range c.Chain {
		if n < 1 || n > maze.MaxCells/grid[axis] {
			return errors.Wrapf(maze.ErrInvalidDimensions, "chain[%d] = %d", axis, n)
		}
		grid[axis] *= n
	}
	if _, err := maze.CellCount(grid); err != nil {
		return errors.Wrap(err, "chained dimensions")
	}
	if c.PassageWidth < 1 || c.WallThickness < 1 {
		return errors.Wrapf(maze.ErrInvalidOption, "passage_width %d, wall_thickness %d", c.PassageWidth, c.WallThickness)
	}
	if err := checkVolume(grid, c.PassageWidth, c.WallThickness); err != nil {
		return err
	}
	if _, err := vopl.ParseCompression(c.Compression); err != nil {
		return errors.Wrap(maze.ErrInvalidOption, err.Error())
	}
	if _, err := vopl.ParseLayout(c.PackLayout); err != nil {
		return errors.Wrap(maze.ErrInvalidOption, err.Error())
	}
	return nil
}

// Rand returns the seeded random source for this config.
func (c *Config) Rand() *rand.Rand { return maze.NewRand(c.Seed) }

// Options translates the config into generator options.
func (c *Config) Options(rng *rand.Rand, log *slog.Logger) maze.Options {
	d := len(c.Dimensions)
	opts := maze.Options{
		Dimensions:         append([]int(nil), c.Dimensions...),
		Start:              make(maze.Position, d),
		Flatness:           make([]float64, d),
		ExitFace:           maze.AnyFace,
		PassageWidth:       c.PassageWidth,
		WallThickness:      c.WallThickness,
		Rand:               rng,
		Logger:             log,
		StrictConnectivity: c.StrictConnectivity,
	}
	copy(opts.Start, c.Start)
	copy(opts.Flatness, c.Flatness)
	if c.ExitFace != nil {
		opts.ExitFace = *c.ExitFace
	}
	if c.Holes != nil {
		opts.Holes = &maze.HoleOptions{Volume: c.Holes.Volume, Count: c.Holes.Count}
	}
	if c.Caverns != nil {
		opts.Caverns = &maze.CavernOptions{
			FillRatio:       c.Caverns.FillRatio,
			TypicalDiameter: c.Caverns.TypicalDiameter,
			SizeDeviation:   c.Caverns.SizeDeviation,
			AllowTouching:   c.Caverns.AllowTouching,
		}
	}
	if c.Shortcuts != nil {
		opts.Shortcuts = &maze.ShortcutOptions{Density: c.Shortcuts.Density, Strength: c.Shortcuts.Strength}
	}
	return opts
}

// Generate validates the config and runs the generator, chained when Chain
// is set.
func (c *Config) Generate(rng *rand.Rand, log *slog.Logger) (*maze.Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := c.Options(rng, log)
	if c.Chain != nil {
		return maze.GenerateChain(opts, c.Chain)
	}
	return maze.Generate(opts)
}

// Pack returns the pack layout and compression named by the config.
func (c *Config) Pack() (vopl.Layout, vopl.Compression, error) {
	layout, err := vopl.ParseLayout(c.PackLayout)
	if err != nil {
		return 0, 0, err
	}
	comp, err := vopl.ParseCompression(c.Compression)
	if err != nil {
		return 0, 0, err
	}
	return layout, comp, nil
}

// checkVolume rejects mazes whose rendered volume would exceed
// voxel.MaxVoxels.
func checkVolume(grid []int, passageWidth, wallThickness int) error {
	if passageWidth > voxel.MaxVoxels || wallThickness > voxel.MaxVoxels {
		return errors.Wrapf(voxel.ErrInvalidSize, "passage_width %d, wall_thickness %d", passageWidth, wallThickness)
	}
	cellSize := passageWidth + 2*wallThickness
	extents := make([]int, len(grid))
	for axis, n := range grid {
		if n > voxel.MaxVoxels/cellSize {
			return errors.Wrapf(voxel.ErrInvalidSize, "%d cells of %d voxels", n, cellSize)
		}
		extents[axis] = n * cellSize
	}
	_, err := voxel.Count(extents)
	return err
}

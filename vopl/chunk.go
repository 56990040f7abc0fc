package vopl

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ChunkSize is the edge length of a chunk in voxels.
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

// Chunk[y][x][z] holds palette indices; 0 is empty.
type Chunk [ChunkSize][ChunkSize][ChunkSize]uint8

// Palette indices used for maze volumes.
const (
	MaterialEmpty uint8 = 0
	MaterialWall  uint8 = 1
	MaterialFloor uint8 = 2 // lowest layer of a 3-D volume
)

const (
	chunkBPP       = 2
	paletteVersion = 1
)

// Palette maps material indices to #RRGGBBAA colors.
var Palette = []string{
	"#00000000",
	"#8C8C96FF",
	"#5A4E44FF",
}

// ParseHexColor converts #RGB, #RRGGBB or #RRGGBBAA to linear 0..1 floats.
func ParseHexColor(s string) ([4]float32, error) {
	rgba := [4]float32{0, 0, 0, 1}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return rgba, errors.Errorf("bad color %q", s)
	}
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return rgba, errors.Wrapf(err, "bad color %q", s)
		}
		rgba[i] = float32(v) / 255
	}
	return rgba, nil
}

func (c *Chunk) empty() bool {
	for y := range ChunkSize {
		for x := range ChunkSize {
			for z := range ChunkSize {
				if c[y][x][z] != MaterialEmpty {
					return false
				}
			}
		}
	}
	return true
}

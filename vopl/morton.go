package vopl

func expand3(v uint32) uint32 {
	v = (v | (v << 16)) & 0x030000FF
	v = (v | (v << 8)) & 0x0300F00F
	v = (v | (v << 4)) & 0x030C30C3
	v = (v | (v << 2)) & 0x09249249
	return v
}

func morton3D(x, y, z uint32) uint32 {
	return expand3(x) | (expand3(y) << 1) | (expand3(z) << 2)
}

// mortonOrder[rank] is the flat Chunk index ((y*16)+x)*16+z of the voxel at
// that Morton rank. ChunkSize is a power of two, so Morton keys of in-chunk
// coordinates are exactly 0..chunkVolume-1.
var mortonOrder [chunkVolume]uint16

func init() {
	for y := range ChunkSize {
		for x := range ChunkSize {
			for z := range ChunkSize {
				lin := (y*ChunkSize+x)*ChunkSize + z
				mortonOrder[morton3D(uint32(x), uint32(y), uint32(z))] = uint16(lin)
			}
		}
	}
}

// flatten returns the chunk's voxels in Morton order, which keeps spatially
// close voxels close in the stream.
func flatten(c *Chunk) []uint8 {
	stream := make([]uint8, chunkVolume)
	for rank, lin := range mortonOrder {
		stream[rank] = c.at(int(lin))
	}
	return stream
}

func applyOrder(c *Chunk, stream []uint8) {
	for rank, lin := range mortonOrder {
		c.set(int(lin), stream[rank])
	}
}

func (c *Chunk) at(lin int) uint8 {
	return c[lin/(ChunkSize*ChunkSize)][(lin/ChunkSize)%ChunkSize][lin%ChunkSize]
}

func (c *Chunk) set(lin int, v uint8) {
	c[lin/(ChunkSize*ChunkSize)][(lin/ChunkSize)%ChunkSize][lin%ChunkSize] = v
}

// Morton3D64 interleaves three 21-bit coordinates. Packs order their chunks
// by it so neighbouring chunks sit next to each other.
func Morton3D64(x, y, z uint32) uint64 {
	return part1By2(uint64(x)) |
		(part1By2(uint64(y)) << 1) |
		(part1By2(uint64(z)) << 2)
}

func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}

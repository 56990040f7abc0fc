package vopl

import (
	"encoding/binary"
	"fmt"
	"slices"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/goocy/hypermaze/voxel"
)

// manifestName is the pack entry carrying the exported volume's extents.
const (
	manifestName = "volume.dims"
	encManifest  = 0x7E
)

// view lifts a rank 1..3 volume into x/y/z space: axis 0 is x, axis 1 is z
// and axis 2 is y (up), so 2-D mazes lie flat.
type view struct {
	vol  *voxel.Volume
	size [3]int // x, y, z
	pos  []int
}

func newView(vol *voxel.Volume) (*view, error) {
	dims := vol.Dimensions()
	if len(dims) > 3 {
		return nil, errors.Wrapf(ErrUnsupportedDims, "rank %d", len(dims))
	}
	v := &view{vol: vol, size: [3]int{1, 1, 1}, pos: make([]int, len(dims))}
	v.size[0] = dims[0]
	if len(dims) > 1 {
		v.size[2] = dims[1]
	}
	if len(dims) > 2 {
		v.size[1] = dims[2]
	}
	return v, nil
}

func (v *view) inside(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < v.size[0] && y < v.size[1] && z < v.size[2]
}

func (v *view) at(x, y, z int) bool {
	if !v.inside(x, y, z) {
		return false
	}
	v.place(x, y, z)
	return v.vol.At(v.pos)
}

func (v *view) set(x, y, z int, solid bool) {
	if v.inside(x, y, z) {
		v.place(x, y, z)
		v.vol.Set(v.pos, solid)
	}
}

func (v *view) place(x, y, z int) {
	v.pos[0] = x
	if len(v.pos) > 1 {
		v.pos[1] = z
	}
	if len(v.pos) > 2 {
		v.pos[2] = y
	}
}

// material picks the palette index of a solid voxel. The bottom layer of a
// 3-D volume is floor.
func (v *view) material(y int) uint8 {
	if y == 0 && v.size[1] > 1 {
		return MaterialFloor
	}
	return MaterialWall
}

// ChunkRef is one non-empty chunk of a split volume.
type ChunkRef struct {
	X, Y, Z int // chunk coordinates
	Chunk   *Chunk
}

// Name is the pack entry name of the chunk.
func (c ChunkRef) Name() string { return fmt.Sprintf("%d_%d_%d.vopl", c.X, c.Y, c.Z) }

// SplitVolume cuts a rank 1..3 volume into 16^3 chunks, dropping empty ones.
// Chunks come back in Morton order of their coordinates.
func SplitVolume(vol *voxel.Volume) ([]ChunkRef, error) {
	v, err := newView(vol)
	if err != nil {
		return nil, err
	}
	var n [3]int
	for i, s := range v.size {
		n[i] = (s + ChunkSize - 1) / ChunkSize
	}
	var refs []ChunkRef
	for cy := range n[1] {
		for cx := range n[0] {
			for cz := range n[2] {
				c := new(Chunk)
				for y := range ChunkSize {
					for x := range ChunkSize {
						for z := range ChunkSize {
							gx, gy, gz := cx*ChunkSize+x, cy*ChunkSize+y, cz*ChunkSize+z
							if v.at(gx, gy, gz) {
								c[y][x][z] = v.material(gy)
							}
						}
					}
				}
				if !c.empty() {
					refs = append(refs, ChunkRef{X: cx, Y: cy, Z: cz, Chunk: c})
				}
			}
		}
	}
	slices.SortFunc(refs, func(a, b ChunkRef) int {
		ka := Morton3D64(uint32(a.X), uint32(a.Y), uint32(a.Z))
		kb := Morton3D64(uint32(b.X), uint32(b.Y), uint32(b.Z))
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return refs, nil
}

// appendExtents writes the rank followed by every extent as uvarints.
func appendExtents(dst []byte, dims []int) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(dims)))
	for _, n := range dims {
		dst = binary.AppendUvarint(dst, uint64(n))
	}
	return dst
}

// readExtents parses a volume manifest. The voxel count is bounded by
// voxel.MaxVoxels so a crafted manifest cannot request an oversized volume.
func readExtents(src []byte) ([]int, error) {
	rank, n := binary.Uvarint(src)
	if n <= 0 || rank == 0 || rank > 3 {
		return nil, errors.Wrap(ErrFormat, "volume manifest rank")
	}
	src = src[n:]
	dims := make([]int, rank)
	for axis := range dims {
		d, n := binary.Uvarint(src)
		if n <= 0 || d == 0 || d > voxel.MaxVoxels {
			return nil, errors.Wrapf(ErrFormat, "volume manifest axis %d", axis)
		}
		dims[axis] = int(d)
		src = src[n:]
	}
	if _, err := voxel.Count(dims); err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	return dims, nil
}

// NewVolumePack splits vol into chunks and wraps them in a Pack whose first
// entry records the volume's extents.
func NewVolumePack(vol *voxel.Volume) (*Pack, error) {
	refs, err := SplitVolume(vol)
	if err != nil {
		return nil, err
	}
	manifest := appendExtents(nil, vol.Dimensions())

	pack := &Pack{Header: chunkHeader(), Entries: make([]Entry, 0, len(refs)+1)}
	pack.Entries = append(pack.Entries, Entry{Name: manifestName, Enc: encManifest, Payload: manifest})
	for _, ref := range refs {
		enc := bestEncoding(ref.Chunk, chunkBPP)
		pack.Entries = append(pack.Entries, Entry{Name: ref.Name(), Enc: enc.encoding, Payload: enc.payload})
	}
	return pack, nil
}

// IsChunk reports whether entry i holds voxel data rather than metadata.
func (p *Pack) IsChunk(i int) bool { return p.Entries[i].Enc != encManifest }

// Volume rebuilds the voxel volume stored by NewVolumePack.
func (p *Pack) Volume() (*voxel.Volume, error) {
	if p.Header.W != ChunkSize || p.Header.H != ChunkSize || p.Header.D != ChunkSize {
		return nil, errors.Wrapf(ErrFormat, "pack chunks are %dx%dx%d", p.Header.W, p.Header.H, p.Header.D)
	}
	var dims []int
	for _, e := range p.Entries {
		if e.Name != manifestName || e.Enc != encManifest {
			continue
		}
		var err error
		if dims, err = readExtents(e.Payload); err != nil {
			return nil, err
		}
	}
	if dims == nil {
		return nil, errors.Wrap(ErrFormat, "pack has no volume manifest")
	}
	vol, err := voxel.NewVolume(dims)
	if err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	v, err := newView(vol)
	if err != nil {
		return nil, err
	}

	for i, e := range p.Entries {
		if !p.IsChunk(i) {
			continue
		}
		var cx, cy, cz int
		if _, err := fmt.Sscanf(e.Name, "%d_%d_%d.vopl", &cx, &cy, &cz); err != nil {
			return nil, errors.Wrapf(ErrFormat, "chunk name %q", e.Name)
		}
		c, err := decodePayload(e.Enc, p.Header.BPP, e.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "chunk %s", e.Name)
		}
		for y := range ChunkSize {
			for x := range ChunkSize {
				for z := range ChunkSize {
					if c[y][x][z] != MaterialEmpty {
						v.set(cx*ChunkSize+x, cy*ChunkSize+y, cz*ChunkSize+z, true)
					}
				}
			}
		}
	}
	return vol, nil
}

// PackVolume is NewVolumePack followed by Marshal.
func PackVolume(vol *voxel.Volume, layout Layout, comp Compression) ([]byte, error) {
	pack, err := NewVolumePack(vol)
	if err != nil {
		return nil, err
	}
	return pack.Marshal(layout, comp)
}

// UnpackVolume is UnmarshalPack followed by Volume.
func UnpackVolume(data []byte) (*voxel.Volume, error) {
	pack, _, err := UnmarshalPack(data)
	if err != nil {
		return nil, err
	}
	return pack.Volume()
}

// Fingerprint hashes a volume's extents and occupancy. Equal volumes hash
// equally at any rank, including ranks the pack format cannot hold.
func Fingerprint(vol *voxel.Volume) uint64 {
	d := xxhash.New()
	_, _ = d.Write(appendExtents(nil, vol.Dimensions()))

	var word [8]byte
	for i, solid := range vol.Data() {
		if solid {
			word[(i/8)%8] |= 1 << (i % 8)
		}
		if i%64 == 63 {
			_, _ = d.Write(word[:])
			word = [8]byte{}
		}
	}
	if vol.Len()%64 != 0 {
		_, _ = d.Write(word[:])
	}
	return d.Sum64()
}

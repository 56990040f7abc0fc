package vopl

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	fileMagic   = "VOPL"
	fileVersion = 3
	headerSize  = 16
)

var (
	// ErrFormat reports a malformed .vopl or .voplpack blob.
	ErrFormat = errors.New("vopl: malformed data")
	// ErrUnsupportedDims is returned for volumes of rank above 3.
	ErrUnsupportedDims = errors.New("vopl: only volumes of rank 1 to 3 can be exported")
)

// Header holds the fixed fields of a .vopl v3 file. The per-file encoding
// byte is not part of it because it varies per entry inside a pack.
type Header struct {
	Ver  uint8
	BPP  uint8
	W    uint8
	H    uint8
	D    uint8
	Pal  uint16
	PLen uint32 // payload length, only meaningful when parsing a whole file
}

// chunkHeader is the header shared by every chunk this package writes.
func chunkHeader() Header {
	return Header{Ver: fileVersion, BPP: chunkBPP, W: ChunkSize, H: ChunkSize, D: ChunkSize, Pal: paletteVersion}
}

// ParseFile splits a whole .vopl file into its header, encoding byte and
// payload.
func ParseFile(data []byte) (Header, uint8, []byte, error) {
	var hdr Header
	if len(data) < headerSize || string(data[:4]) != fileMagic {
		return hdr, 0, nil, errors.Wrap(ErrFormat, "missing VOPL magic")
	}
	hdr.Ver = data[4]
	if hdr.Ver != fileVersion {
		return hdr, 0, nil, errors.Wrapf(ErrFormat, "unsupported VOPL version %d", hdr.Ver)
	}
	enc := data[5]
	hdr.BPP, hdr.W, hdr.H, hdr.D = data[6], data[7], data[8], data[9]
	hdr.Pal = binary.LittleEndian.Uint16(data[10:12])
	hdr.PLen = binary.LittleEndian.Uint32(data[12:16])
	if uint32(len(data)-headerSize) != hdr.PLen {
		return hdr, 0, nil, errors.Wrapf(ErrFormat, "payload is %d bytes, header says %d", len(data)-headerSize, hdr.PLen)
	}
	return hdr, enc, data[headerSize:], nil
}

// BuildFile assembles a whole .vopl file from a header, encoding byte and
// payload. h.PLen is ignored.
func BuildFile(h Header, enc uint8, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(payload))
	buf.WriteString(fileMagic)
	buf.WriteByte(h.Ver)
	buf.WriteByte(enc)
	buf.WriteByte(h.BPP)
	buf.WriteByte(h.W)
	buf.WriteByte(h.H)
	buf.WriteByte(h.D)
	_ = binary.Write(&buf, binary.LittleEndian, h.Pal)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

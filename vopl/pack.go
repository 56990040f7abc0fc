package vopl

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Compression selects the codec applied to a pack's content section.
type Compression uint8

const (
	PackCompNone Compression = 0
	PackCompZlib Compression = 1
	PackCompZstd Compression = 2
)

// ParseCompression maps "none", "zlib" and "zstd" to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return PackCompNone, nil
	case "zlib":
		return PackCompZlib, nil
	case "zstd", "":
		return PackCompZstd, nil
	}
	return 0, errors.Errorf("unknown compression %q", name)
}

// Layout selects how entries are stored in the content section.
type Layout uint8

const (
	// LayoutRaw stores each entry payload as an independent blob.
	LayoutRaw Layout = 0
	// LayoutCDC stores a dictionary of content-defined chunks shared by all
	// entries, and each entry as a sequence of chunk references.
	LayoutCDC Layout = 1
)

// ParseLayout maps "raw" and "cdc" to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch name {
	case "raw", "":
		return LayoutRaw, nil
	case "cdc":
		return LayoutCDC, nil
	}
	return 0, errors.Errorf("unknown pack layout %q", name)
}

const (
	packMagic    = "VOPLPACK"
	packVersion1 = 1
	packVersion2 = 2

	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384
)

// Entry is one .vopl payload inside a pack.
type Entry struct {
	Name    string
	Enc     uint8
	Payload []byte
}

// Pack is a set of .vopl payloads sharing one header.
type Pack struct {
	Header  Header
	Entries []Entry
}

// File rebuilds the standalone .vopl file of entry i.
func (p *Pack) File(i int) []byte {
	e := p.Entries[i]
	return BuildFile(p.Header, e.Enc, e.Payload)
}

// Marshal encodes the pack. Raw layout with no or zlib compression produces
// a version 1 container readable by older tools; everything else is
// version 2.
func (p *Pack) Marshal(layout Layout, comp Compression) ([]byte, error) {
	if p.Header.Ver != fileVersion {
		return nil, errors.Wrapf(ErrFormat, "pack header version %d", p.Header.Ver)
	}
	version := uint8(packVersion2)
	if layout == LayoutRaw && (comp == PackCompNone || comp == PackCompZlib) {
		version = packVersion1
	}

	var content bytes.Buffer
	content.Write([]byte{p.Header.Ver, p.Header.BPP, p.Header.W, p.Header.H, p.Header.D})
	putU16(&content, p.Header.Pal)
	if version >= packVersion2 {
		content.WriteByte(uint8(layout))
	}

	var err error
	switch layout {
	case LayoutRaw:
		err = p.writeRaw(&content)
	case LayoutCDC:
		err = p.writeCDC(&content)
	default:
		err = errors.Wrapf(ErrFormat, "unknown layout %d", layout)
	}
	if err != nil {
		return nil, err
	}

	body, err := compress(content.Bytes(), comp)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(packMagic)+2+len(body))
	out = append(out, packMagic...)
	out = append(out, version, uint8(comp))
	return append(out, body...), nil
}

func (p *Pack) writeRaw(w *bytes.Buffer) error {
	putU32(w, uint32(len(p.Entries)))
	for _, e := range p.Entries {
		if err := putName(w, e.Name); err != nil {
			return err
		}
		w.WriteByte(e.Enc)
		putU32(w, uint32(len(e.Payload)))
		w.Write(e.Payload)
	}
	return nil
}

func (p *Pack) writeCDC(w *bytes.Buffer) error {
	putU32(w, cdcTarget)
	putU32(w, cdcMin)
	putU32(w, cdcMax)

	dict, sequences := buildCDCIndex(p.Entries, cdcTarget, cdcMin, cdcMax)
	putU32(w, uint32(len(dict)))
	for _, blk := range dict {
		putU32(w, uint32(len(blk)))
		w.Write(blk)
	}
	putU32(w, uint32(len(p.Entries)))
	for i, e := range p.Entries {
		if err := putName(w, e.Name); err != nil {
			return err
		}
		w.WriteByte(e.Enc)
		putU32(w, uint32(len(e.Payload)))
		putU32(w, uint32(len(sequences[i])))
		for _, idx := range sequences[i] {
			putU32(w, uint32(idx))
		}
	}
	return nil
}

// UnmarshalPack parses a .voplpack and reports the compression it used.
func UnmarshalPack(data []byte) (*Pack, Compression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, errors.Wrap(ErrFormat, "missing VOPLPACK magic")
	}
	version := data[8]
	comp := Compression(data[9])
	if version != packVersion1 && version != packVersion2 {
		return nil, 0, errors.Wrapf(ErrFormat, "unsupported pack version %d", version)
	}
	content, err := decompress(data[10:], comp)
	if err != nil {
		return nil, 0, err
	}

	r := &leReader{r: bytes.NewReader(content)}
	var hdr Header
	hdr.Ver, hdr.BPP, hdr.W, hdr.H, hdr.D = r.u8(), r.u8(), r.u8(), r.u8(), r.u8()
	hdr.Pal = r.u16()
	layout := LayoutRaw
	if version >= packVersion2 {
		layout = Layout(r.u8())
	}
	if r.err != nil {
		return nil, 0, errors.Wrap(ErrFormat, "pack header truncated")
	}

	pack := &Pack{Header: hdr}
	switch layout {
	case LayoutRaw:
		pack.Entries, err = readRaw(r)
	case LayoutCDC:
		pack.Entries, err = readCDC(r)
	default:
		err = errors.Wrapf(ErrFormat, "unknown layout %d", layout)
	}
	if err != nil {
		return nil, 0, err
	}
	return pack, comp, nil
}

func readRaw(r *leReader) ([]Entry, error) {
	n := r.u32()
	if r.err != nil || uint64(n) > uint64(r.r.Len()) {
		return nil, errors.Wrap(ErrFormat, "entry count")
	}
	entries := make([]Entry, 0, n)
	for range n {
		name := r.name()
		enc := r.u8()
		payload := r.bytes(int(r.u32()))
		if r.err != nil {
			return nil, errors.Wrapf(ErrFormat, "entry %d truncated", len(entries))
		}
		entries = append(entries, Entry{Name: name, Enc: enc, Payload: payload})
	}
	return entries, nil
}

func readCDC(r *leReader) ([]Entry, error) {
	_, _, maxSz := r.u32(), r.u32(), r.u32()
	nBlocks := r.u32()
	if r.err != nil || uint64(nBlocks) > uint64(r.r.Len()) {
		return nil, errors.Wrap(ErrFormat, "chunk dictionary header")
	}
	blocks := make([][]byte, nBlocks)
	largest := 0
	for i := range blocks {
		blocks[i] = r.bytes(int(r.u32()))
		largest = max(largest, len(blocks[i]))
	}
	n := r.u32()
	if r.err != nil || uint64(n) > uint64(r.r.Len()) {
		return nil, errors.Wrap(ErrFormat, "chunk dictionary truncated")
	}

	entries := make([]Entry, 0, n)
	for range n {
		name := r.name()
		enc := r.u8()
		rawLen := r.u32()
		seqLen := r.u32()
		if r.err != nil || uint64(seqLen)*4 > uint64(r.r.Len()) {
			return nil, errors.Wrapf(ErrFormat, "entry %d truncated", len(entries))
		}
		if uint64(rawLen) > uint64(seqLen)*uint64(largest) {
			return nil, errors.Wrapf(ErrFormat, "entry %q claims %d bytes from %d blocks", name, rawLen, seqLen)
		}
		payload := make([]byte, 0, rawLen)
		for range seqLen {
			idx := r.u32()
			if idx >= nBlocks {
				return nil, errors.Wrapf(ErrFormat, "block index %d of %d", idx, nBlocks)
			}
			if uint64(len(payload))+uint64(len(blocks[idx])) > uint64(rawLen)+uint64(maxSz) {
				return nil, errors.Wrapf(ErrFormat, "entry %q overruns its length", name)
			}
			payload = append(payload, blocks[idx]...)
		}
		if r.err != nil || uint32(len(payload)) < rawLen {
			return nil, errors.Wrapf(ErrFormat, "entry %q truncated", name)
		}
		entries = append(entries, Entry{Name: name, Enc: enc, Payload: payload[:rawLen]})
	}
	return entries, nil
}

func compress(b []byte, comp Compression) ([]byte, error) {
	switch comp {
	case PackCompNone:
		return b, nil
	case PackCompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(b); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(b, nil), nil
	}
	return nil, errors.Errorf("unsupported compression %d", comp)
}

func decompress(b []byte, comp Compression) ([]byte, error) {
	switch comp {
	case PackCompNone:
		return b, nil
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, errors.Wrap(ErrFormat, err.Error())
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, errors.Wrap(ErrFormat, err.Error())
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrFormat, "unsupported compression %d", comp)
}

func putU16(w *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func putU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func putName(w *bytes.Buffer, name string) error {
	if len(name) > 0xFFFF {
		return errors.Errorf("entry name too long: %d bytes", len(name))
	}
	putU16(w, uint16(len(name)))
	w.WriteString(name)
	return nil
}

// leReader reads little-endian fields and remembers the first error, so a
// sequence of reads needs a single check.
type leReader struct {
	r   *bytes.Reader
	err error
}

func (r *leReader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.r.Len() {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	_, r.err = io.ReadFull(r.r, b)
	return b
}

func (r *leReader) u8() uint8 {
	if b := r.read(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *leReader) u16() uint16 {
	if b := r.read(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *leReader) u32() uint32 {
	if b := r.read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *leReader) bytes(n int) []byte { return r.read(n) }

func (r *leReader) name() string { return string(r.read(int(r.u16()))) }

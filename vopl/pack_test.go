package vopl

import (
	"bytes"
	"math/rand"
	"slices"
	"testing"

	"github.com/pkg/errors"
)

func randomBytes(seed int64, n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}

func samplePack() *Pack {
	return &Pack{
		Header: chunkHeader(),
		Entries: []Entry{
			{Name: "0_0_0.vopl", Enc: encSparse2, Payload: randomBytes(1, 600)},
			{Name: "1_0_0.vopl", Enc: encDense | encZlib, Payload: randomBytes(2, 40000)},
			{Name: "empty.vopl", Enc: encDense, Payload: nil},
			{Name: "0_1_0.vopl", Enc: encSparse, Payload: randomBytes(2, 40000)},
		},
	}
}

func TestPackRoundTrip(t *testing.T) {
	for _, layout := range []Layout{LayoutRaw, LayoutCDC} {
		for _, comp := range []Compression{PackCompNone, PackCompZlib, PackCompZstd} {
			p := samplePack()
			data, err := p.Marshal(layout, comp)
			if err != nil {
				t.Fatalf("layout %d comp %d: %v", layout, comp, err)
			}
			wantVersion := byte(packVersion2)
			if layout == LayoutRaw && comp != PackCompZstd {
				wantVersion = packVersion1
			}
			if string(data[:8]) != packMagic || data[8] != wantVersion || data[9] != byte(comp) {
				t.Fatalf("layout %d comp %d: header % x", layout, comp, data[:10])
			}

			got, gotComp, err := UnmarshalPack(data)
			if err != nil {
				t.Fatalf("layout %d comp %d: %v", layout, comp, err)
			}
			if gotComp != comp || got.Header != p.Header {
				t.Fatalf("layout %d comp %d: header %+v comp %d", layout, comp, got.Header, gotComp)
			}
			if len(got.Entries) != len(p.Entries) {
				t.Fatalf("layout %d comp %d: %d entries", layout, comp, len(got.Entries))
			}
			for i, e := range p.Entries {
				g := got.Entries[i]
				if g.Name != e.Name || g.Enc != e.Enc || !bytes.Equal(g.Payload, e.Payload) {
					t.Fatalf("layout %d comp %d: entry %d differs", layout, comp, i)
				}
			}
		}
	}
}

func TestCDCSharesRepeatedContent(t *testing.T) {
	p := samplePack()
	blocks, seqs := buildCDCIndex(p.Entries, cdcTarget, cdcMin, cdcMax)
	if !slices.Equal(seqs[1], seqs[3]) {
		t.Fatalf("identical payloads cut differently: %v vs %v", seqs[1], seqs[3])
	}
	if len(seqs[2]) != 0 {
		t.Errorf("empty payload has blocks %v", seqs[2])
	}
	total := 0
	for _, s := range seqs {
		total += len(s)
	}
	if len(blocks) != total-len(seqs[3]) {
		t.Errorf("%d blocks stored for %d references", len(blocks), total)
	}
	for _, b := range blocks {
		if len(b) > cdcMax {
			t.Errorf("block of %d bytes exceeds the maximum", len(b))
		}
	}

	raw, _ := p.Marshal(LayoutRaw, PackCompNone)
	cdc, _ := p.Marshal(LayoutCDC, PackCompNone)
	if len(cdc) >= len(raw) {
		t.Errorf("cdc pack is %d bytes, raw %d", len(cdc), len(raw))
	}
}

func TestPackFile(t *testing.T) {
	c := sparseChunk()
	enc := bestEncoding(c, chunkBPP)
	p := &Pack{Header: chunkHeader(), Entries: []Entry{{Name: "0_0_0.vopl", Enc: enc.encoding, Payload: enc.payload}}}
	got, err := DecodeChunk(p.File(0))
	if err != nil {
		t.Fatal(err)
	}
	if *got != *c {
		t.Error("pack entry does not rebuild its chunk")
	}
}

func TestUnmarshalPackRejectsBadInput(t *testing.T) {
	good, err := samplePack().Marshal(LayoutCDC, PackCompNone)
	if err != nil {
		t.Fatal(err)
	}
	bad := map[string][]byte{
		"magic":     append([]byte("VOPLPACX"), good[8:]...),
		"short":     good[:9],
		"version":   append(append([]byte(packMagic), 9), good[9:]...),
		"truncated": good[:len(good)-3],
		"zstd":      append(append([]byte(packMagic), packVersion2, byte(PackCompZstd)), 1, 2, 3),
	}
	for name, data := range bad {
		if _, _, err := UnmarshalPack(data); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: err = %v, want ErrFormat", name, err)
		}
	}
}

// cdcPack builds a one-entry CDC pack whose entry references a single
// four-byte block and claims rawLen payload bytes.
func cdcPack(rawLen uint32) []byte {
	var content bytes.Buffer
	h := chunkHeader()
	content.Write([]byte{h.Ver, h.BPP, h.W, h.H, h.D})
	putU16(&content, h.Pal)
	content.WriteByte(byte(LayoutCDC))
	putU32(&content, cdcTarget)
	putU32(&content, cdcMin)
	putU32(&content, cdcMax)
	putU32(&content, 1)
	putU32(&content, 4)
	content.Write([]byte{1, 2, 3, 4})
	putU32(&content, 1)
	_ = putName(&content, "0_0_0.vopl")
	content.WriteByte(encDense)
	putU32(&content, rawLen)
	putU32(&content, 1)
	putU32(&content, 0)
	data := append([]byte(packMagic), packVersion2, byte(PackCompNone))
	return append(data, content.Bytes()...)
}

func TestUnmarshalPackBoundsEntryLength(t *testing.T) {
	p, _, err := UnmarshalPack(cdcPack(4))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Entries[0].Payload, []byte{1, 2, 3, 4}) {
		t.Fatalf("payload % x", p.Entries[0].Payload)
	}
	if _, _, err := UnmarshalPack(cdcPack(0xFFFFFFF0)); !errors.Is(err, ErrFormat) {
		t.Errorf("4 GiB entry from one block: %v", err)
	}
}

func TestParseNames(t *testing.T) {
	if c, err := ParseCompression(""); err != nil || c != PackCompZstd {
		t.Errorf("default compression %d, %v", c, err)
	}
	if c, err := ParseCompression("zlib"); err != nil || c != PackCompZlib {
		t.Errorf("zlib: %d, %v", c, err)
	}
	if _, err := ParseCompression("lz4"); err == nil {
		t.Error("lz4 accepted")
	}
	if l, err := ParseLayout("cdc"); err != nil || l != LayoutCDC {
		t.Errorf("cdc: %d, %v", l, err)
	}
	if l, err := ParseLayout(""); err != nil || l != LayoutRaw {
		t.Errorf("default layout %d, %v", l, err)
	}
	if _, err := ParseLayout("zip"); err == nil {
		t.Error("zip layout accepted")
	}
}

package vopl

import "io"

// bitPacker appends little-endian bit fields of up to 56 bits to a byte
// slice; the first field occupies the lowest bits of the first byte.
type bitPacker struct {
	out     []byte
	pending uint64
	fill    uint
}

func newBitPacker(sizeHint int) *bitPacker {
	return &bitPacker{out: make([]byte, 0, sizeHint)}
}

func (p *bitPacker) put(v uint64, width uint8) {
	p.pending |= (v & (1<<width - 1)) << p.fill
	for p.fill += uint(width); p.fill >= 8; p.fill -= 8 {
		p.out = append(p.out, byte(p.pending))
		p.pending >>= 8
	}
}

// finish pads the last partial byte with zeros and returns the stream.
func (p *bitPacker) finish() []byte {
	if p.fill > 0 {
		p.out = append(p.out, byte(p.pending))
		p.pending, p.fill = 0, 0
	}
	return p.out
}

// bitCursor reads fields written by bitPacker.
type bitCursor struct {
	src     []byte
	next    int
	pending uint64
	fill    uint
}

func newBitCursor(src []byte) *bitCursor { return &bitCursor{src: src} }

func (c *bitCursor) take(width uint8) (uint64, error) {
	for c.fill < uint(width) {
		if c.next == len(c.src) {
			return 0, io.ErrUnexpectedEOF
		}
		c.pending |= uint64(c.src[c.next]) << c.fill
		c.next++
		c.fill += 8
	}
	v := c.pending & (1<<width - 1)
	c.pending >>= width
	c.fill -= uint(width)
	return v, nil
}

package vopl

import "github.com/pkg/errors"

// EncodeChunk returns a complete .vopl file for c.
func EncodeChunk(c *Chunk) []byte {
	enc := bestEncoding(c, chunkBPP)
	return BuildFile(chunkHeader(), enc.encoding, enc.payload)
}

// DecodeChunk parses a .vopl file produced by EncodeChunk or any other
// 16x16x16 VOPL v3 writer.
func DecodeChunk(data []byte) (*Chunk, error) {
	hdr, enc, payload, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	if hdr.W != ChunkSize || hdr.H != ChunkSize || hdr.D != ChunkSize {
		return nil, errors.Wrapf(ErrFormat, "chunk is %dx%dx%d", hdr.W, hdr.H, hdr.D)
	}
	return decodePayload(enc, hdr.BPP, payload)
}

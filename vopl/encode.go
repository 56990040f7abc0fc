package vopl

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"
)

const (
	encDense   = 0
	encSparse  = 1
	encSparse2 = 3 // occupancy bitmap + nonzero values

	encZlib     = 0x80
	bitmapBytes = chunkVolume / 8
)

type encoded struct {
	encoding uint8
	payload  []byte
}

func encodeDense(c *Chunk, bpp uint8) []byte {
	bw := newBitPacker(256)
	for _, v := range flatten(c) {
		bw.put(uint64(v), bpp)
	}
	return bw.finish()
}

func encodeSparse(c *Chunk, bpp uint8) []byte {
	stream := flatten(c)
	count := 0
	for _, v := range stream {
		if v != 0 {
			count++
		}
	}
	bw := newBitPacker(256)
	bw.put(uint64(count), 16)
	for i, v := range stream {
		if v == 0 {
			continue
		}
		bw.put(uint64(i), 12)
		bw.put(uint64(v), bpp)
	}
	return bw.finish()
}

func encodeSparse2(c *Chunk, bpp uint8) []byte {
	bitmap := make([]byte, bitmapBytes)
	bw := newBitPacker(256)
	for i, v := range flatten(c) {
		if v != 0 {
			bitmap[i>>3] |= 1 << (uint(i) & 7)
			bw.put(uint64(v), bpp)
		}
	}
	return append(bitmap, bw.finish()...)
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// bestEncoding tries every encoding, raw and zlib-compressed, and keeps the
// smallest.
func bestEncoding(c *Chunk, bpp uint8) encoded {
	candidates := []encoded{
		{encoding: encDense, payload: encodeDense(c, bpp)},
		{encoding: encSparse, payload: encodeSparse(c, bpp)},
		{encoding: encSparse2, payload: encodeSparse2(c, bpp)},
	}
	best := candidates[0]
	for _, cand := range candidates[1:] {
		if len(cand.payload) < len(best.payload) {
			best = cand
		}
	}
	for _, cand := range candidates {
		if zb := zlibCompress(cand.payload); len(zb) < len(best.payload) {
			best = encoded{encoding: cand.encoding | encZlib, payload: zb}
		}
	}
	return best
}

// decodePayload is the inverse of bestEncoding.
func decodePayload(enc, bpp uint8, payload []byte) (*Chunk, error) {
	if bpp < 1 || bpp > 8 {
		return nil, errors.Wrapf(ErrFormat, "bits per voxel %d", bpp)
	}
	if enc&encZlib != 0 {
		var err error
		if payload, err = zlibDecompress(payload); err != nil {
			return nil, errors.Wrap(ErrFormat, err.Error())
		}
	}
	stream := make([]uint8, chunkVolume)
	switch enc &^ encZlib {
	case encDense:
		br := newBitCursor(payload)
		for i := range stream {
			v, err := br.take(bpp)
			if err != nil {
				return nil, errors.Wrap(ErrFormat, "dense payload truncated")
			}
			stream[i] = uint8(v)
		}
	case encSparse:
		br := newBitCursor(payload)
		count, err := br.take(16)
		if err != nil {
			return nil, errors.Wrap(ErrFormat, "sparse payload truncated")
		}
		for range count {
			idx, err := br.take(12)
			if err != nil {
				return nil, errors.Wrap(ErrFormat, "sparse payload truncated")
			}
			v, err := br.take(bpp)
			if err != nil {
				return nil, errors.Wrap(ErrFormat, "sparse payload truncated")
			}
			stream[idx] = uint8(v)
		}
	case encSparse2:
		if len(payload) < bitmapBytes {
			return nil, errors.Wrap(ErrFormat, "bitmap payload truncated")
		}
		bitmap := payload[:bitmapBytes]
		br := newBitCursor(payload[bitmapBytes:])
		for i := range stream {
			if (bitmap[i>>3]>>(uint(i)&7))&1 == 0 {
				continue
			}
			v, err := br.take(bpp)
			if err != nil {
				return nil, errors.Wrap(ErrFormat, "bitmap values truncated")
			}
			stream[i] = uint8(v)
		}
	default:
		return nil, errors.Wrapf(ErrFormat, "unknown encoding %d", enc)
	}
	c := new(Chunk)
	applyOrder(c, stream)
	return c, nil
}

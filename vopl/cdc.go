package vopl

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	xxhash "github.com/cespare/xxhash/v2"
)

// gearTable is the rolling-hash table for content-defined chunking, derived
// deterministically from xxhash so packs are reproducible across runs.
var gearTable = func() [256]uint64 {
	var gear [256]uint64
	seed := xxhash.Sum64String("vopl-cdc-gear-seed")
	for i := range gear {
		var b [16]byte
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}
	return gear
}()

// buildCDCIndex cuts every entry payload at content-defined boundaries,
// stores each distinct block once and returns the block list together with
// each entry's sequence of block indices. Mazes repeat wall patterns a lot,
// so identical chunks and chunk fragments collapse to one block.
func buildCDCIndex(entries []Entry, target, minSz, maxSz int) ([][]byte, [][]int) {
	mask := uint64(1)<<(bits.Len(uint(target))-1) - 1

	var blocks [][]byte
	index := make(map[uint64][]int, 256)
	addBlock := func(b []byte) int {
		h := xxhash.Sum64(b)
		for _, idx := range index[h] {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := len(blocks)
		blocks = append(blocks, append([]byte(nil), b...))
		index[h] = append(index[h], idx)
		return idx
	}

	seqs := make([][]int, len(entries))
	for i, e := range entries {
		data := e.Payload
		start := 0
		var h uint64
		for pos := range data {
			h = h<<1 + gearTable[data[pos]]
			size := pos - start + 1
			if size < minSz {
				continue
			}
			if h&mask == 0 || size >= maxSz {
				seqs[i] = append(seqs[i], addBlock(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seqs[i] = append(seqs[i], addBlock(data[start:]))
		}
	}
	return blocks, seqs
}

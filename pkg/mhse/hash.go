package mhse

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Hash maps node to a 64-bit value under seed. It is the first half of
// MurmurHash3 x64 128 over the little-endian encoding of the node as a
// 64-bit integer, which matches Guava's murmur3_128(seed).hashLong(node).asLong()
// for seeds below 2^31.
func Hash(node int, seed uint32) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(node)))
	h1, _ := murmur3.Sum128WithSeed(buf[:], seed)
	return int64(h1)
}

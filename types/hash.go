package types

import (
	"encoding/binary"
	"hash"

	"github.com/minio/blake2b-simd"
)

// hash8 returns the first eight bytes of the blake2b-256 digest of b.
func hash8(b []byte) uint64 {
	sum := blake2b.Sum256(b)
	return binary.BigEndian.Uint64(sum[:8])
}

// WordHasher folds a sequence of 64-bit words into a single 64-bit
// digest. Composite types combine member hashes with it, so hashes of
// containers depend on member order.
type WordHasher struct {
	h   hash.Hash
	buf [8]byte
}

// NewWordHasher returns an empty WordHasher.
func NewWordHasher() *WordHasher {
	return &WordHasher{h: blake2b.New256()}
}

// Add appends one word to the sequence.
func (w *WordHasher) Add(word uint64) {
	binary.BigEndian.PutUint64(w.buf[:], word)
	w.h.Write(w.buf[:])
}

// Sum returns the digest of the words added so far.
func (w *WordHasher) Sum() uint64 {
	return binary.BigEndian.Uint64(w.h.Sum(nil)[:8])
}

// Package hash160 composes the two-stage hash (SHA-256 then RIPEMD-160)
// used to turn a compressed public key into its 20-byte address
// identifier. Both stages process exactly one hash block per call: the
// 33-byte compressed key fits in a single 64-byte SHA-256 block, and the
// resulting 32-byte digest fits in a single 64-byte RIPEMD-160 block.
package hash160

import (
	sha256simd "github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160"
)

// Hash160 is a 20-byte hash160 value.
type Hash160 [20]byte

// Words returns the hash as five 32-bit big-endian words (word 0 is the
// most significant four bytes), the representation the bloom filter's
// probe schedule operates on.
func (h Hash160) Words() [5]uint32 {
	var w [5]uint32
	for i := 0; i < 5; i++ {
		off := i * 4
		w[i] = uint32(h[off])<<24 | uint32(h[off+1])<<16 | uint32(h[off+2])<<8 | uint32(h[off+3])
	}
	return w
}

// FromWords rebuilds a Hash160 from its five big-endian words.
func FromWords(w [5]uint32) Hash160 {
	var h Hash160
	for i := 0; i < 5; i++ {
		off := i * 4
		h[off] = byte(w[i] >> 24)
		h[off+1] = byte(w[i] >> 16)
		h[off+2] = byte(w[i] >> 8)
		h[off+3] = byte(w[i])
	}
	return h
}

// Sum computes RIPEMD160(SHA256(msg)). msg is typically a 33-byte
// compressed public key, but any input is accepted.
func Sum(msg []byte) Hash160 {
	sh := sha256simd.Sum256(msg)

	r := ripemd160.New()
	r.Write(sh[:])
	var out Hash160
	copy(out[:], r.Sum(nil))
	return out
}

// BatchSum hashes every message in msgs independently. Each message is
// processed with no shared state, so a future SIMD multi-buffer backend
// can replace the loop body without changing this signature.
func BatchSum(msgs [][33]byte) []Hash160 {
	out := make([]Hash160, len(msgs))
	for i, m := range msgs {
		out[i] = Sum(m[:])
	}
	return out
}

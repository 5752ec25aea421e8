// Package bloom implements the fixed 20-probe bloom filter used to test
// hash160 membership in a large precomputed target set. The probe
// schedule and on-disk format are bit-for-bit compatible with the tool
// this system is a Go port of; see the notes on the magic number (in
// persist.go) and on anchor reuse (below) before "fixing" anything that
// looks odd.
package bloom

import (
	"errors"
	"math"

	"golang.org/x/sys/unix"

	"github.com/ecloop-go/ecloop/hash160"
)

// ErrFormat is returned by Load when the file's magic or version does
// not match what this package writes.
var ErrFormat = errors.New("bloom: unrecognized file format")

// shifts is the fixed 4-shift schedule; each shift produces 5 bit
// indices, for 20 probes per hash160.
var shifts = [4]uint{24, 28, 36, 40}

// Filter is a dense bit array addressed by the 20-probe schedule below.
// Once built (or loaded), a Filter is read-only and safe to share across
// goroutines without synchronization.
type Filter struct {
	words int
	bits  []uint64

	// mmap holds the raw mapped bytes backing bits when the filter was
	// loaded via the mmap path in persist.go; nil otherwise. bits then
	// aliases mmap directly (reinterpreted, not copied), so Close must
	// unmap it before the Filter is discarded.
	mmap []byte
}

// New allocates an empty filter sized for n items at false-positive
// probability p, rounding the bit count up to a whole number of 64-bit
// words. This mirrors the sizing formula from https://hur.st/bloomfilter/
// with k fixed at 20 rather than computed from n and p.
func New(n uint64, p float64) *Filter {
	m := uint64(float64(n) * math.Log(p) / math.Log(1/(2*math.Log(2))))
	words := (m + 63) / 64
	if words == 0 {
		words = 1
	}
	return &Filter{words: int(words), bits: make([]uint64, words)}
}

// Words reports the number of 64-bit words backing the filter.
func (f *Filter) Words() int { return f.words }

// Bits reports the total number of addressable bits (Words() * 64).
func (f *Filter) Bits() uint64 { return uint64(f.words) * 64 }

// anchors packs a hash160's five 32-bit words into the five 64-bit
// anchors the probe schedule folds over. a3 and a4 intentionally reuse
// h0 and h2 (each appears in two anchors); that duplication very
// slightly reduces probe independence but is part of the fixed,
// file-compatible schedule and is preserved rather than "corrected".
func anchors(h hash160.Hash160) (a1, a2, a3, a4, a5 uint64) {
	w := h.Words()
	a1 = uint64(w[0])<<32 | uint64(w[1])
	a2 = uint64(w[2])<<32 | uint64(w[3])
	a3 = uint64(w[4])<<32 | uint64(w[0])
	a4 = uint64(w[1])<<32 | uint64(w[2])
	a5 = uint64(w[3])<<32 | uint64(w[4])
	return
}

// probes returns the 20 bit indices (unreduced: callers mod by the bit
// count) for one hash160.
func probes(h hash160.Hash160) [20]uint64 {
	a1, a2, a3, a4, a5 := anchors(h)
	var out [20]uint64
	i := 0
	for _, s := range shifts {
		out[i+0] = a1<<s | a2>>s
		out[i+1] = a2<<s | a3>>s
		out[i+2] = a3<<s | a4>>s
		out[i+3] = a4<<s | a5>>s
		out[i+4] = a5<<s | a1>>s
		i += 5
	}
	return out
}

func (f *Filter) setBit(idx uint64) {
	m := f.Bits()
	i := idx % m
	f.bits[i/64] |= uint64(1) << (idx % 64)
}

func (f *Filter) getBit(idx uint64) bool {
	m := f.Bits()
	i := idx % m
	return f.bits[i/64]&(uint64(1)<<(idx%64)) != 0
}

// Add sets all 20 probe bits for h.
func (f *Filter) Add(h hash160.Hash160) {
	for _, idx := range probes(h) {
		f.setBit(idx)
	}
}

// Has reports whether all 20 probe bits for h are set. False positives
// are possible (at the configured rate); false negatives are not: once
// Add(h) has been called, Has(h) is always true.
func (f *Filter) Has(h hash160.Hash160) bool {
	for _, idx := range probes(h) {
		if !f.getBit(idx) {
			return false
		}
	}
	return true
}

// Close releases resources held by f. Filters built with New, or loaded
// via Load's buffered path, hold nothing beyond an ordinary heap slice
// and Close is a no-op; filters loaded via Load's mmap path must unmap
// their backing pages, which Close does here. Callers should always
// defer Close regardless of how the Filter was obtained.
func (f *Filter) Close() error {
	if f.mmap == nil {
		return nil
	}
	mmap := f.mmap
	f.mmap = nil
	f.bits = nil
	return unix.Munmap(mmap)
}

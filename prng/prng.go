// Package prng implements an 8-lane xoshiro256** generator. Each state
// word is stored as its own array of 8 lanes (rather than 8 structs of 4
// words) so a future vectorized step can load a whole register's worth
// of one word across all lanes in one instruction; the scalar step below
// walks that same layout lane by lane.
package prng

import (
	"math/bits"

	"github.com/ecloop-go/ecloop/fe"
)

const lanes = 8

// cacheSize is the number of u64s buffered per Next8/Fill refill; chosen
// so a producer goroutine driving a search pipeline rarely crosses back
// into the vector step on the hot path.
const cacheSize = 4096

// Rng is a self-contained xoshiro256** stream. It is owned by a single
// goroutine; nothing here is safe for concurrent use, matching the
// producer-only ownership the search pipeline relies on.
type Rng struct {
	s0, s1, s2, s3 [lanes]uint64

	cache []uint64
	pos   int
}

// splitmix64 is the standard fixed-increment generator used only to
// derive xoshiro256**'s initial seed state from a single uint64.
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// scalarNext advances one lane's state by one step and returns the
// xoshiro256** output (rotl(s1*5, 7)*9) computed from the pre-update
// state.
func scalarNext(s *[4]uint64) uint64 {
	result := bits.RotateLeft64(s[1]*5, 7) * 9

	t := s[1] << 17
	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// jump128 is the precomputed polynomial for a 2^128-step jump-ahead,
// shared by every lane so lane i's stream starts 2^128*i steps after
// lane 0's.
var jump128 = [4]uint64{
	0x180ec6d33cfd0aba,
	0xd5a61266f0c9392c,
	0xa9582618e03fc9aa,
	0x39abdc4529b1661c,
}

func scalarJump128(s *[4]uint64) {
	var acc [4]uint64
	for i := 0; i < 4; i++ {
		for b := 0; b < 64; b++ {
			if jump128[i]&(uint64(1)<<uint(b)) != 0 {
				acc[0] ^= s[0]
				acc[1] ^= s[1]
				acc[2] ^= s[2]
				acc[3] ^= s[3]
			}
			scalarNext(s)
		}
	}
	*s = acc
}

// Seed deterministically (re-)initializes r from a single uint64: the
// four xoshiro state words are derived via splitmix64, then lane i's
// state is obtained by applying the jump-ahead i+1 times in sequence so
// lanes never overlap within any feasible run.
func (r *Rng) Seed(seed uint64) {
	smx := seed
	var st [4]uint64
	for i := range st {
		st[i] = splitmix64(&smx)
	}

	for lane := 0; lane < lanes; lane++ {
		scalarJump128(&st)
		r.s0[lane] = st[0]
		r.s1[lane] = st[1]
		r.s2[lane] = st[2]
		r.s3[lane] = st[3]
	}

	r.cache = nil
	r.pos = 0
}

// Next8 fills out with one xoshiro256** output per lane and advances all
// 8 lanes by one step.
func (r *Rng) Next8(out *[8]uint64) {
	for lane := 0; lane < lanes; lane++ {
		s := [4]uint64{r.s0[lane], r.s1[lane], r.s2[lane], r.s3[lane]}
		out[lane] = scalarNext(&s)
		r.s0[lane], r.s1[lane], r.s2[lane], r.s3[lane] = s[0], s[1], s[2], s[3]
	}
}

// refill tops up the internal cache with cacheSize fresh values (a
// multiple of 8, one Next8 call per 8 entries).
func (r *Rng) refill() {
	if cap(r.cache) < cacheSize {
		r.cache = make([]uint64, cacheSize)
	}
	r.cache = r.cache[:cacheSize]
	for i := 0; i < cacheSize; i += lanes {
		var out [8]uint64
		r.Next8(&out)
		copy(r.cache[i:i+lanes], out[:])
	}
	r.pos = 0
}

// next returns the next raw u64 from the cache, refilling as needed.
func (r *Rng) next() uint64 {
	if r.pos >= len(r.cache) {
		r.refill()
	}
	v := r.cache[r.pos]
	r.pos++
	return v
}

// Fill fills buf with len(buf) pseudorandom u64s, drawing from the
// internal cache (refilling it via the 8-lane step as needed).
func (r *Rng) Fill(buf []uint64) {
	for i := range buf {
		buf[i] = r.next()
	}
}

// RandRange returns a uniformly distributed fe.Element in [lo, hi] via
// rejection sampling: it draws BitLen(hi-lo+1) bits at a time (masking
// the top limb to that width) and retries whenever the draw is not below
// the span. Expected retries per sample is under 2, since the mask never
// admits more than one doubling of the span.
func RandRange(r *Rng, lo, hi *fe.Element) fe.Element {
	var span fe.Element
	fe.Sub(&span, hi, lo)
	fe.AddSmall(&span, &span, 1)

	width := fe.BitLen(&span)
	if width == 0 {
		return *lo
	}
	limbs := (width + 63) / 64
	topBits := uint(width % 64)
	var topMask uint64 = ^uint64(0)
	if topBits != 0 {
		topMask = (uint64(1) << topBits) - 1
	}

	for {
		var draw fe.Element
		var buf [4]uint64
		r.Fill(buf[:limbs])
		copy(draw[:limbs], buf[:limbs])
		if limbs > 0 {
			draw[limbs-1] &= topMask
		}

		if fe.Cmp(&draw, &span) < 0 {
			var out fe.Element
			fe.Add(&out, lo, &draw)
			return out
		}
	}
}

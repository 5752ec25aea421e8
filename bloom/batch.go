package bloom

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/ecloop-go/ecloop/hash160"
)

// hasWide is swapped out at init depending on what the running CPU
// supports: unrolledHas4 keeps all 4 lanes' probe indices resident
// together and tests them in probe-major order (cache- and
// branch-predictor-friendly on wide-vector-capable cores), genericHas4
// is the portable one-lane-at-a-time fallback with early exit. Both
// compute the exact same result; property tests in this package pin
// that equivalence down (see TestHas4MatchesScalar).
var hasWide func(f *Filter, hs [4]hash160.Hash160) [4]bool

func init() {
	if cpuid.CPU.Supports(cpuid.AVX2) {
		hasWide = unrolledHas4
	} else {
		hasWide = genericHas4
	}
}

func genericHas4(f *Filter, hs [4]hash160.Hash160) [4]bool {
	var out [4]bool
	for i, h := range hs {
		out[i] = f.Has(h)
	}
	return out
}

// unrolledHas4 computes all 20 probe indices for all 4 lanes up front,
// then tests bits probe-major (probe 0 of every lane, then probe 1 of
// every lane, ...) so consecutive memory accesses land in the same region of
// the bit array across lanes for as long as possible, rather than
// chasing one lane fully through the (likely much larger than L2) bit
// array before starting the next.
func unrolledHas4(f *Filter, hs [4]hash160.Hash160) [4]bool {
	var idx [4][20]uint64
	for lane, h := range hs {
		idx[lane] = probes(h)
	}

	out := [4]bool{true, true, true, true}
	for p := 0; p < 20; p++ {
		for lane := 0; lane < 4; lane++ {
			if out[lane] && !f.getBit(idx[lane][p]) {
				out[lane] = false
			}
		}
	}
	return out
}

// Has4 reports membership for 4 hashes at once, agreeing lane-wise with
// Has.
func (f *Filter) Has4(hs [4]hash160.Hash160) [4]bool {
	return hasWide(f, hs)
}

// Has8 reports membership for 8 hashes at once, agreeing lane-wise with
// Has. Implemented as two Has4 calls, matching the batch granularity the
// search pipeline's worker loop operates in.
func (f *Filter) Has8(hs [8]hash160.Hash160) [8]bool {
	var lo, hi [4]hash160.Hash160
	copy(lo[:], hs[0:4])
	copy(hi[:], hs[4:8])

	loOut := f.Has4(lo)
	hiOut := f.Has4(hi)

	var out [8]bool
	copy(out[0:4], loOut[:])
	copy(out[4:8], hiOut[:])
	return out
}

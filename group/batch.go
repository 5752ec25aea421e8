package group

import "github.com/ecloop-go/ecloop/fe"

// doubleBatch doubles every point in pts in place, deferring all of the
// per-point modular inversions (1/2y) into a single Montgomery batch
// inversion. Points at infinity are left untouched.
func doubleBatch(pts []Point) {
	n := len(pts)
	if n == 0 {
		return
	}

	den := make([]fe.Element, n)
	for i, p := range pts {
		if p.Infinity || p.Y.IsZero() {
			den[i] = fe.One // placeholder so BatchInverse never sees a zero
			continue
		}
		fe.MulSmall(&den[i], &p.Y, 2)
	}

	inv := make([]fe.Element, n)
	if err := fe.BatchInverse(inv, den); err != nil {
		// den entries were screened above to be non-zero; unreachable.
		panic("group: batch inversion of non-zero denominators failed")
	}

	for i, p := range pts {
		if p.Infinity || p.Y.IsZero() {
			pts[i] = Point{Infinity: true}
			continue
		}
		var x2, num, lambda fe.Element
		fe.Sqr(&x2, &p.X)
		fe.MulSmall(&num, &x2, 3)
		fe.Mul(&lambda, &num, &inv[i])
		pts[i] = finishAdd(p, p, &lambda)
	}
}

// addBatch adds add[i] into acc[i] for every i, deferring all of the
// per-pair modular inversions (1/(x2-x1)) into a single batch inversion.
// acc is updated in place. The rare cases (either operand at infinity,
// equal x) are resolved individually without consuming a batch-inverted
// slot.
func addBatch(acc []Point, add []Point) {
	n := len(acc)
	if n == 0 {
		return
	}

	den := make([]fe.Element, n)
	special := make([]bool, n)
	for i := range acc {
		p, q := acc[i], add[i]
		if p.Infinity || q.Infinity || fe.Equal(&p.X, &q.X) {
			special[i] = true
			den[i] = fe.One
			continue
		}
		fe.Sub(&den[i], &q.X, &p.X)
	}

	inv := make([]fe.Element, n)
	if err := fe.BatchInverse(inv, den); err != nil {
		panic("group: batch inversion of non-zero denominators failed")
	}

	for i := range acc {
		if special[i] {
			acc[i] = PointAdd(acc[i], add[i])
			continue
		}
		p, q := acc[i], add[i]
		var num, lambda fe.Element
		fe.Sub(&num, &q.Y, &p.Y)
		fe.Mul(&lambda, &num, &inv[i])
		acc[i] = finishAdd(p, q, &lambda)
	}
}

// PointMulBatch computes ks[i]*G for every scalar in ks, running the
// window-4 fixed-base comb in lockstep across the whole batch so that
// every doubling step and every addition step shares a single batch
// inversion instead of paying one inversion per point per step. Scalars
// that are not in ValidScalar are mapped to the point at infinity; the
// caller (the search pipeline) discards those lanes before hashing.
func PointMulBatch(ks []fe.Element) []Point {
	n := len(ks)
	acc := make([]Point, n)
	for i := range acc {
		acc[i] = Point{Infinity: true}
	}
	if n == 0 {
		return acc
	}

	add := make([]Point, n)
	for w := 0; w < windowCount; w++ {
		for d := 0; d < windowBits; d++ {
			doubleBatch(acc)
		}
		any := false
		for i := range ks {
			nib := nibbleAt(&ks[i], w)
			add[i] = genTable[nib]
			if nib != 0 {
				any = true
			}
		}
		if any {
			addBatch(acc, add)
		}
	}

	for i, k := range ks {
		if !ValidScalar(&k) {
			acc[i] = Point{Infinity: true}
		}
	}
	return acc
}

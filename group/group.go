// Package group implements secp256k1 affine group arithmetic: point
// addition and doubling via the field package's modular inverse, a
// windowed fixed-base scalar multiplication against the generator, and a
// batched variant that defers all inversions to one Montgomery batch
// inversion per step so that scanning many scalars at once stays close to
// inversion-free on the hot path.
package group

import (
	"github.com/ecloop-go/ecloop/fe"
)

// Point is an affine point on secp256k1: y^2 = x^3 + 7 (mod p). Infinity
// represents the point at infinity out of band; X and Y are meaningless
// when Infinity is true.
type Point struct {
	X, Y     fe.Element
	Infinity bool
}

// Generator is the secp256k1 base point G.
var Generator Point

// genTable holds {0*G, 1*G, ..., 15*G}, the fixed-base comb used by the
// window-4 scalar multiplication below. Built once at init and never
// mutated afterward, so it is safe to share across goroutines without
// locking.
var genTable [16]Point

const windowBits = 4
const windowCount = 256 / windowBits

func init() {
	gxBytes := [32]byte{
		0x79, 0xBE, 0x66, 0x7E, 0xF9, 0xDC, 0xBB, 0xAC, 0x55, 0xA0, 0x62, 0x95, 0xCE, 0x87, 0x0B, 0x07,
		0x02, 0x9B, 0xFC, 0xDB, 0x2D, 0xCE, 0x28, 0xD9, 0x59, 0xF2, 0x81, 0x5B, 0x16, 0xF8, 0x17, 0x98,
	}
	gyBytes := [32]byte{
		0x48, 0x3A, 0xDA, 0x77, 0x26, 0xA3, 0xC4, 0x65, 0x5D, 0xA4, 0xFB, 0xFC, 0x0E, 0x11, 0x08, 0xA8,
		0xFD, 0x17, 0xB4, 0x48, 0xA6, 0x85, 0x54, 0x19, 0x9C, 0x47, 0xD0, 0x8F, 0xFB, 0x10, 0xD4, 0xB8,
	}
	Generator.X.SetBytes(gxBytes[:])
	Generator.Y.SetBytes(gyBytes[:])

	genTable[0] = Point{Infinity: true}
	genTable[1] = Generator
	for i := 2; i < 16; i++ {
		genTable[i] = PointAdd(genTable[i-1], Generator)
	}
}

// PointAdd returns p + q. Handles both operands at infinity and the p ==
// -q case (returning infinity) without special casing by the caller.
func PointAdd(p, q Point) Point {
	if p.Infinity {
		return q
	}
	if q.Infinity {
		return p
	}
	if fe.Equal(&p.X, &q.X) {
		if fe.Equal(&p.Y, &q.Y) {
			return PointDouble(p)
		}
		return Point{Infinity: true}
	}

	var num, den, inv, lambda fe.Element
	fe.Sub(&num, &q.Y, &p.Y)
	fe.Sub(&den, &q.X, &p.X)
	_ = fe.Inv(&inv, &den) // den != 0: x's differ, checked above
	fe.Mul(&lambda, &num, &inv)

	return finishAdd(p, q, &lambda)
}

// PointDouble returns p + p.
func PointDouble(p Point) Point {
	if p.Infinity || p.Y.IsZero() {
		return Point{Infinity: true}
	}

	var x2, num, den, inv, lambda fe.Element
	fe.Sqr(&x2, &p.X)
	fe.MulSmall(&num, &x2, 3)
	fe.MulSmall(&den, &p.Y, 2)
	_ = fe.Inv(&inv, &den) // den != 0: checked p.Y.IsZero() above
	fe.Mul(&lambda, &num, &inv)

	return finishAdd(p, p, &lambda)
}

// finishAdd completes a point addition/doubling once the slope (lambda)
// is known: x3 = lambda^2 - x1 - x2, y3 = lambda*(x1 - x3) - y1.
func finishAdd(p, q Point, lambda *fe.Element) Point {
	var lambda2, x3, y3, t fe.Element
	fe.Sqr(&lambda2, lambda)
	fe.Sub(&t, &lambda2, &p.X)
	fe.Sub(&x3, &t, &q.X)
	fe.Sub(&t, &p.X, &x3)
	fe.Mul(&t, lambda, &t)
	fe.Sub(&y3, &t, &p.Y)
	return Point{X: x3, Y: y3}
}

// ValidScalar reports whether k is a usable private scalar: in [1, n).
func ValidScalar(k *fe.Element) bool {
	return !k.IsZero() && fe.Cmp(k, &fe.N) < 0
}

// nibbleAt extracts 4-bit window w (0 = most significant) from k.
func nibbleAt(k *fe.Element, w int) uint64 {
	bitPos := 252 - windowBits*w
	limb := bitPos / 64
	shift := uint(bitPos % 64)
	return (k[limb] >> shift) & 0xF
}

// PointMul computes k*G using the window-4 fixed-base comb. Scalar
// validity (k in [1, n)) is the caller's responsibility; callers MUST
// filter invalid scalars (see ValidScalar) before calling.
func PointMul(k *fe.Element) Point {
	acc := Point{Infinity: true}
	for w := 0; w < windowCount; w++ {
		for d := 0; d < windowBits; d++ {
			acc = PointDouble(acc)
		}
		nib := nibbleAt(k, w)
		if nib != 0 {
			acc = PointAdd(acc, genTable[nib])
		}
	}
	return acc
}

// Compress encodes p as a 33-byte SEC1 compressed public key: byte 0 is
// 0x02 | (y&1), bytes 1..32 are x big-endian. The second return value is
// false for the point at infinity, which has no compressed encoding.
func Compress(p Point) ([33]byte, bool) {
	var out [33]byte
	if p.Infinity {
		return out, false
	}
	if p.Y.IsOdd() {
		out[0] = 0x03
	} else {
		out[0] = 0x02
	}
	xb := p.X.Bytes()
	copy(out[1:], xb[:])
	return out, true
}

// Package fe implements 256-bit field arithmetic for secp256k1: modular
// arithmetic over the curve prime p = 2^256 - 2^32 - 977, plus the handful
// of mod-n helpers the scalar generator needs.
//
// An Element stores its value as four 64-bit limbs in little-endian order
// (limb 0 is least significant), matching the on-the-wire/in-memory layout
// described for scalars and coordinates throughout this codebase. Every
// operation that returns an Element leaves it fully reduced: callers never
// observe a value >= the active modulus.
package fe

import (
	"errors"
	"math/bits"
)

// Element is a 256-bit unsigned integer, four 64-bit limbs little-endian.
type Element [4]uint64

// ErrDomain is returned by Inv when asked to invert zero.
var ErrDomain = errors.New("fe: domain error")

// fieldPrimeC is c in p = 2^256 - c, the low-weight form of the secp256k1
// field prime (c = 2^32 + 977).
const fieldPrimeC = 0x1000003D1

// P is the secp256k1 field prime, 2^256 - 2^32 - 977.
var P = Element{
	0xFFFFFFFEFFFFFC2F,
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
}

// N is the secp256k1 group order.
var N = Element{
	0xBFD25E8CD0364141,
	0xBAAEDCE6AF48A03B,
	0xFFFFFFFFFFFFFFFE,
	0xFFFFFFFFFFFFFFFF,
}

// Zero and One are the additive and multiplicative identities.
var (
	Zero = Element{0, 0, 0, 0}
	One  = Element{1, 0, 0, 0}
)

// SetBytes decodes a 32-byte big-endian value into an Element, reducing it
// modulo p if it is not already canonical.
func (z *Element) SetBytes(b []byte) *Element {
	if len(b) != 32 {
		panic("fe: SetBytes requires a 32-byte slice")
	}
	var x Element
	for i := 0; i < 4; i++ {
		off := 24 - 8*i
		x[i] = uint64(b[off])<<56 | uint64(b[off+1])<<48 | uint64(b[off+2])<<40 | uint64(b[off+3])<<32 |
			uint64(b[off+4])<<24 | uint64(b[off+5])<<16 | uint64(b[off+6])<<8 | uint64(b[off+7])
	}
	reduceOnce(&x, &P)
	*z = x
	return z
}

// Bytes encodes the element as 32 big-endian bytes.
func (x *Element) Bytes() [32]byte {
	var out [32]byte
	for i := 0; i < 4; i++ {
		off := 24 - 8*i
		v := x[i]
		out[off] = byte(v >> 56)
		out[off+1] = byte(v >> 48)
		out[off+2] = byte(v >> 40)
		out[off+3] = byte(v >> 32)
		out[off+4] = byte(v >> 24)
		out[off+5] = byte(v >> 16)
		out[off+6] = byte(v >> 8)
		out[off+7] = byte(v)
	}
	return out
}

// SetUint64 sets z to a small unsigned value.
func (z *Element) SetUint64(v uint64) *Element {
	*z = Element{v, 0, 0, 0}
	return z
}

// IsZero reports whether x is zero.
func (x *Element) IsZero() bool {
	return x[0] == 0 && x[1] == 0 && x[2] == 0 && x[3] == 0
}

// IsOdd reports whether x is odd.
func (x *Element) IsOdd() bool {
	return x[0]&1 == 1
}

// Cmp compares x and y as unsigned 256-bit integers: -1, 0, or 1.
func Cmp(x, y *Element) int {
	for i := 3; i >= 0; i-- {
		if x[i] != y[i] {
			if x[i] > y[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Equal reports whether x and y hold the same value.
func Equal(x, y *Element) bool {
	return Cmp(x, y) == 0
}

// BitLen returns the number of bits needed to represent x (0 for zero).
func BitLen(x *Element) int {
	for i := 3; i >= 0; i-- {
		if x[i] != 0 {
			return i*64 + bits.Len64(x[i])
		}
	}
	return 0
}

func addRaw(z, x, y *Element) uint64 {
	var c uint64
	z[0], c = bits.Add64(x[0], y[0], c)
	z[1], c = bits.Add64(x[1], y[1], c)
	z[2], c = bits.Add64(x[2], y[2], c)
	z[3], c = bits.Add64(x[3], y[3], c)
	return c
}

func subRaw(z, x, y *Element) uint64 {
	var b uint64
	z[0], b = bits.Sub64(x[0], y[0], b)
	z[1], b = bits.Sub64(x[1], y[1], b)
	z[2], b = bits.Sub64(x[2], y[2], b)
	z[3], b = bits.Sub64(x[3], y[3], b)
	return b
}

// reduceOnce subtracts m from z while z >= m. Since every caller only ever
// feeds it a value less than 2m, at most one subtraction ever fires; the
// loop form just keeps the invariant obviously correct at every call site.
func reduceOnce(z, m *Element) {
	for Cmp(z, m) >= 0 {
		subRaw(z, z, m)
	}
}

// Add sets z = x + y mod p.
func Add(z, x, y *Element) *Element {
	var t Element
	carry := addRaw(&t, x, y)
	if carry != 0 {
		// t represents 2^256 + actual_sum; 2^256 == fieldPrimeC (mod p).
		addRaw(&t, &t, &Element{fieldPrimeC, 0, 0, 0})
	}
	reduceOnce(&t, &P)
	*z = t
	return z
}

// Sub sets z = x - y mod p.
func Sub(z, x, y *Element) *Element {
	var t Element
	borrow := subRaw(&t, x, y)
	if borrow != 0 {
		addRaw(&t, &t, &P)
	}
	reduceOnce(&t, &P)
	*z = t
	return z
}

// Neg sets z = -x mod p.
func Neg(z, x *Element) *Element {
	return Sub(z, &Zero, x)
}

// AddSmall sets z = x + c mod p for a small uint64 addend.
func AddSmall(z, x *Element, c uint64) *Element {
	return Add(z, x, &Element{c, 0, 0, 0})
}

// mulWide computes the full 512-bit product of x and y as eight
// little-endian limbs.
func mulWide(x, y *Element) [8]uint64 {
	var r [8]uint64
	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(x[i], y[j])
			var c1, c2 uint64
			lo, c1 = bits.Add64(lo, r[i+j], 0)
			lo, c2 = bits.Add64(lo, carry, 0)
			r[i+j] = lo
			carry = hi + c1 + c2
		}
		k := i + 4
		for carry != 0 {
			sum, c := bits.Add64(r[k], carry, 0)
			r[k] = sum
			carry = c
			k++
		}
	}
	return r
}

// mulByConst multiplies the little-endian limb slice a by the 64-bit
// constant c, returning len(a)+1 limbs (the top limb may be zero).
func mulByConst(a []uint64, c uint64) []uint64 {
	out := make([]uint64, len(a)+1)
	var carry uint64
	for i, ai := range a {
		hi, lo := bits.Mul64(ai, c)
		var c1 uint64
		lo, c1 = bits.Add64(lo, carry, 0)
		out[i] = lo
		carry = hi + c1
	}
	out[len(a)] = carry
	return out
}

// addSlice returns a + b as a newly allocated slice, one limb longer than
// the longer input if the final carry overflows it.
func addSlice(a, b []uint64) []uint64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]uint64, n)
	var carry uint64
	for i := 0; i < n; i++ {
		var av, bv uint64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		var c1, c2 uint64
		s, c1 := bits.Add64(av, bv, 0)
		s, c2 = bits.Add64(s, carry, 0)
		out[i] = s
		carry = c1 + c2
	}
	if carry != 0 {
		out = append(out, carry)
	}
	return out
}

// reduceWide folds an eight-limb value (as produced by mulWide) down to a
// canonical Element modulo p, exploiting 2^256 == fieldPrimeC (mod p):
// the contribution above bit 256 is repeatedly multiplied by that constant
// and folded back into the low 256 bits until nothing is left above bit
// 256, then a final conditional subtraction makes the result canonical.
func reduceWide(t [8]uint64) Element {
	limbs := append([]uint64(nil), t[:]...)
	for len(limbs) > 4 {
		extra := limbs[4:]
		limbs = limbs[:4:4]
		if len(extra) == 1 && extra[0] == 0 {
			break
		}
		prod := mulByConst(extra, fieldPrimeC)
		limbs = addSlice(limbs, prod)
	}
	var z Element
	copy(z[:], limbs[:4])
	reduceOnce(&z, &P)
	return z
}

// Mul sets z = x * y mod p.
func Mul(z, x, y *Element) *Element {
	*z = reduceWide(mulWide(x, y))
	return z
}

// Sqr sets z = x^2 mod p.
func Sqr(z, x *Element) *Element {
	return Mul(z, x, x)
}

// MulSmall sets z = x * c mod p for a small uint64 multiplier.
func MulSmall(z, x *Element, c uint64) *Element {
	return Mul(z, x, &Element{c, 0, 0, 0})
}

// Pow sets z = x^e mod p using left-to-right square-and-multiply. Not
// constant time; side-channel resistance is out of scope for this system.
func Pow(z, x, e *Element) *Element {
	result := One
	n := BitLen(e)
	for i := n - 1; i >= 0; i-- {
		Sqr(&result, &result)
		limb, bit := i/64, uint(i%64)
		if (e[limb]>>bit)&1 == 1 {
			Mul(&result, &result, x)
		}
	}
	*z = result
	return z
}

// pMinus2 is P - 2, the Fermat exponent for inversion.
var pMinus2 = Element{0xFFFFFFFEFFFFFC2D, 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF}

// Inv sets z = x^-1 mod p via Fermat's little theorem (x^(p-2)). Returns
// ErrDomain without modifying z if x is zero.
func Inv(z, x *Element) error {
	if x.IsZero() {
		return ErrDomain
	}
	Pow(z, x, &pMinus2)
	return nil
}

// BatchInverse computes the modular inverse of every element of in,
// writing the results to out (which may alias in), using Montgomery's
// trick: 3k-3 multiplications and a single inversion for k elements.
// Every element of in must be non-zero.
func BatchInverse(out, in []Element) error {
	k := len(in)
	if k == 0 {
		return nil
	}

	prefix := make([]Element, k)
	prefix[0] = One
	if k > 1 {
		prefix[1] = in[0]
	}
	for i := 2; i < k; i++ {
		Mul(&prefix[i], &prefix[i-1], &in[i-1])
	}

	var acc Element
	if k == 1 {
		acc = in[0]
	} else {
		Mul(&acc, &prefix[k-1], &in[k-1])
	}
	if err := Inv(&acc, &acc); err != nil {
		return err
	}

	for i := k - 1; i > 0; i-- {
		var inv Element
		Mul(&inv, &acc, &prefix[i])
		Mul(&acc, &acc, &in[i])
		out[i] = inv
	}
	out[0] = acc
	return nil
}

// AddModN sets z = x + y mod n (the curve order), used only by
// range-constrained random scalar generation.
func AddModN(z, x, y *Element) *Element {
	var t Element
	carry := addRaw(&t, x, y)
	if carry != 0 {
		// 2^256 mod n: n = 2^256 - nC, so 2^256 == nC (mod n).
		addRaw(&t, &t, &nComplement)
	}
	reduceOnce(&t, &N)
	*z = t
	return z
}

// SubModN sets z = x - y mod n.
func SubModN(z, x, y *Element) *Element {
	var t Element
	borrow := subRaw(&t, x, y)
	if borrow != 0 {
		addRaw(&t, &t, &N)
	}
	reduceOnce(&t, &N)
	*z = t
	return z
}

// nComplement is 2^256 - N, needed to fold a carry out of a mod-n add back
// into range the same way fieldPrimeC does for mod-p arithmetic.
var nComplement = Element{0x402DA1732FC9BEBF, 0x4551231950B75FC4, 0x1, 0}

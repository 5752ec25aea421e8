package fe

import (
	"crypto/rand"
	"testing"
)

func randElement(t *testing.T) Element {
	t.Helper()
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	var e Element
	e.SetBytes(b[:])
	return e
}

func TestZeroAndOne(t *testing.T) {
	if !Zero.IsZero() {
		t.Error("Zero should be zero")
	}
	if One.IsZero() {
		t.Error("One should not be zero")
	}
	if !Equal(&One, &One) {
		t.Error("One should equal itself")
	}
}

func TestSetBytesRoundTrip(t *testing.T) {
	cases := [][32]byte{
		{},
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
	}
	for _, b := range cases {
		var e Element
		e.SetBytes(b[:])
		got := e.Bytes()
		if got != b {
			t.Errorf("SetBytes/Bytes round trip: got %x, want %x", got, b)
		}
	}
}

func TestSetBytesReducesAboveP(t *testing.T) {
	pb := P.Bytes()
	var e Element
	e.SetBytes(pb[:])
	if !e.IsZero() {
		t.Error("SetBytes(p) should reduce to 0")
	}
}

func TestAddSubInverse(t *testing.T) {
	for i := 0; i < 64; i++ {
		a := randElement(t)
		b := randElement(t)

		var sum, back Element
		Add(&sum, &a, &b)
		Sub(&back, &sum, &b)
		if !Equal(&back, &a) {
			t.Fatalf("(a+b)-b != a for a=%x b=%x", a.Bytes(), b.Bytes())
		}
	}
}

func TestNegIsAdditiveInverse(t *testing.T) {
	a := randElement(t)
	var neg, sum Element
	Neg(&neg, &a)
	Add(&sum, &a, &neg)
	if !sum.IsZero() {
		t.Errorf("a + (-a) should be zero, got %x", sum.Bytes())
	}
}

func TestMulInverse(t *testing.T) {
	for i := 0; i < 32; i++ {
		a := randElement(t)
		if a.IsZero() {
			continue
		}
		var inv, prod Element
		if err := Inv(&inv, &a); err != nil {
			t.Fatalf("Inv: %v", err)
		}
		Mul(&prod, &a, &inv)
		if !Equal(&prod, &One) {
			t.Fatalf("a * inv(a) != 1 for a=%x, got %x", a.Bytes(), prod.Bytes())
		}
	}
}

func TestInvZeroIsDomainError(t *testing.T) {
	var out Element
	if err := Inv(&out, &Zero); err == nil {
		t.Error("Inv(0) should return an error")
	}
}

func TestBatchInverseMatchesInv(t *testing.T) {
	in := make([]Element, 8)
	for i := range in {
		in[i] = randElement(t)
	}
	out := make([]Element, len(in))
	if err := BatchInverse(out, in); err != nil {
		t.Fatalf("BatchInverse: %v", err)
	}
	for i := range in {
		var want Element
		if err := Inv(&want, &in[i]); err != nil {
			t.Fatalf("Inv: %v", err)
		}
		if !Equal(&want, &out[i]) {
			t.Errorf("BatchInverse[%d] = %x, want %x", i, out[i].Bytes(), want.Bytes())
		}
	}
}

func TestMulSmallMatchesRepeatedAdd(t *testing.T) {
	a := randElement(t)
	var want Element
	for i := 0; i < 5; i++ {
		Add(&want, &want, &a)
	}
	var got Element
	MulSmall(&got, &a, 5)
	if !Equal(&want, &got) {
		t.Errorf("MulSmall(a,5) = %x, want %x", got.Bytes(), want.Bytes())
	}
}

func TestCmpOrdering(t *testing.T) {
	if Cmp(&Zero, &One) >= 0 {
		t.Error("0 should compare less than 1")
	}
	if Cmp(&One, &Zero) <= 0 {
		t.Error("1 should compare greater than 0")
	}
	if Cmp(&One, &One) != 0 {
		t.Error("1 should compare equal to itself")
	}
}

func TestAddModNWrapsAtOrder(t *testing.T) {
	var nMinus1 Element
	Sub(&nMinus1, &N, &One)

	var sum Element
	AddModN(&sum, &nMinus1, &One)
	if !sum.IsZero() {
		t.Errorf("(n-1) + 1 mod n should be 0, got %x", sum.Bytes())
	}
}

func TestBitLen(t *testing.T) {
	if BitLen(&Zero) != 0 {
		t.Errorf("BitLen(0) = %d, want 0", BitLen(&Zero))
	}
	if BitLen(&One) != 1 {
		t.Errorf("BitLen(1) = %d, want 1", BitLen(&One))
	}
	var e Element
	e.SetUint64(0x100)
	if got := BitLen(&e); got != 9 {
		t.Errorf("BitLen(0x100) = %d, want 9", got)
	}
}

package bloom

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecloop-go/ecloop/hash160"
)

func randHash(t *testing.T) hash160.Hash160 {
	t.Helper()
	var b [20]byte
	if _, err := rand.Read(b[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return hash160.Hash160(b)
}

func TestAddThenHas(t *testing.T) {
	f := New(1000, 1e-6)
	h := randHash(t)
	if f.Has(h) {
		t.Error("Has should be false before Add")
	}
	f.Add(h)
	if !f.Has(h) {
		t.Error("Has should be true after Add")
	}
}

func TestKnownGeneratorHash(t *testing.T) {
	want, err := hex.DecodeString("751e76e8199196d454941c45d1b3a323f1433bd6")
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	var h hash160.Hash160
	copy(h[:], want)

	// Sized for 1000 entries but holding only h. A filter sized for a
	// single entry is one 64-bit word, where every probe reduces to its
	// low 6 bits and most single-bit neighbors of h hit the same bits.
	f := New(1000, 1e-9)
	f.Add(h)
	if !f.Has(h) {
		t.Fatal("Has should be true for the inserted hash")
	}

	for bit := 0; bit < 160; bit++ {
		flipped := h
		flipped[bit/8] ^= 1 << uint(bit%8)
		if flipped == h {
			continue
		}
		// Not an invariant (false positives are allowed), but with FPR
		// this low and only one entry, none of the 160 single-bit
		// neighbors of the true member should collide in practice.
		if f.Has(flipped) {
			t.Errorf("bit-flip neighbor at bit %d unexpectedly FOUND", bit)
		}
	}
}

func TestFalseNegativeFreedom(t *testing.T) {
	const n = 10000
	f := New(n, 1e-6)
	hashes := make([]hash160.Hash160, n)
	for i := range hashes {
		hashes[i] = randHash(t)
		f.Add(hashes[i])
	}
	for i, h := range hashes {
		if !f.Has(h) {
			t.Fatalf("entry %d not found after insertion: %x", i, h)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	const n = 1000
	f := New(n, 1e-6)
	hashes := make([]hash160.Hash160, n)
	for i := range hashes {
		hashes[i] = randHash(t)
		f.Add(hashes[i])
	}

	path := filepath.Join(t.TempDir(), "test.blf")
	if err := f.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(raw) < 4 || raw[0] != 0x46 || raw[1] != 0x42 || raw[2] != 0x43 || raw[3] != 0x45 {
		t.Fatalf("unexpected magic bytes: %x", raw[:4])
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer loaded.Close()

	if loaded.Words() != f.Words() {
		t.Fatalf("Words() mismatch: got %d, want %d", loaded.Words(), f.Words())
	}
	for i, h := range hashes {
		if !loaded.Has(h) {
			t.Fatalf("entry %d not found after round trip: %x", i, h)
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.blf")
	if err := os.WriteFile(path, make([]byte, 32), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err != ErrFormat {
		t.Errorf("Load(bad magic) = %v, want ErrFormat", err)
	}
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.blf")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err != ErrFormat {
		t.Errorf("Load(short file) = %v, want ErrFormat", err)
	}
}

func TestHas4MatchesScalar(t *testing.T) {
	f := New(1000, 1e-6)
	var hs [4]hash160.Hash160
	for i := range hs {
		hs[i] = randHash(t)
		if i%2 == 0 {
			f.Add(hs[i])
		}
	}

	gotUnrolled := unrolledHas4(f, hs)
	gotGeneric := genericHas4(f, hs)
	for i := range hs {
		want := f.Has(hs[i])
		if gotUnrolled[i] != want {
			t.Errorf("unrolledHas4[%d] = %v, want %v", i, gotUnrolled[i], want)
		}
		if gotGeneric[i] != want {
			t.Errorf("genericHas4[%d] = %v, want %v", i, gotGeneric[i], want)
		}
	}
}

func TestHas8MatchesScalar(t *testing.T) {
	f := New(1000, 1e-6)
	var hs [8]hash160.Hash160
	for i := range hs {
		hs[i] = randHash(t)
		if i%3 == 0 {
			f.Add(hs[i])
		}
	}

	got := f.Has8(hs)
	for i := range hs {
		if want := f.Has(hs[i]); got[i] != want {
			t.Errorf("Has8[%d] = %v, want %v", i, got[i], want)
		}
	}
}

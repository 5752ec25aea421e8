package hash160

import (
	"encoding/hex"
	"testing"
)

func TestSumKnownVectors(t *testing.T) {
	cases := []struct {
		name   string
		pubHex string
		want   string
	}{
		{
			name:   "k=1",
			pubHex: "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
			want:   "751e76e8199196d454941c45d1b3a323f1433bd6",
		},
		{
			name:   "k=2",
			pubHex: "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5",
			want:   "06afd46bcdfd22ef94ac122aa11f241244a37ecc",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pub, err := hex.DecodeString(c.pubHex)
			if err != nil {
				t.Fatalf("bad test fixture: %v", err)
			}
			got := Sum(pub)
			gotHex := hex.EncodeToString(got[:])
			if gotHex != c.want {
				t.Errorf("Sum(%s) = %s, want %s", c.name, gotHex, c.want)
			}
		})
	}
}

func TestWordsRoundTrip(t *testing.T) {
	h := Hash160{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	got := FromWords(h.Words())
	if got != h {
		t.Errorf("FromWords(Words(h)) = %x, want %x", got, h)
	}
}

func TestBatchSumMatchesSum(t *testing.T) {
	var a, b [33]byte
	a[0] = 0x02
	b[0] = 0x03
	b[1] = 0x01

	got := BatchSum([][33]byte{a, b})
	if got[0] != Sum(a[:]) {
		t.Error("BatchSum[0] should match Sum(a)")
	}
	if got[1] != Sum(b[:]) {
		t.Error("BatchSum[1] should match Sum(b)")
	}
}

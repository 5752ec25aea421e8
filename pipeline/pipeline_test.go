package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecloop-go/ecloop/bloom"
	"github.com/ecloop-go/ecloop/fe"
	"github.com/ecloop-go/ecloop/group"
	"github.com/ecloop-go/ecloop/hash160"
)

func scalarFromUint64(v uint64) fe.Element {
	var e fe.Element
	e.SetUint64(v)
	return e
}

// TestRangeSearchFindsExactMatches reproduces S6: searching [1, 1000]
// with a filter pre-populated with the hash160s of k = {42, 777} must
// report exactly those two scalars and no others.
func TestRangeSearchFindsExactMatches(t *testing.T) {
	targets := []uint64{42, 777}
	f := bloom.New(uint64(len(targets)), 1e-9)
	for _, k := range targets {
		scalar := scalarFromUint64(k)
		p := group.PointMul(&scalar)
		key, ok := group.Compress(p)
		if !ok {
			t.Fatalf("Compress(%d*G) unexpectedly infinity", k)
		}
		f.Add(hash160.Sum(key[:]))
	}

	lo := scalarFromUint64(1)
	hi := scalarFromUint64(1000)

	q := NewQueue[Batch](4)
	sink := &SliceSink{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go RunRangeProducer(ctx, q, lo, hi, 64)
	RunWorkers(ctx, q, f, sink, 2, zerolog.Nop())

	got := sink.Matches()
	gotScalars := make(map[uint64]bool, len(got))
	for _, m := range got {
		b := m.Scalar.Bytes()
		var v uint64
		for i := 24; i < 32; i++ {
			v = v<<8 | uint64(b[i])
		}
		gotScalars[v] = true
	}

	for _, k := range targets {
		if !gotScalars[k] {
			t.Errorf("expected match for k=%d, not found in %v", k, gotScalars)
		}
	}
	if len(gotScalars) != len(targets) {
		t.Errorf("got %d distinct matching scalars, want %d: %v", len(gotScalars), len(targets), gotScalars)
	}
}

func TestRangeProducerRespectsCancellation(t *testing.T) {
	lo := scalarFromUint64(1)
	hi := scalarFromUint64(1 << 40) // far larger than any test should actually drain

	q := NewQueue[Batch](1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunRangeProducer(ctx, q, lo, hi, 8)
		close(done)
	}()

	q.Get() // let the producer fill its one-slot queue once
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not stop after context cancellation")
	}

	// Drain until closed; RunRangeProducer must always Close() on exit.
	for {
		if _, ok := q.Get(); !ok {
			break
		}
	}
}

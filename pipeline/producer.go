package pipeline

import (
	"context"

	"github.com/ecloop-go/ecloop/fe"
	"github.com/ecloop-go/ecloop/prng"
)

// Batch is the unit the producer pushes and a worker consumes: a slice
// of candidate private scalars destined for group.PointMulBatch.
type Batch []fe.Element

// RunRangeProducer feeds consecutive scalars lo, lo+1, ..., hi (inclusive)
// into q in batches of batchSize, then closes q. It returns early,
// closing q, if ctx is canceled between batches.
func RunRangeProducer(ctx context.Context, q *Queue[Batch], lo, hi fe.Element, batchSize int) {
	defer q.Close()

	cur := lo
	for fe.Cmp(&cur, &hi) <= 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch := make(Batch, 0, batchSize)
		for i := 0; i < batchSize && fe.Cmp(&cur, &hi) <= 0; i++ {
			batch = append(batch, cur)
			fe.AddSmall(&cur, &cur, 1)
		}
		q.Put(batch)
	}
}

// RunRandomProducer feeds count scalars drawn uniformly from [lo, hi] via
// r into q in batches of batchSize, then closes q. r must not be used by
// any other goroutine concurrently.
func RunRandomProducer(ctx context.Context, q *Queue[Batch], r *prng.Rng, lo, hi fe.Element, batchSize int, count uint64) {
	defer q.Close()

	var produced uint64
	for produced < count {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n := batchSize
		if remaining := count - produced; uint64(n) > remaining {
			n = int(remaining)
		}
		batch := make(Batch, n)
		for i := range batch {
			batch[i] = prng.RandRange(r, &lo, &hi)
		}
		produced += uint64(n)
		q.Put(batch)
	}
}

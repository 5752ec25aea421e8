package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecloop-go/ecloop/bloom"
	"github.com/ecloop-go/ecloop/fe"
	"github.com/ecloop-go/ecloop/group"
	"github.com/ecloop-go/ecloop/hash160"
)

// RunWorkers starts workers (or runtime.NumCPU() of them if workers <=
// 0), each pulling batches from q until it closes, and blocks until all
// of them have returned. Each batch is multiplied against the generator
// with group.PointMulBatch, compressed, hashed, and tested against
// filter in groups of 8 (bloom.Filter.Has8), with any trailing remainder
// tested one at a time via bloom.Filter.Has. Positive lanes are reported
// to sink. ctx cancellation stops a worker between batches; it does not
// interrupt work already pulled from the queue.
func RunWorkers(ctx context.Context, q *Queue[Batch], filter *bloom.Filter, sink EventSink, workers int, logger zerolog.Logger) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, q, filter, sink, logger.With().Int("worker", id).Logger())
		}(i)
	}
	wg.Wait()
}

func runWorker(ctx context.Context, q *Queue[Batch], filter *bloom.Filter, sink EventSink, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, ok := q.Get()
		if !ok {
			return
		}

		// Filter out-of-range scalars before dispatch, per the group
		// package's contract: PointMulBatch still screens defensively,
		// but a well-formed producer's batches should never need that
		// fallback to trigger.
		valid := batch[:0:0]
		for _, k := range batch {
			if group.ValidScalar(&k) {
				valid = append(valid, k)
			}
		}

		points := group.PointMulBatch(valid)

		scalars := make([]fe.Element, 0, len(points))
		hashes := make([]hash160.Hash160, 0, len(points))
		for i, p := range points {
			key, ok := group.Compress(p)
			if !ok {
				continue
			}
			scalars = append(scalars, valid[i])
			hashes = append(hashes, hash160.Sum(key[:]))
		}

		n := len(hashes)
		i := 0
		for ; i+8 <= n; i += 8 {
			var chunk [8]hash160.Hash160
			copy(chunk[:], hashes[i:i+8])
			hits := filter.Has8(chunk)
			for j, hit := range hits {
				if hit {
					sink.Report(Match{Scalar: scalars[i+j], Hash: hashes[i+j]})
				}
			}
		}
		for ; i < n; i++ {
			if filter.Has(hashes[i]) {
				sink.Report(Match{Scalar: scalars[i], Hash: hashes[i]})
			}
		}

		logger.Debug().Int("batch", len(batch)).Msg("batch processed")
	}
}

package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/ecloop-go/ecloop/bloom"
	"github.com/ecloop-go/ecloop/pipeline"
	"github.com/ecloop-go/ecloop/prng"
)

// batchSize is the producer's batch granularity; see pipeline.Batch.
const batchSize = 1024

// queueDepth is the bounded queue's capacity in batches, relative to the
// worker count (typical Q = 2*workers per the pipeline design).
const queueDepth = 2

// runSearch loads cfg.file, starts a range- or random-mode producer
// (random mode when cfg.hasSeed or cfg.urandom is set), runs the worker
// pool until the producer's scalars are exhausted or ctx is canceled,
// and returns every match observed.
func runSearch(ctx context.Context, cfg *searchConfig, logger zerolog.Logger) ([]pipeline.Match, error) {
	filter, err := bloom.Load(cfg.file)
	if err != nil {
		return nil, err
	}
	defer filter.Close()
	logger.Info().Str("file", cfg.file).Int("words", filter.Words()).Msg("filter loaded")

	workers := cfg.threads
	q := pipeline.NewQueue[pipeline.Batch](queueDepth * workerCount(workers))
	sink := &pipeline.SliceSink{}

	if cfg.hasSeed || cfg.urandom {
		seed := cfg.seed
		if cfg.urandom {
			seed = urandomSeed()
		}
		var r prng.Rng
		r.Seed(seed)

		count, err := rangeSpan(cfg)
		if err != nil {
			return nil, err
		}
		go pipeline.RunRandomProducer(ctx, q, &r, cfg.lo, cfg.hi, batchSize, count)
	} else {
		go pipeline.RunRangeProducer(ctx, q, cfg.lo, cfg.hi, batchSize)
	}

	logger.Info().Int("workers", workerCount(workers)).Msg("search started")
	pipeline.RunWorkers(ctx, q, filter, sink, workers, logger)

	return sink.Matches(), nil
}

func workerCount(w int) int {
	if w > 0 {
		return w
	}
	return runtime.NumCPU()
}

func urandomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read failing means the platform's entropy source
		// is unavailable; there is no sane fallback for a seed meant to
		// be unpredictable.
		panic("ecloop: /dev/urandom unavailable: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// rangeSpan reports how many candidate scalars a random-mode search over
// [lo, hi] should draw: one per value in the range, matching range
// mode's exhaustive coverage so both modes are comparable in volume.
func rangeSpan(cfg *searchConfig) (uint64, error) {
	lo := cfg.lo.Bytes()
	hi := cfg.hi.Bytes()
	// The search ranges this tool targets fit in 64 bits in practice
	// (puzzle-style ranges); wider ranges would need a bigger counter
	// type than the pipeline's producer currently accepts.
	var loVal, hiVal uint64
	for i := 24; i < 32; i++ {
		loVal = loVal<<8 | uint64(lo[i])
		hiVal = hiVal<<8 | uint64(hi[i])
	}
	return hiVal - loVal + 1, nil
}

package pipeline

import (
	"sync"

	"github.com/ecloop-go/ecloop/fe"
	"github.com/ecloop-go/ecloop/hash160"
)

// Match is a single positive bloom-filter hit: the scalar and the
// hash160 derived from it. The filter may false-positive, so a Match is
// a candidate for the caller to verify, not a guaranteed hit.
type Match struct {
	Scalar fe.Element
	Hash   hash160.Hash160
}

// EventSink receives matches from worker goroutines. Implementations
// must be safe for concurrent use: every worker in the pool may call
// Report at once.
type EventSink interface {
	Report(m Match)
}

// SliceSink is an EventSink that appends matches to an in-memory slice
// behind a mutex, the shape search's test scenarios and short-lived CLI
// runs use.
type SliceSink struct {
	mu      sync.Mutex
	matches []Match
}

// Report appends m, serializing concurrent callers.
func (s *SliceSink) Report(m Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, m)
}

// Matches returns a snapshot copy of everything reported so far.
func (s *SliceSink) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out
}

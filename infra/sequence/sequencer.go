package sequence

import (
	"strconv"
	"sync/atomic"
)

// Sequencer issues strictly monotonic arrival sequence numbers and the
// order identifiers derived from them. Sequence numbers are the
// time-priority tie-break key inside a price level, so they must never
// repeat or go backwards within a run.
type Sequencer struct {
	prefix string
	next   atomic.Uint64
}

// New creates a sequencer producing identifiers prefix1, prefix2, ...
func New(prefix string) *Sequencer {
	return &Sequencer{prefix: prefix}
}

// Next returns the next order identifier and its sequence number.
func (s *Sequencer) Next() (string, uint64) {
	n := s.next.Add(1)
	return s.prefix + strconv.FormatUint(n, 10), n
}

// Current returns the last issued sequence number.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

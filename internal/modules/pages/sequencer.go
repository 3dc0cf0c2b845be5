package pages

import "sync"

// Sequencer hands out refresh sequence numbers and tracks, per section, the
// newest one applied. A refresh that completes after a newer one for the same
// section is discarded instead of overwriting fresher data.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	applied map[string]uint64
}

// NewSequencer creates a sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{applied: make(map[string]uint64)}
}

// Next returns a new sequence number, strictly greater than every earlier one
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// TryApply records seq for section and reports true when seq is not lower
// than the last sequence applied to that section
func (s *Sequencer) TryApply(section string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied[section] {
		return false
	}
	s.applied[section] = seq
	return true
}

// Last returns the last sequence applied to section, 0 if none
func (s *Sequencer) Last(section string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied[section]
}

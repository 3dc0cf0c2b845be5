package pages

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencer_NextIsMonotonic(t *testing.T) {
	s := NewSequencer()

	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[uint64]bool)
	for n := range seen {
		assert.False(t, unique[n], "sequence %d handed out twice", n)
		unique[n] = true
	}
	assert.Len(t, unique, 100)
	assert.Equal(t, uint64(101), s.Next())
}

func TestSequencer_StaleCompletionDiscarded(t *testing.T) {
	s := NewSequencer()
	older := s.Next()
	newer := s.Next()

	// The newer refresh completes first
	assert.True(t, s.TryApply("summary", newer))
	assert.False(t, s.TryApply("summary", older))
	assert.Equal(t, newer, s.Last("summary"))
}

func TestSequencer_SameSequenceReapplies(t *testing.T) {
	s := NewSequencer()
	seq := s.Next()

	assert.True(t, s.TryApply("summary", seq))
	assert.True(t, s.TryApply("summary", seq))
}

func TestSequencer_SectionsAreIndependent(t *testing.T) {
	s := NewSequencer()
	older := s.Next()
	newer := s.Next()

	assert.True(t, s.TryApply("summary", newer))
	assert.True(t, s.TryApply("holdings", older))
	assert.Equal(t, uint64(0), s.Last("activity"))
}

// Package loaders provides a minimal in-memory data loader for callers
// that do not bring their own. The command layer treats loaders as opaque
// values, so any loader shape the aggregate understands works equally well.
package loaders

import (
	"fmt"
	"math/rand"
)

// Slice batches over an in-memory slice of samples, optionally reshuffling
// the visit order at the start of every epoch. Not safe for concurrent use.
type Slice[T any] struct {
	samples   []T
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	indices   []int
	position  int
}

// NewSlice returns a loader over samples. The seed makes shuffle order
// reproducible across runs.
func NewSlice[T any](samples []T, batchSize int, shuffle bool, seed int64) (*Slice[T], error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	indices := make([]int, len(samples))
	for i := range indices {
		indices[i] = i
	}

	return &Slice[T]{
		samples:   samples,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
		indices:   indices,
	}, nil
}

// Len returns the number of batches in one epoch.
func (s *Slice[T]) Len() int {
	return (len(s.samples) + s.batchSize - 1) / s.batchSize
}

// Reset rewinds to the first batch and reshuffles when shuffling is
// enabled. Call it before each pass over the data.
func (s *Slice[T]) Reset() {
	s.position = 0
	if s.shuffle {
		s.rng.Shuffle(len(s.indices), func(i, j int) {
			s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
		})
	}
}

// Next returns the next batch, or false when the epoch is exhausted. The
// final batch may be smaller than the configured batch size.
func (s *Slice[T]) Next() ([]T, bool) {
	if s.position >= len(s.indices) {
		return nil, false
	}

	end := s.position + s.batchSize
	if end > len(s.indices) {
		end = len(s.indices)
	}

	batch := make([]T, 0, end-s.position)
	for _, idx := range s.indices[s.position:end] {
		batch = append(batch, s.samples[idx])
	}
	s.position = end
	return batch, true
}

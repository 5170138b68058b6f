package mocks

import (
	"sync"

	"github.com/mcoot/committy/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing. Queued values
// are returned in order; once a queue runs dry, calls return 0.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	intnIndex   int

	uint64Results []uint64
	uint64Index   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result reduced into [0, n)
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.intnResults) || n <= 0 {
		return 0
	}
	result := r.intnResults[r.intnIndex]
	r.intnIndex++
	return result % n
}

// Uint64n returns the next queued result reduced into [0, n)
func (r *MockRandom) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uint64Index >= len(r.uint64Results) || n == 0 {
		return 0
	}
	result := r.uint64Results[r.uint64Index]
	r.uint64Index++
	return result % n
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueUint64n adds values to the Uint64n result queue
func (r *MockRandom) QueueUint64n(values ...uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uint64Results = append(r.uint64Results, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.intnIndex = 0
	r.uint64Results = nil
	r.uint64Index = 0
}

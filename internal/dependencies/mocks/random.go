package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/lineupsheet/internal/dependencies/random"
)

// MockRandom returns queued strings so generated lineup IDs are predictable
type MockRandom struct {
	mu      sync.Mutex
	results []string
	next    int
	calls   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with the given queued results
func NewMockRandom(results ...string) *MockRandom {
	return &MockRandom{results: results}
}

// String returns the next queued result. Once the queue is drained it
// falls back to a counter so IDs stay unique.
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.next < len(r.results) {
		result := r.results[r.next]
		r.next++
		return result
	}
	return fmt.Sprintf("ID%0*d", max(length-2, 1), r.calls)
}

// Queue adds values to the result queue
func (r *MockRandom) Queue(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, values...)
}

// Calls returns how many strings have been generated
func (r *MockRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

package memo

import (
	"sync/atomic"
)

// Stats holds engine performance statistics.
type Stats struct {
	// hits is the number of calls answered from a slot
	hits int64

	// misses is the number of calls that invoked the underlying method
	misses int64

	// invalidations is the number of manually invalidated slots
	invalidations int64

	// teardowns is the number of instances cleared through Teardown
	teardowns int64

	// evictions is the number of owner entries dropped by a bounded store
	evictions int64

	// owners is the current number of instances with live slots
	owners int64
}

// Hits returns the number of cache hits.
func (s *Stats) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns the number of cache misses.
func (s *Stats) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

// Invalidations returns the number of manually invalidated slots.
func (s *Stats) Invalidations() int64 {
	return atomic.LoadInt64(&s.invalidations)
}

// Teardowns returns the number of instances cleared through Teardown.
func (s *Stats) Teardowns() int64 {
	return atomic.LoadInt64(&s.teardowns)
}

// Evictions returns the number of owner entries dropped by a bounded store.
func (s *Stats) Evictions() int64 {
	return atomic.LoadInt64(&s.evictions)
}

// Owners returns the current number of instances with live slots.
func (s *Stats) Owners() int64 {
	return atomic.LoadInt64(&s.owners)
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (s *Stats) HitRate() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Total returns the total number of memoized calls (hits + misses).
func (s *Stats) Total() int64 {
	return s.Hits() + s.Misses()
}

// Reset resets all statistics to zero.
func (s *Stats) Reset() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.invalidations, 0)
	atomic.StoreInt64(&s.teardowns, 0)
	atomic.StoreInt64(&s.evictions, 0)
	atomic.StoreInt64(&s.owners, 0)
}

// Internal methods for updating stats (not exported)

func (s *Stats) incHits() {
	atomic.AddInt64(&s.hits, 1)
}

func (s *Stats) incMisses() {
	atomic.AddInt64(&s.misses, 1)
}

func (s *Stats) incInvalidations() {
	atomic.AddInt64(&s.invalidations, 1)
}

func (s *Stats) incTeardowns() {
	atomic.AddInt64(&s.teardowns, 1)
}

func (s *Stats) incEvictions() {
	atomic.AddInt64(&s.evictions, 1)
}

func (s *Stats) setOwners(count int64) {
	atomic.StoreInt64(&s.owners, count)
}

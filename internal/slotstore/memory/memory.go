// Package memory implements the in-process slot store. It is the default
// backend: slots live in a two-level map keyed by owner and slot key, with
// an optional LRU bound on the number of owners for consumers that never
// participate in the teardown protocol.
package memory

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vnykmshr/memo-go/internal/slot"
	"github.com/vnykmshr/memo-go/internal/slotstore"
)

type ownerSlots map[string]*slot.Slot

// Store implements slotstore.Store backed by process memory.
type Store struct {
	mu            sync.RWMutex
	owners        map[string]ownerSlots
	bounded       *lru.Cache[string, ownerSlots]
	evictCallback slotstore.EvictCallback
	capacity      int
}

// New creates an unbounded memory store.
func New() *Store {
	return &Store{owners: make(map[string]ownerSlots)}
}

// NewBounded creates a memory store that tracks at most maxOwners owners,
// evicting the least recently used owner entry when full.
func NewBounded(maxOwners int) (*Store, error) {
	s := &Store{capacity: maxOwners}

	cache, err := lru.NewWithEvict[string, ownerSlots](maxOwners, func(owner string, _ ownerSlots) {
		if s.evictCallback != nil {
			s.evictCallback(owner)
		}
	})
	if err != nil {
		return nil, err
	}

	s.bounded = cache
	return s, nil
}

// SetEvictCallback registers the owner eviction callback.
func (s *Store) SetEvictCallback(callback slotstore.EvictCallback) {
	s.mu.Lock()
	s.evictCallback = callback
	s.mu.Unlock()
}

// Capacity returns the owner bound, or 0 when unbounded.
func (s *Store) Capacity() int {
	return s.capacity
}

// Get retrieves the slot for (owner, key).
func (s *Store) Get(owner, key string) (*slot.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots, ok := s.lookup(owner)
	if !ok {
		return nil, false
	}
	sl, ok := slots[key]
	return sl, ok
}

// Set stores the slot under (owner, key).
func (s *Store) Set(owner, key string, sl *slot.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, ok := s.lookup(owner)
	if !ok {
		slots = make(ownerSlots)
		if s.bounded != nil {
			s.bounded.Add(owner, slots)
		} else {
			s.owners[owner] = slots
		}
	}
	slots[key] = sl
	return nil
}

// Delete removes a single slot.
func (s *Store) Delete(owner, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, ok := s.lookup(owner)
	if !ok {
		return nil
	}
	delete(slots, key)
	if len(slots) == 0 {
		s.remove(owner)
	}
	return nil
}

// DeleteOwner removes every slot belonging to owner.
func (s *Store) DeleteOwner(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(owner)
	return nil
}

// Owners returns all owner identifiers with at least one slot.
func (s *Store) Owners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bounded != nil {
		return s.bounded.Keys()
	}
	owners := make([]string, 0, len(s.owners))
	for owner := range s.owners {
		owners = append(owners, owner)
	}
	return owners
}

// Len returns the total number of stored slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	if s.bounded != nil {
		for _, owner := range s.bounded.Keys() {
			if slots, ok := s.bounded.Peek(owner); ok {
				total += len(slots)
			}
		}
		return total
	}
	for _, slots := range s.owners {
		total += len(slots)
	}
	return total
}

// Close drops all slots.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bounded != nil {
		// Purge without firing the eviction callback; Close is not an
		// eviction.
		s.evictCallback = nil
		s.bounded.Purge()
		return nil
	}
	s.owners = make(map[string]ownerSlots)
	return nil
}

// lookup must be called with the lock held.
func (s *Store) lookup(owner string) (ownerSlots, bool) {
	if s.bounded != nil {
		return s.bounded.Get(owner)
	}
	slots, ok := s.owners[owner]
	return slots, ok
}

// remove must be called with the lock held. It does not fire the eviction
// callback: explicit removal is an invalidation, not an eviction.
func (s *Store) remove(owner string) {
	if s.bounded != nil {
		cb := s.evictCallback
		s.evictCallback = nil
		s.bounded.Remove(owner)
		s.evictCallback = cb
		return
	}
	delete(s.owners, owner)
}

// Package slotstore defines the storage abstraction for cache slots. Slots
// are addressed by an owner identifier (one per live instance) and a slot
// key (one per memoized method), so all of an instance's bookkeeping can be
// dropped in one operation when the instance is torn down.
package slotstore

import (
	"github.com/vnykmshr/memo-go/internal/slot"
)

// Store is the interface slot storage backends implement.
type Store interface {
	// Get retrieves the slot for (owner, key).
	// Returns the slot and true if present, nil and false otherwise.
	Get(owner, key string) (*slot.Slot, bool)

	// Set stores the slot under (owner, key), creating the owner entry if
	// needed.
	Set(owner, key string, s *slot.Slot) error

	// Delete removes a single slot. Removing a missing slot is not an error.
	Delete(owner, key string) error

	// DeleteOwner removes every slot belonging to owner.
	DeleteOwner(owner string) error

	// Owners returns the identifiers of all owners with at least one slot.
	Owners() []string

	// Len returns the total number of stored slots.
	Len() int

	// Close releases backend resources.
	Close() error
}

// EvictCallback is invoked with the owner identifier when a bounded store
// drops an owner entry to make room. The engine uses it to keep its
// instance index in sync.
type EvictCallback func(owner string)

// BoundedStore is implemented by stores that cap the number of tracked
// owners.
type BoundedStore interface {
	Store

	// SetEvictCallback registers the callback invoked on owner eviction.
	SetEvictCallback(callback EvictCallback)

	// Capacity returns the maximum number of owners the store tracks.
	Capacity() int
}

package slot

import "fmt"

// Slot records the most recent call made through a memoized method on a
// single instance. Exactly one slot exists per (instance, method) pair;
// the slot store owns the mapping.
type Slot struct {
	// Args holds the previous call's arguments. Populated only under the
	// Reference strategy.
	Args []any

	// ArgsKey is the canonical encoding of the previous call's arguments.
	// Populated only under the Serialized strategy.
	ArgsKey string

	// Result is the previously computed value, opaque to the cache.
	Result any

	// Initialized is false until the first invocation completes successfully.
	Initialized bool
}

// New returns an empty, uninitialized slot.
func New() *Slot {
	return &Slot{}
}

// Reset returns the slot to its uninitialized state and drops the stored
// arguments and result so they become eligible for reclamation.
func (s *Slot) Reset() {
	s.Args = nil
	s.ArgsKey = ""
	s.Result = nil
	s.Initialized = false
}

// StoreReference records a successful call under the Reference strategy.
// The serialized field is cleared so a later strategy mismatch can never
// produce a stale hit.
func (s *Slot) StoreReference(args []any, result any) {
	s.Args = args
	s.ArgsKey = ""
	s.Result = result
	s.Initialized = true
}

// StoreSerialized records a successful call under the Serialized strategy.
func (s *Slot) StoreSerialized(key string, result any) {
	s.Args = nil
	s.ArgsKey = key
	s.Result = result
	s.Initialized = true
}

// String returns a short description of the slot for debugging.
func (s *Slot) String() string {
	if !s.Initialized {
		return "Slot{uninitialized}"
	}
	if s.ArgsKey != "" {
		return fmt.Sprintf("Slot{key=%q}", s.ArgsKey)
	}
	return fmt.Sprintf("Slot{args=%d}", len(s.Args))
}

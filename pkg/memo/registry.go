package memo

import (
	"fmt"
	"reflect"
	"sync"
)

// Descriptor identifies one memoized method on a receiver type. Descriptors
// are created exactly once, at registration time, and are immutable; they
// are owned by the type, never by an instance. The mutable per-instance
// state lives in the engine's slot store.
type Descriptor struct {
	typ          reflect.Type
	method       string
	key          string
	strategy     Strategy
	autoTeardown bool
}

// Type returns the receiver type the descriptor was registered for.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// Method returns the method name.
func (d *Descriptor) Method() string { return d.method }

// Key returns the unique slot identifier for this method.
func (d *Descriptor) Key() string { return d.key }

// Strategy returns the configured equality strategy.
func (d *Descriptor) Strategy() Strategy { return d.strategy }

// AutoTeardown reports whether Engine.Teardown clears this method's slots.
func (d *Descriptor) AutoTeardown() bool { return d.autoTeardown }

// Option configures one registered method.
type Option func(*registerOptions)

type registerOptions struct {
	strategy     Strategy
	autoTeardown bool
}

// WithStrategy selects the equality strategy for this method.
func WithStrategy(s Strategy) Option {
	return func(opts *registerOptions) {
		opts.strategy = s
	}
}

// WithAutoTeardown controls whether Engine.Teardown clears this method's
// slots. It defaults to true; when disabled, slots persist until cleared
// manually, which the caller must manage.
func WithAutoTeardown(auto bool) Option {
	return func(opts *registerOptions) {
		opts.autoTeardown = auto
	}
}

// TeardownFunc is a per-type teardown callback registered by the consumer.
// Engine.Teardown invokes callbacks after cache invalidation, in
// registration order.
type TeardownFunc func(instance any)

type typeEntry struct {
	descriptors []*Descriptor
	byMethod    map[string]*Descriptor
	teardowns   []TeardownFunc

	// autoBound marks that at least one descriptor requested automatic
	// teardown, so Engine.Teardown performs cache invalidation for this
	// type. Set at most once.
	autoBound bool
}

// Registry maps receiver types to their memoized-method descriptors.
// Registration happens at package init and the registry is read-mostly
// afterwards. Visibility is exact-type: embedding a type does not propagate
// its registrations to the embedding type.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*typeEntry
}

// NewRegistry creates an empty registry. Most programs use the package
// default; a private registry is useful for tests and for isolating
// libraries.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]*typeEntry)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by Register and by
// engines that do not configure their own.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterType registers a memoized method for the given receiver type.
// It must be called once per method, at type-definition time, never per
// instance or per call.
func (r *Registry) RegisterType(typ reflect.Type, method string, opts ...Option) (*Descriptor, error) {
	if typ == nil {
		return nil, fmt.Errorf("memo: receiver type is required")
	}
	if method == "" {
		return nil, fmt.Errorf("memo: method name is required")
	}

	options := registerOptions{
		strategy:     StrategyReference,
		autoTeardown: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[typ]
	if !ok {
		entry = &typeEntry{byMethod: make(map[string]*Descriptor)}
		r.entries[typ] = entry
	}
	if _, dup := entry.byMethod[method]; dup {
		return nil, fmt.Errorf("%w: %s.%s", ErrAlreadyRegistered, typ, method)
	}

	d := &Descriptor{
		typ:          typ,
		method:       method,
		key:          typ.String() + "." + method,
		strategy:     options.strategy,
		autoTeardown: options.autoTeardown,
	}
	entry.descriptors = append(entry.descriptors, d)
	entry.byMethod[method] = d
	if d.autoTeardown {
		entry.autoBound = true
	}
	return d, nil
}

// Register registers a memoized method for receiver type T on the default
// registry.
func Register[T any](method string, opts ...Option) (*Descriptor, error) {
	return defaultRegistry.RegisterType(typeFor[T](), method, opts...)
}

// MustRegister is like Register but panics on error. Intended for
// package-level descriptor variables.
func MustRegister[T any](method string, opts ...Option) *Descriptor {
	d, err := Register[T](method, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Descriptors returns the descriptors registered for typ, in declaration
// order. The result is nil for types with no memoized methods.
func (r *Registry) Descriptors(typ reflect.Type) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[typ]
	if !ok {
		return nil
	}
	return entry.descriptors
}

// Lookup returns the descriptor for (typ, method).
func (r *Registry) Lookup(typ reflect.Type, method string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[typ]
	if !ok {
		return nil, false
	}
	d, ok := entry.byMethod[method]
	return d, ok
}

// OnTeardown registers a teardown callback for typ. Callbacks run after the
// engine has invalidated the instance's auto-teardown slots, in the order
// they were registered, so pre-existing teardown behavior is chained rather
// than replaced.
func (r *Registry) OnTeardown(typ reflect.Type, fn TeardownFunc) {
	if fn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[typ]
	if !ok {
		entry = &typeEntry{byMethod: make(map[string]*Descriptor)}
		r.entries[typ] = entry
	}
	entry.teardowns = append(entry.teardowns, fn)
}

// OnTeardown registers a teardown callback for type T on the default
// registry.
func OnTeardown[T any](fn TeardownFunc) {
	defaultRegistry.OnTeardown(typeFor[T](), fn)
}

func (r *Registry) teardownFuncs(typ reflect.Type) []TeardownFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[typ]
	if !ok {
		return nil
	}
	return entry.teardowns
}

func (r *Registry) autoBound(typ reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[typ]
	return ok && entry.autoBound
}

func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

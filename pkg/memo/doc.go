// Package memo provides a per-instance, per-method result cache. It
// intercepts calls to a registered method, compares the call's arguments
// against the most recent call on the same instance, and either returns the
// stored result or invokes the underlying computation and stores its
// result. Only the single most recent call is remembered per
// (instance, method).
//
// # Overview
//
// memo targets code that repeatedly re-invokes the same method with
// unchanged arguments, such as a view layer re-reading a derived value. It
// trades a small per-call comparison for skipping recomputation. It is not
// a general-purpose cache: there is no TTL, no per-slot history, and no
// sharing of results between instances.
//
// Methods are declared memoized once, at package init, producing an
// immutable Descriptor shared by all instances of the receiver type:
//
//	type Report struct {
//	    engine *memo.Engine
//	    rows   []Row
//	}
//
//	var totalsDesc = memo.MustRegister[*Report]("Totals",
//	    memo.WithStrategy(memo.StrategySerialized))
//
//	func (r *Report) Totals(year int) (Summary, error) {
//	    return memo.Call1E(r.engine, r, totalsDesc, year, r.computeTotals)
//	}
//
// # Equality strategies
//
// StrategyReference (the default) compares arguments pairwise by identity
// or primitive equality, with no deep traversal: two structurally equal but
// distinct pointers are different arguments. StrategySerialized compares a
// canonical string encoding of the argument list, so equal-by-value
// arguments hit; arguments that cannot be encoded (functions, channels,
// cycles) surface ErrNotEncodable instead of silently missing.
//
// # Lifecycle
//
// Slots are created lazily on first call and live until invalidated.
// Invalidate manually with Engine.Clear, or participate in the teardown
// protocol: the host calls Engine.Teardown(instance) exactly once when the
// instance is being disposed, which clears the slots of every method
// registered with automatic teardown (the default) and then runs the
// teardown callbacks registered for the type via Registry.OnTeardown. If
// the host never calls Teardown, slots persist; Config.WithMaxInstances
// bounds that growth with LRU eviction of whole instances.
//
// # Concurrency
//
// The engine assumes cooperative execution per slot: no two calls to the
// same (instance, method) run concurrently, and no call deduplication is
// performed. Underlying errors propagate unchanged and are never cached.
package memo

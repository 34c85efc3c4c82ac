package memo

// Typed call helpers for common arities. They avoid the reflection cost of
// Bind and read naturally inside a method body:
//
//	func (r *Report) Totals(year int) (Summary, error) {
//	    return memo.Call1E(r.engine, r, totalsDesc, year, r.computeTotals)
//	}
//
// The helpers without an E suffix wrap computations that cannot fail; engine
// errors (encoding failures, descriptor misuse) panic there, matching Bind.

// Call0 memoizes a no-argument computation.
func Call0[R any](e *Engine, instance any, d *Descriptor, fn func() R) R {
	value, err := e.Do(instance, d, nil, func() (any, error) {
		return fn(), nil
	})
	if err != nil {
		panic("memo: " + d.Key() + ": " + err.Error())
	}
	return asResult[R](value)
}

// Call0E memoizes a no-argument computation that can fail.
func Call0E[R any](e *Engine, instance any, d *Descriptor, fn func() (R, error)) (R, error) {
	value, err := e.Do(instance, d, nil, func() (any, error) {
		r, err := fn()
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return asResult[R](value), nil
}

// Call1 memoizes a one-argument computation.
func Call1[A, R any](e *Engine, instance any, d *Descriptor, a A, fn func(A) R) R {
	value, err := e.Do(instance, d, []any{a}, func() (any, error) {
		return fn(a), nil
	})
	if err != nil {
		panic("memo: " + d.Key() + ": " + err.Error())
	}
	return asResult[R](value)
}

// Call1E memoizes a one-argument computation that can fail.
func Call1E[A, R any](e *Engine, instance any, d *Descriptor, a A, fn func(A) (R, error)) (R, error) {
	value, err := e.Do(instance, d, []any{a}, func() (any, error) {
		r, err := fn(a)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return asResult[R](value), nil
}

// Call2 memoizes a two-argument computation.
func Call2[A, B, R any](e *Engine, instance any, d *Descriptor, a A, b B, fn func(A, B) R) R {
	value, err := e.Do(instance, d, []any{a, b}, func() (any, error) {
		return fn(a, b), nil
	})
	if err != nil {
		panic("memo: " + d.Key() + ": " + err.Error())
	}
	return asResult[R](value)
}

// Call2E memoizes a two-argument computation that can fail.
func Call2E[A, B, R any](e *Engine, instance any, d *Descriptor, a A, b B, fn func(A, B) (R, error)) (R, error) {
	value, err := e.Do(instance, d, []any{a, b}, func() (any, error) {
		r, err := fn(a, b)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return asResult[R](value), nil
}

func asResult[R any](value any) R {
	if value == nil {
		var zero R
		return zero
	}
	return value.(R)
}

package memo

import (
	"fmt"
	"reflect"
)

// Bind turns a function or method value into its memoized form for one
// instance, using reflection to preserve the call signature. The returned
// function consults the engine on each call: a hit returns the stored
// result, a miss invokes fn and stores its result. When fn returns an error
// as its last value, errors propagate unchanged and are never cached.
//
// For functions with no error return, an engine failure (for example a
// Serialized-strategy argument that cannot be encoded) has no channel back
// to the caller and panics. Use the error-returning form, or ValidateBindable
// with arguments known to encode, when that is unacceptable.
func Bind[T any](e *Engine, instance any, d *Descriptor, fn T) T {
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		panic("memo.Bind: fn must be a function")
	}

	wrapper := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		return executeBound(e, instance, d, fnValue, fnType, args)
	})

	return wrapper.Interface().(T)
}

func executeBound(e *Engine, instance any, d *Descriptor, fnValue reflect.Value, fnType reflect.Type, args []reflect.Value) []reflect.Value {
	callArgs := make([]any, len(args))
	for i, arg := range args {
		callArgs[i] = arg.Interface()
	}

	withError := hasErrorReturn(fnType)

	compute := func() (any, error) {
		results := fnValue.Call(args)
		return collectResults(results, withError)
	}

	value, err := e.Do(instance, d, callArgs, compute)
	if err != nil {
		if !withError {
			panic(fmt.Sprintf("memo: %s: %v", d.Key(), err))
		}
		return errorReturn(fnType, err)
	}

	return expandResults(value, fnType, withError)
}

// hasErrorReturn checks whether the function returns error as its last
// value.
func hasErrorReturn(fnType reflect.Type) bool {
	return fnType.NumOut() >= 2 &&
		fnType.Out(fnType.NumOut()-1).Implements(reflect.TypeOf((*error)(nil)).Elem())
}

// collectResults flattens a call's results into a single cacheable value.
func collectResults(results []reflect.Value, withError bool) (any, error) {
	if withError {
		errResult := results[len(results)-1]
		if !errResult.IsNil() {
			return nil, errResult.Interface().(error)
		}
		results = results[:len(results)-1]
	}

	if len(results) == 1 {
		return results[0].Interface(), nil
	}
	values := make([]any, len(results))
	for i, result := range results {
		values[i] = result.Interface()
	}
	return values, nil
}

// expandResults converts a cached or computed value back to the function's
// return shape.
func expandResults(value any, fnType reflect.Type, withError bool) []reflect.Value {
	numOut := fnType.NumOut()
	results := make([]reflect.Value, numOut)

	numValues := numOut
	if withError {
		results[numOut-1] = reflect.Zero(fnType.Out(numOut - 1))
		numValues--
	}

	if numValues == 1 {
		results[0] = resultValue(value, fnType.Out(0))
		return results
	}

	values := value.([]any)
	for i := 0; i < numValues; i++ {
		results[i] = resultValue(values[i], fnType.Out(i))
	}
	return results
}

// resultValue materializes a stored value as the declared return type,
// keeping typed nils well-formed.
func resultValue(value any, out reflect.Type) reflect.Value {
	if value == nil {
		return reflect.Zero(out)
	}
	return reflect.ValueOf(value).Convert(out)
}

// errorReturn creates a return value slice carrying err, with zero values
// for the remaining returns.
func errorReturn(fnType reflect.Type, err error) []reflect.Value {
	numOut := fnType.NumOut()
	results := make([]reflect.Value, numOut)

	for i := 0; i < numOut-1; i++ {
		results[i] = reflect.Zero(fnType.Out(i))
	}
	results[numOut-1] = reflect.ValueOf(err)

	return results
}

// ValidateBindable checks whether a function can be passed to Bind. It is
// useful for surfacing configuration mistakes at startup rather than at
// call time.
func ValidateBindable(fn any) error {
	fnType := reflect.TypeOf(fn)

	if fnType == nil || fnType.Kind() != reflect.Func {
		return fmt.Errorf("memo: not a function: %T", fn)
	}

	if fnType.IsVariadic() {
		return fmt.Errorf("memo: variadic functions are not supported")
	}

	numOut := fnType.NumOut()
	if numOut == 0 {
		return fmt.Errorf("memo: functions with no return values cannot be cached")
	}

	if numOut > 1 {
		lastOut := fnType.Out(numOut - 1)
		if !lastOut.Implements(reflect.TypeOf((*error)(nil)).Elem()) {
			return fmt.Errorf("memo: multi-return functions must have error as the last return value")
		}
	}

	return nil
}

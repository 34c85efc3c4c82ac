package memo

import (
	"reflect"
	"sync/atomic"
	"testing"
)

func TestTeardownClearsSlots(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Load")

	_, _ = engine.Do(svc, d, []any{1}, func() (any, error) { return "v", nil })
	if engine.Len() != 1 {
		t.Fatalf("Expected 1 slot, got %d", engine.Len())
	}

	engine.Teardown(svc)
	if engine.Len() != 0 {
		t.Fatalf("Expected no slots after teardown, got %d", engine.Len())
	}
	if engine.Stats().Teardowns() != 1 {
		t.Fatalf("Expected 1 teardown, got %d", engine.Stats().Teardowns())
	}
	if engine.Stats().Owners() != 0 {
		t.Fatalf("Expected no owners after teardown, got %d", engine.Stats().Owners())
	}
}

func TestTeardownRunsCallbacksAfterInvalidation(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Load")

	var order []string
	registry.OnTeardown(reflect.TypeOf(svc), func(instance any) {
		if instance != svc {
			t.Errorf("Expected the torn-down instance, got %v", instance)
		}
		// Slots are already gone when callbacks run.
		if engine.Len() != 0 {
			t.Errorf("Expected slots cleared before callbacks, got %d", engine.Len())
		}
		order = append(order, "first")
	})
	registry.OnTeardown(reflect.TypeOf(svc), func(any) {
		order = append(order, "second")
	})

	_, _ = engine.Do(svc, d, []any{1}, func() (any, error) { return "v", nil })
	engine.Teardown(svc)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("Expected callbacks in registration order, got %v", order)
	}
}

func TestTeardownRespectsAutoTeardownFlag(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	auto := registerMethod(t, registry, svc, "Load")
	pinned := registerMethod(t, registry, svc, "Config", WithAutoTeardown(false))

	_, _ = engine.Do(svc, auto, []any{1}, func() (any, error) { return "a", nil })
	_, _ = engine.Do(svc, pinned, []any{1}, func() (any, error) { return "b", nil })

	engine.Teardown(svc)
	if engine.Len() != 1 {
		t.Fatalf("Expected pinned slot to survive, got %d slots", engine.Len())
	}

	var calls int64
	result, _ := engine.Do(svc, pinned, []any{1}, func() (any, error) {
		atomic.AddInt64(&calls, 1)
		return "b2", nil
	})
	if result != "b" || atomic.LoadInt64(&calls) != 0 {
		t.Fatal("Expected pinned slot to still hit after teardown")
	}
}

func TestTeardownTwiceIsHarmless(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Load")

	_, _ = engine.Do(svc, d, []any{1}, func() (any, error) { return "v", nil })
	engine.Teardown(svc)
	engine.Teardown(svc)

	// The second call finds no owner, so only one teardown is counted.
	if engine.Stats().Teardowns() != 1 {
		t.Fatalf("Expected 1 teardown, got %d", engine.Stats().Teardowns())
	}
}

func TestTeardownUnregisteredTypeNoOp(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.Teardown("nothing registered")
	engine.Teardown(nil)

	if engine.Stats().Teardowns() != 0 {
		t.Fatalf("Expected no teardowns, got %d", engine.Stats().Teardowns())
	}
}

func TestTeardownCallbacksWithoutSlots(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	registerMethod(t, registry, svc, "Load")

	var calls int64
	registry.OnTeardown(reflect.TypeOf(svc), func(any) {
		atomic.AddInt64(&calls, 1)
	})

	// The instance never called a memoized method; the callback still runs.
	engine.Teardown(svc)
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatalf("Expected callback to run, got %d calls", atomic.LoadInt64(&calls))
	}
}

func TestTeardownInvokesHooks(t *testing.T) {
	var torn int64
	hooks := &Hooks{}
	hooks.AddOnTeardown(func(owner string) {
		if owner == "" {
			t.Error("Expected a non-empty owner identifier")
		}
		atomic.AddInt64(&torn, 1)
	})

	registry := NewRegistry()
	engine, err := New(NewDefaultConfig().WithRegistry(registry).WithHooks(hooks))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	svc := &userService{}
	d := registerMethod(t, registry, svc, "Load")
	_, _ = engine.Do(svc, d, []any{1}, func() (any, error) { return "v", nil })

	engine.Teardown(svc)
	if atomic.LoadInt64(&torn) != 1 {
		t.Fatalf("Expected 1 teardown hook call, got %d", atomic.LoadInt64(&torn))
	}
}

func TestReleaseDropsEverything(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	pinned := registerMethod(t, registry, svc, "Config", WithAutoTeardown(false))

	var callbacks int64
	registry.OnTeardown(reflect.TypeOf(svc), func(any) {
		atomic.AddInt64(&callbacks, 1)
	})

	_, _ = engine.Do(svc, pinned, []any{1}, func() (any, error) { return "b", nil })

	// Release drops even slots that opted out of automatic teardown, and
	// does not run teardown callbacks.
	engine.Release(svc)
	if engine.Len() != 0 {
		t.Fatalf("Expected no slots after release, got %d", engine.Len())
	}
	if atomic.LoadInt64(&callbacks) != 0 {
		t.Fatal("Expected no teardown callbacks on release")
	}

	engine.Release(svc)
	engine.Release(nil)
}

package memo

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestCall0(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Snapshot")

	var calls int64
	for i := 0; i < 3; i++ {
		got := Call0(engine, svc, d, func() int {
			atomic.AddInt64(&calls, 1)
			return 7
		})
		if got != 7 {
			t.Fatalf("Expected 7, got %d", got)
		}
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatalf("Expected 1 computation, got %d", atomic.LoadInt64(&calls))
	}
}

func TestCall1(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Double")

	var calls int64
	double := func(n int) int {
		atomic.AddInt64(&calls, 1)
		return n * 2
	}

	if got := Call1(engine, svc, d, 21, double); got != 42 {
		t.Fatalf("Expected 42, got %d", got)
	}
	if got := Call1(engine, svc, d, 21, double); got != 42 {
		t.Fatalf("Expected cached 42, got %d", got)
	}
	if got := Call1(engine, svc, d, 5, double); got != 10 {
		t.Fatalf("Expected 10, got %d", got)
	}
	if atomic.LoadInt64(&calls) != 2 {
		t.Fatalf("Expected 2 computations, got %d", atomic.LoadInt64(&calls))
	}
}

func TestCall2(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Join")

	var calls int64
	join := func(a, b string) string {
		atomic.AddInt64(&calls, 1)
		return a + ":" + b
	}

	if got := Call2(engine, svc, d, "x", "y", join); got != "x:y" {
		t.Fatalf("Expected x:y, got %s", got)
	}
	if got := Call2(engine, svc, d, "x", "y", join); got != "x:y" {
		t.Fatalf("Expected cached x:y, got %s", got)
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatalf("Expected 1 computation, got %d", atomic.LoadInt64(&calls))
	}
}

func TestCall1EPropagatesErrors(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Fetch")

	boom := errors.New("boom")
	var calls int64
	fetch := func(id int) (string, error) {
		atomic.AddInt64(&calls, 1)
		if id < 0 {
			return "", boom
		}
		return "row", nil
	}

	if _, err := Call1E(engine, svc, d, -1, fetch); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if _, err := Call1E(engine, svc, d, -1, fetch); !errors.Is(err, boom) {
		t.Fatalf("Expected boom again, got %v", err)
	}
	if atomic.LoadInt64(&calls) != 2 {
		t.Fatalf("Expected errors to skip the cache, got %d calls", atomic.LoadInt64(&calls))
	}

	row, err := Call1E(engine, svc, d, 7, fetch)
	if err != nil || row != "row" {
		t.Fatalf("Expected row, got %q (%v)", row, err)
	}
	if _, _ = Call1E(engine, svc, d, 7, fetch); atomic.LoadInt64(&calls) != 3 {
		t.Fatalf("Expected success cached, got %d calls", atomic.LoadInt64(&calls))
	}
}

func TestCall0EEngineError(t *testing.T) {
	engine, registry := newTestEngine(t)
	d := registerMethod(t, registry, &userService{}, "Load")

	// Wrong instance type surfaces as an engine error, not a panic.
	_, err := Call0E(engine, "wrong type", d, func() (int, error) { return 1, nil })
	if err == nil {
		t.Fatal("Expected engine error for mismatched instance")
	}
}

func TestCall1PanicsOnEngineError(t *testing.T) {
	engine, registry := newTestEngine(t)
	svc := &userService{}
	d := registerMethod(t, registry, svc, "Load", WithStrategy(StrategySerialized))

	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic for unencodable argument")
		}
	}()
	Call1(engine, svc, d, func() {}, func(func()) int { return 0 })
}

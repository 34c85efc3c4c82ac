package memo

import (
	"strings"
	"sync"
	"testing"
)

// capturingLogger records messages for assertions.
type capturingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (cl *capturingLogger) record(msg string, fields []Field) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	parts := []string{msg}
	for _, f := range fields {
		parts = append(parts, f.Key)
	}
	cl.messages = append(cl.messages, strings.Join(parts, " "))
}

func (cl *capturingLogger) Debug(msg string, fields ...Field) { cl.record(msg, fields) }
func (cl *capturingLogger) Info(msg string, fields ...Field)  { cl.record(msg, fields) }
func (cl *capturingLogger) Warn(msg string, fields ...Field)  { cl.record(msg, fields) }
func (cl *capturingLogger) Error(msg string, fields ...Field) { cl.record(msg, fields) }
func (cl *capturingLogger) With(...Field) Logger              { return cl }

func (cl *capturingLogger) contains(substr string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for _, msg := range cl.messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestLoggingHooksRecordEvents(t *testing.T) {
	logger := &capturingLogger{}
	registry := NewRegistry()

	config := NewDefaultConfig().
		WithRegistry(registry).
		WithLogging(NewDefaultLoggingConfig(logger))
	engine, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	svc := &userService{}
	d := registerMethod(t, registry, svc, "Load")

	_, _ = engine.Do(svc, d, []any{1}, func() (any, error) { return "v", nil })
	_, _ = engine.Do(svc, d, []any{1}, func() (any, error) { return "v", nil })
	engine.Clear(svc, "Load")
	_, _ = engine.Do(svc, d, []any{1}, func() (any, error) { return "v", nil })
	engine.Teardown(svc)

	for _, want := range []string{"cache miss", "cache hit", "slot invalidated", "instance torn down"} {
		if !logger.contains(want) {
			t.Fatalf("Expected %q to be logged, got %v", want, logger.messages)
		}
	}
}

func TestCreateLoggingHooksSelective(t *testing.T) {
	logger := &capturingLogger{}
	config := NewDefaultLoggingConfig(logger)
	config.LogHits = false
	config.LogMisses = false

	hooks := CreateLoggingHooks(config)
	if len(hooks.OnHit) != 0 || len(hooks.OnMiss) != 0 {
		t.Fatal("Expected disabled events to install no hooks")
	}
	if len(hooks.OnInvalidate) != 1 || len(hooks.OnTeardown) != 1 {
		t.Fatal("Expected enabled events to install hooks")
	}
}

func TestCreateLoggingHooksNilConfig(t *testing.T) {
	hooks := CreateLoggingHooks(nil)
	if hooks == nil {
		t.Fatal("Expected empty hooks, got nil")
	}
	if len(hooks.OnHit) != 0 {
		t.Fatal("Expected no hooks for nil config")
	}
}

func TestTruncateValue(t *testing.T) {
	if got := truncateValue("short", 100); got != "short" {
		t.Fatalf("Expected untouched value, got %q", got)
	}
	got := truncateValue("abcdefghij", 8)
	if got != "abcde..." {
		t.Fatalf("Expected truncated value, got %q", got)
	}
	if got := truncateValue("abcdefghij", 3); got != "abcdefghij" {
		t.Fatalf("Expected tiny limits to be ignored, got %q", got)
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()
	logger.Debug("msg", F("k", "v"))
	logger.Info("msg")
	logger.Warn("msg")
	logger.Error("msg")
	if logger.With(F("k", "v")) != logger {
		t.Fatal("Expected With to return the same no-op logger")
	}
}

func TestZapLoggerAdapter(t *testing.T) {
	logger := NewDefaultLogger()
	logger.Debug("engine started", F("owners", 0))
	derived := logger.With(F("engine", "test"))
	if derived == nil {
		t.Fatal("Expected a derived logger")
	}
	derived.Info("derived message")
}

package memo

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/memo-go/internal/equality"
	"github.com/vnykmshr/memo-go/internal/slot"
	"github.com/vnykmshr/memo-go/internal/slotstore"
	"github.com/vnykmshr/memo-go/internal/slotstore/memory"
	redisstore "github.com/vnykmshr/memo-go/internal/slotstore/redis"
	"github.com/vnykmshr/memo-go/pkg/metrics"
)

// Engine is the call-time entry point of the cache: it resolves slots,
// consults the configured equality strategy, and manages slot lifecycle for
// live instances.
//
// The engine assumes cooperative execution per slot: no two calls to the
// same (instance, method) run concurrently. Internal locking only protects
// the engine's own bookkeeping.
type Engine struct {
	config   *Config
	registry *Registry
	store    slotstore.Store
	stats    *Stats
	hooks    *Hooks
	logger   Logger

	// owner index: instance identity -> owner id and back
	mu        sync.RWMutex
	owners    map[any]string
	ownersRev map[string]any

	remote bool

	// Metrics
	metricsExporter metrics.Exporter
	metricsLabels   metrics.Labels
	metricsStop     chan struct{}
	metricsWg       sync.WaitGroup
}

// New creates a new Engine with the given configuration.
func New(config *Config) (*Engine, error) {
	if config == nil {
		config = NewDefaultConfig()
	}

	registry := config.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	logger := config.Logger
	if logger == nil {
		logger = NewNoOpLogger()
	}

	e := &Engine{
		config:    config,
		registry:  registry,
		stats:     &Stats{},
		hooks:     config.Hooks,
		logger:    logger,
		owners:    make(map[any]string),
		ownersRev: make(map[string]any),
	}

	switch config.StoreType {
	case StoreTypeMemory:
		store, err := e.createMemoryStore(config)
		if err != nil {
			return nil, err
		}
		e.store = store
	case StoreTypeRedis:
		store, err := createRedisStore(config)
		if err != nil {
			return nil, err
		}
		e.store = store
		e.remote = true
	default:
		return nil, fmt.Errorf("memo: unsupported store type: %v", config.StoreType)
	}

	if err := e.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("memo: failed to initialize metrics: %w", err)
	}

	return e, nil
}

// createMemoryStore creates the in-process slot store, bounded when
// MaxInstances is set.
func (e *Engine) createMemoryStore(config *Config) (slotstore.Store, error) {
	if config.MaxInstances <= 0 {
		return memory.New(), nil
	}

	store, err := memory.NewBounded(config.MaxInstances)
	if err != nil {
		return nil, err
	}
	store.SetEvictCallback(func(owner string) {
		e.dropOwner(owner)
		e.stats.incEvictions()
		if e.hooks != nil {
			e.hooks.invokeOnEvict(owner)
		}
		e.logger.Debug("owner evicted", F("owner", owner))
	})
	return store, nil
}

// createRedisStore creates a Redis-backed slot store.
func createRedisStore(config *Config) (slotstore.Store, error) {
	if config.Redis == nil {
		return nil, fmt.Errorf("memo: redis configuration is required when using StoreTypeRedis")
	}

	storeConfig := &redisstore.Config{
		KeyPrefix: config.Redis.KeyPrefix,
		Context:   context.Background(),
	}

	if config.Redis.Client != nil {
		storeConfig.Client = config.Redis.Client
	} else {
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("memo: failed to connect to redis: %w", err)
		}
		storeConfig.Client = client
	}

	return redisstore.New(storeConfig)
}

// Do is the interceptor: it resolves the slot for (instance, d), asks the
// descriptor's strategy whether the arguments match the previous call, and
// either returns the stored result or invokes compute and stores its
// result. Errors from compute propagate unchanged and leave the slot in its
// prior state.
//
// If compute reenters the same (instance, d) before returning, the inner
// call observes the not-yet-updated slot and recomputes; the engine does not
// detect the recursion.
func (e *Engine) Do(instance any, d *Descriptor, args []any, compute func() (any, error)) (any, error) {
	start := time.Now()
	defer func() {
		e.recordOperation(metrics.OperationCall, time.Since(start))
	}()

	if instance == nil {
		return nil, fmt.Errorf("memo: instance is required")
	}
	if d == nil {
		return nil, fmt.Errorf("memo: descriptor is required")
	}
	if reflect.TypeOf(instance) != d.typ {
		return nil, fmt.Errorf("%w: have %T, registered for %s", ErrDescriptorMismatch, instance, d.typ)
	}
	if e.remote && d.strategy == StrategyReference {
		return nil, fmt.Errorf("%w: %s", ErrRemoteReference, d.key)
	}

	// Encode before the slot lookup so an encoding failure surfaces as an
	// error, never as a hit or a miss.
	var argsKey string
	if d.strategy == StrategySerialized {
		key, err := equality.EncodeKey(args)
		if err != nil {
			return nil, fmt.Errorf("memo: %s: %w", d.key, err)
		}
		argsKey = key
	}

	owner := e.ownerFor(instance)
	current, ok := e.store.Get(owner, d.key)
	if ok && current.Initialized && e.matches(d, current, args, argsKey) {
		e.hit(d, owner, current.Result)
		return current.Result, nil
	}

	e.miss(d, owner)
	result, err := compute()
	if err != nil {
		return nil, err
	}

	next := current
	if next == nil {
		next = slot.New()
	}
	switch d.strategy {
	case StrategySerialized:
		next.StoreSerialized(argsKey, result)
	default:
		// Copy the argument list so later mutation of the caller's slice
		// cannot corrupt the comparison baseline. The copy is non-nil even
		// for zero arguments; a nil list means no prior call.
		copied := make([]any, len(args))
		copy(copied, args)
		next.StoreReference(copied, result)
	}
	if err := e.store.Set(owner, d.key, next); err != nil {
		// The result is still valid; only the cache write failed.
		e.logger.Warn("slot write failed", F("key", d.key), F("error", err))
	}
	e.syncOwnerCount()

	return result, nil
}

func (e *Engine) matches(d *Descriptor, s *slot.Slot, args []any, argsKey string) bool {
	switch d.strategy {
	case StrategySerialized:
		return s.ArgsKey == argsKey
	default:
		return equality.Reference(s.Args, args)
	}
}

// Clear manually invalidates cached results for instance. With no method
// names it invalidates every slot registered for the instance's type; with
// names it invalidates only those methods' slots. Clearing an instance or
// method with no registry entry or no slot is a no-op.
func (e *Engine) Clear(instance any, methods ...string) {
	start := time.Now()
	defer func() {
		e.recordOperation(metrics.OperationClear, time.Since(start))
	}()

	if instance == nil {
		return
	}
	typ := reflect.TypeOf(instance)
	descriptors := e.registry.Descriptors(typ)
	if len(descriptors) == 0 {
		return
	}

	owner, ok := e.lookupOwner(instance)
	if !ok {
		return
	}

	if len(methods) == 0 {
		for _, d := range descriptors {
			e.invalidate(owner, d)
		}
		e.releaseOwner(owner)
		return
	}

	for _, method := range methods {
		d, ok := e.registry.Lookup(typ, method)
		if !ok {
			continue
		}
		e.invalidate(owner, d)
	}
	e.syncOwnerCount()
}

// Teardown is the host's teardown notification for instance: the host calls
// it exactly once when the instance is being disposed. The engine first
// invalidates the slots of every descriptor registered with automatic
// teardown, then runs the teardown callbacks registered for the type, in
// order. Calling Teardown for a type with no registrations is a no-op.
func (e *Engine) Teardown(instance any) {
	start := time.Now()
	defer func() {
		e.recordOperation(metrics.OperationTeardown, time.Since(start))
	}()

	if instance == nil {
		return
	}
	typ := reflect.TypeOf(instance)

	if e.registry.autoBound(typ) {
		if owner, ok := e.lookupOwner(instance); ok {
			descriptors := e.registry.Descriptors(typ)
			allAuto := true
			for _, d := range descriptors {
				if d.autoTeardown {
					_ = e.store.Delete(owner, d.key)
				} else {
					allAuto = false
				}
			}
			if allAuto {
				e.releaseOwner(owner)
			} else {
				e.syncOwnerCount()
			}
			e.stats.incTeardowns()
			if e.hooks != nil {
				e.hooks.invokeOnTeardown(owner)
			}
			e.logger.Debug("instance torn down", F("owner", owner), F("type", typ.String()))
		}
	}

	for _, fn := range e.registry.teardownFuncs(typ) {
		fn(instance)
	}
}

// Release forgets instance entirely, dropping all of its slots regardless
// of their teardown configuration. Unlike Teardown it does not run the
// type's teardown callbacks.
func (e *Engine) Release(instance any) {
	if instance == nil {
		return
	}
	owner, ok := e.lookupOwner(instance)
	if !ok {
		return
	}
	e.releaseOwner(owner)
}

// Stats returns the engine's statistics.
func (e *Engine) Stats() *Stats {
	e.syncOwnerCount()
	return e.stats
}

// Len returns the total number of live slots.
func (e *Engine) Len() int {
	return e.store.Len()
}

// Owners returns the owner identifiers of all instances with live slots.
func (e *Engine) Owners() []string {
	return e.store.Owners()
}

// Close shuts down the engine, its metrics reporter and its slot store.
func (e *Engine) Close() error {
	if e.metricsStop != nil {
		close(e.metricsStop)
		e.metricsWg.Wait()
	}
	if e.metricsExporter != nil {
		if err := e.metricsExporter.Close(); err != nil {
			e.logger.Warn("metrics exporter close failed", F("error", err))
		}
	}
	return e.store.Close()
}

// ownerFor returns the owner identifier for instance, assigning one on
// first use.
func (e *Engine) ownerFor(instance any) string {
	e.mu.RLock()
	owner, ok := e.owners[instance]
	e.mu.RUnlock()
	if ok {
		return owner
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if owner, ok := e.owners[instance]; ok {
		return owner
	}
	owner = uuid.NewString()
	e.owners[instance] = owner
	e.ownersRev[owner] = instance
	return owner
}

func (e *Engine) lookupOwner(instance any) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	owner, ok := e.owners[instance]
	return owner, ok
}

// releaseOwner drops the owner's slots and its index entries so no stale
// instance reference persists.
func (e *Engine) releaseOwner(owner string) {
	_ = e.store.DeleteOwner(owner)
	e.dropOwner(owner)
	e.syncOwnerCount()
}

func (e *Engine) dropOwner(owner string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if instance, ok := e.ownersRev[owner]; ok {
		delete(e.owners, instance)
		delete(e.ownersRev, owner)
	}
}

func (e *Engine) invalidate(owner string, d *Descriptor) {
	if _, ok := e.store.Get(owner, d.key); !ok {
		return
	}
	if err := e.store.Delete(owner, d.key); err != nil {
		e.logger.Warn("slot delete failed", F("key", d.key), F("error", err))
		return
	}
	e.stats.incInvalidations()
	if e.hooks != nil {
		e.hooks.invokeOnInvalidate(owner + "/" + d.key)
	}
}

func (e *Engine) hit(d *Descriptor, owner string, value any) {
	e.stats.incHits()
	if e.hooks != nil {
		e.hooks.invokeOnHit(owner+"/"+d.key, value)
	}
}

func (e *Engine) miss(d *Descriptor, owner string) {
	e.stats.incMisses()
	if e.hooks != nil {
		e.hooks.invokeOnMiss(owner + "/" + d.key)
	}
}

func (e *Engine) syncOwnerCount() {
	e.mu.RLock()
	count := int64(len(e.owners))
	e.mu.RUnlock()
	e.stats.setOwners(count)
}

// initializeMetrics sets up metrics collection if enabled.
func (e *Engine) initializeMetrics() error {
	if e.config.Metrics == nil || !e.config.Metrics.Enabled || e.config.Metrics.Exporter == nil {
		e.metricsExporter = metrics.NewNoOpExporter()
		return nil
	}

	e.metricsExporter = e.config.Metrics.Exporter

	e.metricsLabels = make(metrics.Labels)
	if e.config.Metrics.EngineName != "" {
		e.metricsLabels["engine"] = e.config.Metrics.EngineName
	} else {
		e.metricsLabels["engine"] = "default"
	}
	for k, v := range e.config.Metrics.Labels {
		e.metricsLabels[k] = v
	}

	if e.config.Metrics.ReportingInterval > 0 {
		e.metricsStop = make(chan struct{})
		e.metricsWg.Add(1)
		go e.metricsReporter()
	}

	return nil
}

// metricsReporter periodically exports engine statistics.
func (e *Engine) metricsReporter() {
	defer e.metricsWg.Done()

	ticker := time.NewTicker(e.config.Metrics.ReportingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.exportCurrentStats()
		case <-e.metricsStop:
			// Final stats export before shutting down.
			e.exportCurrentStats()
			return
		}
	}
}

func (e *Engine) exportCurrentStats() {
	if e.metricsExporter != nil {
		if err := e.metricsExporter.ExportStats(e.Stats(), e.metricsLabels); err != nil {
			e.logger.Warn("stats export failed", F("error", err))
		}
	}
}

func (e *Engine) recordOperation(operation metrics.Operation, duration time.Duration) {
	if e.metricsExporter != nil {
		_ = e.metricsExporter.RecordOperation(operation, duration, e.metricsLabels) //nolint:errcheck // reported via stats export
	}
}

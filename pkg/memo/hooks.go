package memo

// Hooks defines event callbacks for engine operations. Hooks run
// synchronously inside the call path and must not call back into the
// engine.
type Hooks struct {
	// OnHit is called when a call is answered from a slot.
	OnHit []OnHitHook

	// OnMiss is called when a call invokes the underlying method.
	OnMiss []OnMissHook

	// OnInvalidate is called when a slot is manually invalidated.
	OnInvalidate []OnInvalidateHook

	// OnTeardown is called when an instance's slots are cleared through
	// Teardown.
	OnTeardown []OnTeardownHook

	// OnEvict is called when a bounded store drops an owner entry to make
	// room.
	OnEvict []OnEvictHook
}

// Hook function type definitions
type (
	// OnHitHook receives the slot key and the cached value.
	OnHitHook func(key string, value any)

	// OnMissHook receives the slot key.
	OnMissHook func(key string)

	// OnInvalidateHook receives the slot key.
	OnInvalidateHook func(key string)

	// OnTeardownHook receives the owner identifier of the instance.
	OnTeardownHook func(owner string)

	// OnEvictHook receives the owner identifier of the evicted instance.
	OnEvictHook func(owner string)
)

// AddOnHit adds an OnHit hook.
func (h *Hooks) AddOnHit(hook OnHitHook) {
	h.OnHit = append(h.OnHit, hook)
}

// AddOnMiss adds an OnMiss hook.
func (h *Hooks) AddOnMiss(hook OnMissHook) {
	h.OnMiss = append(h.OnMiss, hook)
}

// AddOnInvalidate adds an OnInvalidate hook.
func (h *Hooks) AddOnInvalidate(hook OnInvalidateHook) {
	h.OnInvalidate = append(h.OnInvalidate, hook)
}

// AddOnTeardown adds an OnTeardown hook.
func (h *Hooks) AddOnTeardown(hook OnTeardownHook) {
	h.OnTeardown = append(h.OnTeardown, hook)
}

// AddOnEvict adds an OnEvict hook.
func (h *Hooks) AddOnEvict(hook OnEvictHook) {
	h.OnEvict = append(h.OnEvict, hook)
}

func (h *Hooks) invokeOnHit(key string, value any) {
	for _, hook := range h.OnHit {
		if hook != nil {
			hook(key, value)
		}
	}
}

func (h *Hooks) invokeOnMiss(key string) {
	for _, hook := range h.OnMiss {
		if hook != nil {
			hook(key)
		}
	}
}

func (h *Hooks) invokeOnInvalidate(key string) {
	for _, hook := range h.OnInvalidate {
		if hook != nil {
			hook(key)
		}
	}
}

func (h *Hooks) invokeOnTeardown(owner string) {
	for _, hook := range h.OnTeardown {
		if hook != nil {
			hook(owner)
		}
	}
}

func (h *Hooks) invokeOnEvict(owner string) {
	for _, hook := range h.OnEvict {
		if hook != nil {
			hook(owner)
		}
	}
}

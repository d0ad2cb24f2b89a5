package workflow

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Hook reacts to a committed change. Hooks run after the write is durable, so an
// error is logged and never undoes the change.
type Hook func(ctx context.Context, c Change) error

type namedHook struct {
	name string
	fn   Hook
}

// Hooks is an ordered set of post-commit hooks. The zero value is ready to use and
// a nil *Hooks runs nothing.
type Hooks struct {
	mu    sync.RWMutex
	hooks []namedHook
}

// Register appends a hook under name
func (h *Hooks) Register(name string, fn Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: fn})
}

// Run invokes every hook for every change in registration order
func (h *Hooks) Run(ctx context.Context, changes ...Change) {
	if h == nil {
		return
	}
	h.mu.RLock()
	hooks := append([]namedHook(nil), h.hooks...)
	h.mu.RUnlock()

	for _, c := range changes {
		for _, nh := range hooks {
			if err := invoke(ctx, nh, c); err != nil {
				zap.S().Warnw("post-commit hook failed",
					"hook", nh.name,
					"change", c.Kind,
					"eventId", c.Event.ID.Hex(),
					"error", err)
			}
		}
	}
}

func invoke(ctx context.Context, nh namedHook, c Change) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return nh.fn(ctx, c)
}

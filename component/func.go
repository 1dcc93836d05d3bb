package component

import (
	"context"
	"sync"
)

// Func is a Component built from plain functions. Either function may be nil.
type Func struct {
	name    string
	start   func(ctx context.Context) error
	stop    func(ctx context.Context) error
	mu      sync.RWMutex
	running bool
	lastErr error
}

// NewFunc creates a Func component.
func NewFunc(name string, start, stop func(ctx context.Context) error) *Func {
	return &Func{name: name, start: start, stop: stop}
}

// Name returns the component name.
func (f *Func) Name() string { return f.name }

// Start runs the start function and marks the component running on success.
func (f *Func) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.start != nil {
		if err := f.start(ctx); err != nil {
			f.lastErr = err
			return err
		}
	}
	f.running = true
	f.lastErr = nil
	return nil
}

// Stop runs the stop function once per successful Start.
func (f *Func) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return nil
	}
	f.running = false
	if f.stop != nil {
		if err := f.stop(ctx); err != nil {
			f.lastErr = err
			return err
		}
	}
	return nil
}

// Health reports healthy while running, unhealthy after a failure.
func (f *Func) Health(ctx context.Context) Health {
	f.mu.RLock()
	defer f.mu.RUnlock()
	switch {
	case f.lastErr != nil:
		return Health{Name: f.name, Status: StatusUnhealthy, Message: f.lastErr.Error()}
	case f.running:
		return Health{Name: f.name, Status: StatusHealthy}
	default:
		return Health{Name: f.name, Status: StatusDegraded, Message: "not running"}
	}
}

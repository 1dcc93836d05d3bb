package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	apperrors "github.com/kbukum/svcapp/errors"
	"github.com/kbukum/svcapp/logger"
)

// RegistrationMode determines how a component should be resolved
type RegistrationMode int

const (
	Lazy      RegistrationMode = iota // Initialize on first resolve
	Eager                             // Initialize when the container is bootstrapped
	Singleton                         // Pre-created instance
)

func (m RegistrationMode) String() string {
	switch m {
	case Lazy:
		return "lazy"
	case Eager:
		return "eager"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Container defines the interface for a dependency injection container
type Container interface {
	Register(key string, constructor interface{}) error
	RegisterEager(key string, constructor interface{}) error
	RegisterSingleton(key string, instance interface{}) error
	Install(installer Installer) error
	Bootstrap() error
	Resolve(key string) (interface{}, error)
	Close() error

	// Introspection
	IsBootstrapped() bool
	Registrations() []RegistrationInfo
}

// Installer groups related registrations.
type Installer interface {
	Install(c Container) error
}

// InstallerFunc adapts a function to the Installer interface.
type InstallerFunc func(c Container) error

// Install calls f(c).
func (f InstallerFunc) Install(c Container) error { return f(c) }

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Initialized bool
}

type registration struct {
	key         string
	constructor reflect.Value
	mode        RegistrationMode
	mu          sync.Mutex
	instance    interface{}
	initialized bool
}

// UnifiedContainer is the default Container implementation.
type UnifiedContainer struct {
	mu           sync.RWMutex
	entries      map[string]*registration
	order        []string
	bootstrapped bool
	closed       bool
}

var (
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// NewContainer creates an empty container.
func NewContainer() Container {
	return &UnifiedContainer{
		entries: make(map[string]*registration),
	}
}

// Register registers a component for lazy initialization. The constructor
// runs on first Resolve and its result is cached.
func (c *UnifiedContainer) Register(key string, constructor interface{}) error {
	return c.add(key, constructor, Lazy)
}

// RegisterEager registers a component that is constructed when the container
// is bootstrapped, or immediately when it already is.
func (c *UnifiedContainer) RegisterEager(key string, constructor interface{}) error {
	if err := c.add(key, constructor, Eager); err != nil {
		return err
	}
	if c.IsBootstrapped() {
		return c.initialize(c.lookup(key))
	}
	return nil
}

// RegisterSingleton registers a pre-created instance.
func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}) error {
	if key == "" {
		return apperrors.InvalidArgument("key", "is required")
	}
	if instance == nil {
		return apperrors.InvalidArgument("instance", "is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apperrors.InvalidPhase("RegisterSingleton", "closed")
	}
	c.put(&registration{key: key, mode: Singleton, instance: instance, initialized: true})
	return nil
}

// Install applies an installer to the container.
func (c *UnifiedContainer) Install(installer Installer) error {
	if installer == nil {
		return apperrors.InvalidArgument("installer", "is required")
	}
	if err := installer.Install(c); err != nil {
		return fmt.Errorf("installer %T: %w", installer, err)
	}
	return nil
}

// Bootstrap constructs every eager registration. Calling it again is a no-op.
func (c *UnifiedContainer) Bootstrap() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return apperrors.InvalidPhase("Bootstrap", "closed")
	}
	if c.bootstrapped {
		c.mu.Unlock()
		return nil
	}
	c.bootstrapped = true
	var eager []*registration
	for _, key := range c.order {
		if reg := c.entries[key]; reg.mode == Eager {
			eager = append(eager, reg)
		}
	}
	c.mu.Unlock()

	for _, reg := range eager {
		if err := c.initialize(reg); err != nil {
			return err
		}
	}
	logger.Debug("Container bootstrapped", logger.Fields("eager", len(eager)))
	return nil
}

// IsBootstrapped reports whether Bootstrap has been called.
func (c *UnifiedContainer) IsBootstrapped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bootstrapped
}

// Resolve gets a component instance.
func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	c.mu.RLock()
	reg, exists := c.entries[key]
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return nil, apperrors.InvalidPhase("Resolve", "closed")
	}
	if !exists {
		return nil, fmt.Errorf("component not registered: %s", key)
	}

	switch reg.mode {
	case Singleton:
		return reg.instance, nil
	case Eager:
		reg.mu.Lock()
		defer reg.mu.Unlock()
		if !reg.initialized {
			return nil, fmt.Errorf("eager component %s is not initialized; bootstrap the container first", key)
		}
		return reg.instance, nil
	default:
		if err := c.initialize(reg); err != nil {
			return nil, err
		}
		reg.mu.Lock()
		defer reg.mu.Unlock()
		return reg.instance, nil
	}
}

// Registrations returns info about all registered components in registration order.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.order))
	for _, key := range c.order {
		reg := c.entries[key]
		reg.mu.Lock()
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        reg.mode,
			Initialized: reg.initialized,
		})
		reg.mu.Unlock()
	}
	return result
}

// Close closes every initialized instance that implements Close() error,
// in reverse registration order. Close failures are collected, not
// short-circuited. Only the first call does any work.
func (c *UnifiedContainer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	regs := make([]*registration, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		regs = append(regs, c.entries[c.order[i]])
	}
	c.mu.Unlock()

	var errs []error
	for _, reg := range regs {
		reg.mu.Lock()
		instance, initialized := reg.instance, reg.initialized
		reg.mu.Unlock()
		if !initialized || instance == nil {
			continue
		}
		if closer, ok := instance.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", reg.key, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *UnifiedContainer) add(key string, constructor interface{}, mode RegistrationMode) error {
	if key == "" {
		return apperrors.InvalidArgument("key", "is required")
	}
	fn, err := checkConstructor(constructor)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apperrors.InvalidPhase("Register", "closed")
	}
	c.put(&registration{key: key, constructor: fn, mode: mode})
	return nil
}

// put stores reg, replacing any earlier registration under the same key.
// Caller holds c.mu.
func (c *UnifiedContainer) put(reg *registration) {
	if _, exists := c.entries[reg.key]; !exists {
		c.order = append(c.order, reg.key)
	}
	c.entries[reg.key] = reg
}

func (c *UnifiedContainer) lookup(key string) *registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key]
}

// initialize runs the constructor once; a failed construction is not
// cached, so the next Resolve tries again.
func (c *UnifiedContainer) initialize(reg *registration) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.initialized {
		return nil
	}

	instance, err := c.callConstructor(reg.constructor)
	if err != nil {
		logger.Debug("Component initialization failed", map[string]interface{}{
			"component": reg.key,
			"error":     err.Error(),
		})
		return fmt.Errorf("failed to initialize component '%s': %w", reg.key, err)
	}
	reg.instance = instance
	reg.initialized = true
	return nil
}

// checkConstructor validates the supported shapes:
// func() T, func() (T, error), func(context.Context) ..., func(Container) ...
func checkConstructor(constructor interface{}) (reflect.Value, error) {
	if constructor == nil {
		return reflect.Value{}, apperrors.InvalidArgument("constructor", "is required")
	}
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return reflect.Value{}, apperrors.InvalidArgument("constructor", "must be a function")
	}

	t := fn.Type()
	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) != contextType && t.In(0) != containerType {
			return reflect.Value{}, apperrors.InvalidArgument("constructor", "single parameter must be context.Context or di.Container")
		}
	default:
		return reflect.Value{}, apperrors.InvalidArgument("constructor", "must take at most one parameter")
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if !t.Out(1).Implements(errorType) {
			return reflect.Value{}, apperrors.InvalidArgument("constructor", "second result must be an error")
		}
	default:
		return reflect.Value{}, apperrors.InvalidArgument("constructor", "must return (instance) or (instance, error)")
	}
	return fn, nil
}

func (c *UnifiedContainer) callConstructor(fn reflect.Value) (instance interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("constructor panicked: %v", r)
		}
	}()

	var args []reflect.Value
	if fn.Type().NumIn() == 1 {
		if fn.Type().In(0) == contextType {
			args = []reflect.Value{reflect.ValueOf(context.Background())}
		} else {
			args = []reflect.Value{reflect.ValueOf(Container(c))}
		}
	}

	results := fn.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

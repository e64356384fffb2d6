package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"
)

// RegistrationMode determines how a component should be resolved
type RegistrationMode int

const (
	Lazy      RegistrationMode = iota // Initialize on first resolve
	Singleton                         // Pre-created instance
)

// String returns the mode name.
func (m RegistrationMode) String() string {
	switch m {
	case Lazy:
		return "lazy"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// ErrNotRegistered is returned (wrapped) when a key has no registration.
var ErrNotRegistered = errors.New("component not registered")

// Container defines the interface for a dependency injection container
type Container interface {
	Register(key string, constructor interface{}) error
	RegisterSingleton(key string, instance interface{}) error
	Resolve(key string) (interface{}, error)
	Has(key string) bool
	Close() error

	// Introspection
	Registrations() []RegistrationInfo
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode // Lazy or Singleton
	Initialized bool
}

// UnifiedContainer is the default Container implementation.
type UnifiedContainer struct {
	components map[string]*ComponentRegistration
	singletons map[string]interface{}
	mutex      sync.RWMutex
}

type ComponentRegistration struct {
	key         string
	constructor interface{}
	mode        RegistrationMode
	instance    interface{}
	mutex       sync.Mutex
	initialized bool
}

var _ Container = (*UnifiedContainer)(nil)

func NewContainer() Container {
	return &UnifiedContainer{
		components: make(map[string]*ComponentRegistration),
		singletons: make(map[string]interface{}),
	}
}

// Register registers a component for lazy initialization (most common case).
// The constructor runs once, on first Resolve.
func (c *UnifiedContainer) Register(key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("failed to register '%s': %w", key, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.singletons, key)
	c.components[key] = &ComponentRegistration{
		key:         key,
		constructor: constructor,
		mode:        Lazy,
	}
	return nil
}

// RegisterSingleton registers a pre-created instance
func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.components, key)
	c.singletons[key] = instance
	return nil
}

// Has reports whether key has a registration.
func (c *UnifiedContainer) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if _, ok := c.singletons[key]; ok {
		return true
	}
	_, ok := c.components[key]
	return ok
}

// Resolve gets a component instance
func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	// Check singletons first
	c.mutex.RLock()
	if singleton, exists := c.singletons[key]; exists {
		c.mutex.RUnlock()
		return singleton, nil
	}

	registration, exists := c.components[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}

	return c.resolveComponent(registration)
}

func (c *UnifiedContainer) resolveComponent(registration *ComponentRegistration) (interface{}, error) {
	registration.mutex.Lock()
	defer registration.mutex.Unlock()

	if registration.initialized {
		return registration.instance, nil
	}

	instance, err := c.callConstructor(registration.constructor)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lazy component '%s': %w", registration.key, err)
	}

	registration.instance = instance
	registration.initialized = true
	return instance, nil
}

func checkConstructor(constructor interface{}) error {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function")
	}
	return nil
}

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
)

func (c *UnifiedContainer) callConstructor(constructor interface{}) (interface{}, error) {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function")
	}

	fnType := fn.Type()

	// Handle different constructor signatures
	switch {
	case fnType.NumIn() == 0:
		// Simple constructor: func() (Service, error) or func() Service
		return c.handleConstructorResults(fn.Call(nil))

	case fnType.NumIn() == 1 && fnType.In(0) == contextType:
		// Context-aware constructor: func(context.Context) (Service, error)
		return c.handleConstructorResults(fn.Call([]reflect.Value{reflect.ValueOf(context.Background())}))

	case fnType.NumIn() == 1 && fnType.In(0) == containerType:
		// DI-aware constructor: func(Container) (Service, error)
		var self Container = c
		return c.handleConstructorResults(fn.Call([]reflect.Value{reflect.ValueOf(&self).Elem()}))

	default:
		return nil, fmt.Errorf("unsupported constructor signature %s", fnType)
	}
}

func (c *UnifiedContainer) handleConstructorResults(results []reflect.Value) (interface{}, error) {
	switch len(results) {
	case 1:
		// Constructor returns just the instance
		return results[0].Interface(), nil
	case 2:
		// Constructor returns (instance, error)
		if err, _ := results[1].Interface().(error); err != nil {
			return nil, err
		}
		return results[0].Interface(), nil
	default:
		return nil, fmt.Errorf("constructor must return either (instance) or (instance, error)")
	}
}

// Registrations returns info about all registered components, sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.components)+len(c.singletons))

	for key, reg := range c.components {
		reg.mutex.Lock()
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        reg.mode,
			Initialized: reg.initialized,
		})
		reg.mutex.Unlock()
	}

	for key := range c.singletons {
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        Singleton,
			Initialized: true,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Close closes every initialized instance that implements io.Closer and
// empties the container. Calling Close again is a no-op.
func (c *UnifiedContainer) Close() error {
	c.mutex.Lock()
	components, singletons := c.components, c.singletons
	c.components = make(map[string]*ComponentRegistration)
	c.singletons = make(map[string]interface{})
	c.mutex.Unlock()

	var errs []error
	for _, registration := range components {
		if registration.initialized && registration.instance != nil {
			if closer, ok := registration.instance.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					errs = append(errs, fmt.Errorf("close %s: %w", registration.key, err))
				}
			}
		}
	}

	for key, singleton := range singletons {
		if closer, ok := singleton.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", key, err))
			}
		}
	}

	return errors.Join(errs...)
}

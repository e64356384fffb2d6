package di

import (
	"fmt"
	"reflect"
)

// Resolve resolves a component with type safety, returns error on failure.
//
// Example:
//
//	repo, err := di.Resolve[*ItemRepo](c, "items")
//	if err != nil {
//	    return fmt.Errorf("failed to get item repository: %w", err)
//	}
func Resolve[T any](c Container, key string) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", key, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: component %s is %T, expected %s", key, instance, KeyOf[T]())
	}
	return result, nil
}

// KeyOf returns the registration key used for type-keyed components.
// Interface types work too: KeyOf[io.Writer]() is "type:io.Writer".
func KeyOf[T any]() string {
	return "type:" + typeName(reflect.TypeOf((*T)(nil)).Elem())
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + typeName(t.Elem())
	}
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Provide registers instance as the singleton for type T.
func Provide[T any](c Container, instance T) error {
	return c.RegisterSingleton(KeyOf[T](), instance)
}

// ProvideFunc registers a lazy constructor for type T.
// The constructor follows the same signatures as Container.Register.
func ProvideFunc[T any](c Container, constructor interface{}) error {
	return c.Register(KeyOf[T](), constructor)
}

// Get resolves the component registered for type T, returning an error that
// wraps ErrNotRegistered when T was never provided.
func Get[T any](c Container) (T, error) {
	return Resolve[T](c, KeyOf[T]())
}

package di

import "fmt"

// MustResolve resolves a component with type safety, panics on error.
//
// Example:
//
//	clock := di.MustResolve[Clock](c, "clock")
func MustResolve[T any](c Container, key string) T {
	result, err := Resolve[T](c, key)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// Resolve resolves a component with type safety, returns error on failure.
//
// Example:
//
//	program, err := di.Resolve[bootstrap.Program](c, di.Keys.Program)
//	if err != nil {
//	    return err
//	}
func Resolve[T any](c Container, key string) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", key, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: component %s is %T, expected %T", key, instance, zero)
	}
	return result, nil
}

// TryResolve resolves a component, returns zero value and false if it is
// missing, fails to construct or has the wrong type.
func TryResolve[T any](c Container, key string) (T, bool) {
	result, err := Resolve[T](c, key)
	if err != nil {
		return result, false
	}
	return result, true
}

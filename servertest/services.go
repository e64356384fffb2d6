package servertest

import (
	"errors"
	"fmt"

	"github.com/kbukum/testkit/di"
	apperrors "github.com/kbukum/testkit/errors"
)

// LookupService returns the service registered for type T in the host's
// container. It reports false when nothing is registered for T, and also
// when T is registered but cannot be built; use Service to see why.
func LookupService[T any](f *Fixture) (T, bool) {
	svc, err := Service[T](f)
	return svc, err == nil
}

// Service returns the service registered for type T. A type that was never
// registered yields a NOT_FOUND *errors.AppError; any other failure, such
// as a constructor error, is returned wrapped.
func Service[T any](f *Fixture) (T, error) {
	var zero T
	if f == nil || f.container == nil {
		return zero, apperrors.NotFound("service", di.KeyOf[T]())
	}
	svc, err := di.Get[T](f.container)
	switch {
	case errors.Is(err, di.ErrNotRegistered):
		return zero, apperrors.NotFound("service", di.KeyOf[T]()).WithCause(err)
	case err != nil:
		return zero, fmt.Errorf("servertest: resolve service: %w", err)
	}
	return svc, nil
}

// MustService is like Service but panics on any failure.
func MustService[T any](f *Fixture) T {
	svc, err := Service[T](f)
	if err != nil {
		panic(err)
	}
	return svc
}

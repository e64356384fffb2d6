// Package di provides the dependency injection container used by test hosts.
//
// Components are registered under string keys either lazily (constructor
// runs on first resolve) or as singletons (pre-built instance). The
// Provide/Get family keys components by their Go type so callers never
// spell a key.
//
// # Registration
//
//	di.Provide[*ItemRepo](c, repo)
//	di.ProvideFunc[Clock](c, func() Clock { return realClock{} })
//
// # Resolution
//
//	repo, err := di.Get[*ItemRepo](c)
//	if errors.Is(err, di.ErrNotRegistered) {
//	    ...
//	}
package di

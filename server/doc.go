// Package server provides the in-memory HTTP host used by test fixtures:
// a Gin engine mounted on a ServeMux.
//
// The host is never bound to a port. Requests are dispatched straight into
// Handler(), which makes it cheap to build one host per test. Gin always
// runs in test mode; the package sets it once at init.
//
// # Middleware
//
// ApplyMiddleware installs the standard stack from server/middleware:
//
//   - Recovery: panics become a 500 with a structured body
//   - RequestID: X-Request-Id generation and propagation
//   - GinRequestLogger: request logging with duration tracking
//
// # Routes
//
// RouteAnalyzer lists the registered Gin routes for introspection in tests.
package server

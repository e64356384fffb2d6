package server

import (
	"sort"
	"strings"
)

// Route describes one registered Gin route.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
}

// RouteAnalyzer inspects the route table of a Server.
type RouteAnalyzer struct {
	server *Server
}

// NewRouteAnalyzer returns an analyzer over srv's routes.
func NewRouteAnalyzer(srv *Server) *RouteAnalyzer {
	return &RouteAnalyzer{server: srv}
}

// Routes returns all registered routes sorted by path, then by method
// (GET first, DELETE last).
func (a *RouteAnalyzer) Routes() []Route {
	ginRoutes := a.server.engine.Routes()

	sort.Slice(ginRoutes, func(i, j int) bool {
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return routes
}

// Find returns the route registered for method and path. Path is matched
// against the registered pattern, e.g. "/items/:id".
func (a *RouteAnalyzer) Find(method, path string) (Route, bool) {
	method = strings.ToUpper(method)
	for _, r := range a.Routes() {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Has reports whether a route is registered for method and path.
func (a *RouteAnalyzer) Has(method, path string) bool {
	_, ok := a.Find(method, path)
	return ok
}

// formatHandlerName extracts a clean handler name from Gin's full handler path.
// Gin stores handlers like:
//
//	"github.com/yourorg/yourservice/internal/api/port.(*UserPort).List-fm"
//
// We extract: "UserPort.List"
func formatHandlerName(fullPath string) string {
	// Remove -fm suffix Gin adds to method values
	name := strings.TrimSuffix(fullPath, "-fm")

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	// "(*UserPort).List" -> "UserPort.List"
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures like "Server.Configure.func1" keep the last named segment.
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Remove package prefix: "port.UserPort.List" -> "UserPort.List"
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 && len(parts[1]) > 0 && strings.ToLower(parts[0]) == parts[0] {
		name = parts[1]
	}

	return name
}

// methodOrder returns a sort key for HTTP methods (GET first, DELETE last).
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}

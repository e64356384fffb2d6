package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/testkit/logger"
	"github.com/kbukum/testkit/server/middleware"
)

// Gin's mode is process-wide. Hosts in this package always run in test
// mode, so it is set once here and never per host.
func init() {
	gin.SetMode(gin.TestMode)
}

// Server is an in-memory HTTP host backed by Gin. Additional http.Handler
// mounts share the same root mux. The host never binds a listener;
// requests reach it through Handler().
type Server struct {
	engine *gin.Engine
	mux    *http.ServeMux
	config Config
	log    *logger.Logger
}

// New creates a new Server. The Gin engine is created but no middleware is
// applied yet; call ApplyMiddleware for the standard stack. A nil log
// disables host logging.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}

	engine := gin.New()
	mux := http.NewServeMux()

	// Mount Gin as the fallback handler on the root mux.
	mux.Handle("/", engine)

	return &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler requests are dispatched into.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Config returns the effective configuration.
func (s *Server) Config() Config {
	return s.config
}

// Handle mounts an http.Handler at the given pattern on the root ServeMux,
// wrapped with request logging and then mws. The pattern must include a
// trailing slash for subtree matches.
func (s *Server) Handle(pattern string, handler http.Handler, mws ...middleware.Middleware) {
	chain := append([]middleware.Middleware{middleware.RequestLogger(s.log)}, mws...)
	s.mux.Handle(pattern, middleware.Chain(chain...)(handler))
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// ServeHTTP dispatches r into the host.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Use appends Gin middleware to the engine.
func (s *Server) Use(handlers ...gin.HandlerFunc) {
	s.engine.Use(handlers...)
}

// ApplyMiddleware applies the standard middleware stack to the server's Gin engine:
// recovery, request-ID and request logging.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(middleware.Recovery(s.log))
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.GinRequestLogger(s.log))
}

package servertest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/spf13/viper"

	"github.com/kbukum/testkit/config"
	"github.com/kbukum/testkit/di"
	apperrors "github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/logger"
	"github.com/kbukum/testkit/observability"
	"github.com/kbukum/testkit/server"
)

const instrumentationName = "github.com/kbukum/testkit/servertest"

// Startup is the entry point of the application under test.
type Startup interface {
	// ConfigureServices registers the application's services.
	ConfigureServices(c di.Container, cfg *viper.Viper) error
	// Configure registers routes and middleware on the host.
	Configure(srv *server.Server) error
}

// Fixture is an application host running in memory with a client wired
// straight into it.
type Fixture struct {
	client    *http.Client
	server    *server.Server
	container di.Container
	config    *viper.Viper
	settings  Settings
	log       *logger.Logger
	baseURL   *url.URL
	transport *transport

	closeOnce sync.Once
	closeErr  error
}

// New builds the configuration, logger, service container and host for
// startup and returns a fixture whose client talks to that host. Nothing is
// returned on failure and everything built so far is released.
func New(startup Startup, opts ...Option) (f *Fixture, err error) {
	if startup == nil {
		return nil, apperrors.InvalidInput("startup", "startup is nil")
	}
	o := newOptions(opts)

	cfg, err := config.Load(o.loader...)
	if err != nil {
		return nil, fmt.Errorf("servertest: load configuration: %w", err)
	}

	settings, err := loadSettings(cfg)
	if err != nil {
		return nil, fmt.Errorf("servertest: %w", err)
	}
	baseURL, err := url.Parse(settings.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("servertest: parse base url: %w", err)
	}

	log := newLogger(settings, o.logOutput)
	container := di.NewContainer()
	defer func() {
		if err != nil {
			_ = container.Close()
		}
	}()

	srv := server.New(settings.Server, log)
	srv.ApplyMiddleware()

	if err := registerHostServices(container, cfg, settings, log, srv); err != nil {
		return nil, fmt.Errorf("servertest: register host services: %w", err)
	}
	for _, fn := range o.services {
		if err := fn(container); err != nil {
			return nil, fmt.Errorf("servertest: register services: %w", err)
		}
	}
	if err := startup.ConfigureServices(container, cfg); err != nil {
		return nil, fmt.Errorf("servertest: configure services: %w", err)
	}
	if err := startup.Configure(srv); err != nil {
		return nil, fmt.Errorf("servertest: configure host: %w", err)
	}

	metrics, err := observability.NewMetrics(observability.Meter(o.meterProvider, instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("servertest: %w", err)
	}

	rt := &transport{
		handler:    srv.Handler(),
		headers:    o.headers,
		tracer:     observability.Tracer(o.tracerProvider, instrumentationName),
		propagator: observability.Propagator(),
		metrics:    metrics,
	}

	services := container.Registrations()
	keys := make([]string, len(services))
	for i, reg := range services {
		keys[i] = reg.Key
	}
	log.Debug("Test host ready", map[string]interface{}{
		"environment": settings.Environment,
		"base_url":    baseURL.String(),
		"services":    keys,
	})

	return &Fixture{
		transport: rt,
		client:    &http.Client{Transport: rt},
		server:    srv,
		container: container,
		config:    cfg,
		settings:  settings,
		log:       log,
		baseURL:   baseURL,
	}, nil
}

// registerHostServices makes the host's own pieces resolvable by name and by type.
func registerHostServices(c di.Container, cfg *viper.Viper, settings Settings, log *logger.Logger, srv *server.Server) error {
	return errors.Join(
		c.RegisterSingleton(di.Pkg.Config, cfg),
		c.RegisterSingleton(di.Pkg.Logger, log),
		c.RegisterSingleton(di.Pkg.HTTPServer, srv),
		di.Provide(c, cfg),
		di.Provide(c, log),
		di.Provide(c, srv),
		di.Provide(c, settings),
		di.ProvideFunc[*server.RouteAnalyzer](c, func() *server.RouteAnalyzer {
			return server.NewRouteAnalyzer(srv)
		}),
	)
}

// NewT builds a fixture for the duration of a test. Construction errors fail
// the test and the fixture is closed during cleanup.
func NewT(t testing.TB, startup Startup, opts ...Option) *Fixture {
	t.Helper()
	f, err := New(startup, opts...)
	if err != nil {
		t.Fatalf("servertest: %v", err)
	}
	t.Cleanup(func() {
		if err := f.Close(); err != nil {
			t.Errorf("servertest: close: %v", err)
		}
	})
	return f
}

// Client returns the client wired to the in-memory host.
func (f *Fixture) Client() *http.Client { return f.client }

// Server returns the host.
func (f *Fixture) Server() *server.Server { return f.server }

// Container returns the host's service container.
func (f *Fixture) Container() di.Container { return f.container }

// Config returns the merged configuration.
func (f *Fixture) Config() *viper.Viper { return f.config }

// Settings returns the fixture settings.
func (f *Fixture) Settings() Settings { return f.settings }

// Logger returns the debug logger shared by the fixture and the host.
func (f *Fixture) Logger() *logger.Logger { return f.log }

// Routes lists the host's routes. It is empty after Close.
func (f *Fixture) Routes() []server.Route {
	analyzer, ok := LookupService[*server.RouteAnalyzer](f)
	if !ok {
		return nil
	}
	return analyzer.Routes()
}

// Close releases the client first, then the host and its services. It is
// safe to call more than once and on a nil fixture. Client requests fail
// with ErrClosed afterwards.
func (f *Fixture) Close() error {
	if f == nil {
		return nil
	}
	f.closeOnce.Do(func() {
		if f.transport != nil {
			f.transport.close()
		}
		if f.container != nil {
			f.closeErr = f.container.Close()
		}
	})
	return f.closeErr
}

package servertest

import (
	"io"
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/testkit/config"
	"github.com/kbukum/testkit/di"
)

type options struct {
	loader         []config.LoaderOption
	logOutput      io.Writer
	services       []func(c di.Container) error
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	headers        http.Header
}

// Option configures a Fixture.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{headers: make(http.Header)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEnvironment selects appsettings.<env>.json. Defaults to Development.
func WithEnvironment(env string) Option {
	return func(o *options) {
		o.loader = append(o.loader, config.WithEnvironment(env))
	}
}

// WithConfigDir sets the directory settings files are read from.
func WithConfigDir(dir string) Option {
	return func(o *options) {
		o.loader = append(o.loader, config.WithDir(dir))
	}
}

// WithConfigSources replaces the default appsettings chain.
func WithConfigSources(sources ...config.Source) Option {
	return func(o *options) {
		o.loader = append(o.loader, config.WithSources(sources...))
	}
}

// WithEnvFile loads a .env file into the environment before binding it.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.loader = append(o.loader, config.WithEnvFile(path))
	}
}

// WithEnvPrefix only binds environment variables carrying prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.loader = append(o.loader, config.WithEnvPrefix(prefix))
	}
}

// WithoutEnv ignores process environment variables.
func WithoutEnv() Option {
	return func(o *options) {
		o.loader = append(o.loader, config.WithoutEnv())
	}
}

// WithLogOutput sends fixture and host logs to w. Logs are discarded by default.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithServices registers extra services before the startup's own
// ConfigureServices runs. It may be passed more than once.
func WithServices(fn func(c di.Container) error) Option {
	return func(o *options) { o.services = append(o.services, fn) }
}

// WithTracerProvider traces requests with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider records request metrics with mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithHeader adds a header to every request that does not set it itself.
func WithHeader(key, value string) Option {
	return func(o *options) { o.headers.Add(key, value) }
}

// WithBearerToken authenticates every request with token.
func WithBearerToken(token string) Option {
	return func(o *options) { o.headers.Set("Authorization", "Bearer "+token) }
}

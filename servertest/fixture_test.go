package servertest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/kbukum/testkit/di"
	apperrors "github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/logger"
	"github.com/kbukum/testkit/server"
)

func TestTypedVerbs(t *testing.T) {
	f := newFixture(t, &testStartup{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (valueDTO, error)
	}{
		{"GET", func() (valueDTO, error) { return Get[valueDTO](ctx, f, "/value") }},
		{"POST", func() (valueDTO, error) { return Post[valueDTO](ctx, f, "/value", valueDTO{Value: 42}) }},
		{"PUT", func() (valueDTO, error) { return Put[valueDTO](ctx, f, "/value", map[string]int{"value": 42}) }},
		{"DELETE", func() (valueDTO, error) { return Delete[valueDTO](ctx, f, "/value") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Value != 42 {
				t.Errorf("value = %d, want 42", got.Value)
			}
		})
	}
}

func TestTypedVerbIntoMap(t *testing.T) {
	f := newFixture(t, &testStartup{})

	got, err := Get[map[string]any](context.Background(), f, "/value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["value"] != float64(42) {
		t.Errorf("value = %v, want 42", got["value"])
	}
}

func TestTypedVerbDecodeError(t *testing.T) {
	f := newFixture(t, &testStartup{})

	_, err := Get[[]string](context.Background(), f, "/value")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "decode response") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRawGetNotFound(t *testing.T) {
	f := newFixture(t, &testStartup{})

	resp, err := f.Get(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("a 404 is not a call failure: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRawVerbs(t *testing.T) {
	f := newFixture(t, &testStartup{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*http.Response, error)
		want int
	}{
		{"GET", func() (*http.Response, error) { return f.Get(ctx, "/value") }, http.StatusOK},
		{"POST", func() (*http.Response, error) { return f.Post(ctx, "/value", valueDTO{Value: 1}) }, http.StatusOK},
		{"POST invalid", func() (*http.Response, error) { return f.Post(ctx, "/value", "not json") }, http.StatusBadRequest},
		{"PUT", func() (*http.Response, error) { return f.Put(ctx, "/value", valueDTO{Value: 1}) }, http.StatusOK},
		{"DELETE", func() (*http.Response, error) { return f.Delete(ctx, "/value") }, http.StatusOK},
		{"absolute", func() (*http.Response, error) { return f.Get(ctx, "http://localhost/value") }, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := tc.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestRequestBodies(t *testing.T) {
	f := newFixture(t, &testStartup{})
	ctx := context.Background()

	type echo struct {
		Body        string `json:"body"`
		ContentType string `json:"content_type"`
	}
	tests := []struct {
		name string
		body any
		want string
	}{
		{"struct", valueDTO{Value: 7}, `{"value":7}`},
		{"string", `{"raw":true}`, `{"raw":true}`},
		{"bytes", []byte(`[1,2]`), `[1,2]`},
		{"reader", strings.NewReader("plain"), "plain"},
		{"nil", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Post[echo](ctx, f, "/raw", tc.body)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Body != tc.want {
				t.Errorf("body = %q, want %q", got.Body, tc.want)
			}
			if tc.body != nil && got.ContentType != "application/json" {
				t.Errorf("content type = %q", got.ContentType)
			}
		})
	}
}

func TestHandlerPanics(t *testing.T) {
	f := newFixture(t, &testStartup{})
	ctx := context.Background()

	resp, err := f.Get(ctx, "/panic")
	if err != nil {
		t.Fatalf("gin panics are recovered by the host: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}

	resp, err = f.Get(ctx, "/mounted/x")
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected error from panicking mounted handler")
	}
	if !strings.Contains(err.Error(), "mounted failure") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	f := newFixture(t, &testStartup{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	resp, err := f.Get(ctx, "/slow")
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected error for cancelled request")
	}
	if resp != nil {
		t.Error("expected no response")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestAlreadyCancelledContext(t *testing.T) {
	f := newFixture(t, &testStartup{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Get[valueDTO](ctx, f, "/value"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClose(t *testing.T) {
	startup := &testStartup{}
	f, err := New(startup, WithConfigDir(t.TempDir()), WithoutEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if startup.store.closed != 1 {
		t.Errorf("store closed %d times, want 1", startup.store.closed)
	}

	if _, err := f.Get(context.Background(), "/value"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	if routes := f.Routes(); len(routes) != 0 {
		t.Errorf("expected no routes after Close, got %v", routes)
	}
}

func TestCloseIdleConnectionsKeepsClientUsable(t *testing.T) {
	f := newFixture(t, &testStartup{})
	ctx := context.Background()

	f.Client().CloseIdleConnections()

	got, err := Get[valueDTO](ctx, f, "/value")
	if err != nil {
		t.Fatalf("client unusable after CloseIdleConnections: %v", err)
	}
	if got.Value != 42 {
		t.Errorf("value = %d, want 42", got.Value)
	}
	if _, ok := LookupService[*itemStore](f); !ok {
		t.Error("expected the host services to stay registered")
	}
}

func TestUpgradeRequestServedAsHTTP1(t *testing.T) {
	f := newFixture(t, &testStartup{})

	target, err := f.resolve("/value")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, target, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Connection", "Upgrade, HTTP2-Settings")
	req.Header.Set("Upgrade", "h2c")
	req.Header.Set("HTTP2-Settings", "AAMAAABkAARAAAAAAAIAAAAA")

	resp, err := f.Client().Do(req)
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCloseNil(t *testing.T) {
	var f *Fixture
	if err := f.Close(); err != nil {
		t.Errorf("nil Close = %v", err)
	}
	if err := (&Fixture{}).Close(); err != nil {
		t.Errorf("empty Close = %v", err)
	}
}

func TestNewT(t *testing.T) {
	var f *Fixture
	t.Run("scoped", func(t *testing.T) {
		f = newFixture(t, &testStartup{})
		if _, err := Get[valueDTO](context.Background(), f, "/value"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if _, err := f.Get(context.Background(), "/value"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected fixture closed by cleanup, got %v", err)
	}
}

func TestNewErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		startup Startup
		opts    []Option
	}{
		{"nil startup", nil, nil},
		{"services", &testStartup{servicesErr: boom}, nil},
		{"configure", &testStartup{configureErr: boom}, nil},
		{"extra services", &testStartup{}, []Option{WithServices(func(di.Container) error { return boom })}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]Option{WithConfigDir(t.TempDir()), WithoutEnv()}, tc.opts...)
			f, err := New(tc.startup, opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			if f != nil {
				t.Error("expected no fixture on failure")
			}
		})
	}
}

func TestFailedConstructionReleasesServices(t *testing.T) {
	extra := &itemStore{}
	_, err := New(&testStartup{configureErr: errors.New("boom")},
		WithConfigDir(t.TempDir()),
		WithoutEnv(),
		WithServices(func(c di.Container) error {
			return c.RegisterSingleton("extra", extra)
		}),
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if extra.closed != 1 {
		t.Errorf("expected registered services to be closed, closed %d times", extra.closed)
	}
}

func TestServiceLookup(t *testing.T) {
	startup := &testStartup{}
	f := newFixture(t, startup)

	store, ok := LookupService[*itemStore](f)
	if !ok || store != startup.store {
		t.Errorf("LookupService() = %v, %v", store, ok)
	}
	if got := MustService[*itemStore](f); got != startup.store {
		t.Errorf("MustService() = %v", got)
	}

	if _, ok := LookupService[*viper.Viper](f); !ok {
		t.Error("expected configuration to be registered by type")
	}
	if _, ok := LookupService[*logger.Logger](f); !ok {
		t.Error("expected logger to be registered by type")
	}
	if _, ok := LookupService[*server.RouteAnalyzer](f); !ok {
		t.Error("expected route analyzer to be registered")
	}
	if s, ok := LookupService[Settings](f); !ok || s.BaseURL != DefaultBaseURL {
		t.Errorf("expected settings to be registered, got %+v", s)
	}
	if v, err := di.Resolve[*viper.Viper](f.Container(), di.Pkg.Config); err != nil || v != f.Config() {
		t.Errorf("config by name = %v, %v", v, err)
	}
}

func TestServiceLookupMissing(t *testing.T) {
	f := newFixture(t, &testStartup{})

	got, ok := LookupService[*bytes.Buffer](f)
	if ok || got != nil {
		t.Errorf("LookupService() = %v, %v; want nil, false", got, ok)
	}

	_, err := Service[*bytes.Buffer](f)
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND AppError, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected MustService to panic")
		}
	}()
	MustService[io.Writer](f)
}

type brokenService struct{}

func TestServiceConstructorFailure(t *testing.T) {
	errConnect := errors.New("connect refused")
	f := newFixture(t, &testStartup{}, WithServices(func(c di.Container) error {
		return di.ProvideFunc[*brokenService](c, func() (*brokenService, error) {
			return nil, errConnect
		})
	}))

	if _, ok := LookupService[*brokenService](f); ok {
		t.Error("expected ok=false for a service that cannot be built")
	}

	_, err := Service[*brokenService](f)
	if !errors.Is(err, errConnect) {
		t.Errorf("expected the constructor error, got %v", err)
	}
	if apperrors.IsNotFound(err) {
		t.Errorf("a registered service must not be reported as NOT_FOUND: %v", err)
	}

	defer func() {
		p := recover()
		if e, ok := p.(error); !ok || !errors.Is(e, errConnect) {
			t.Errorf("MustService panicked with %v, want the constructor error", p)
		}
	}()
	MustService[*brokenService](f)
}

func TestServiceLookupNilFixture(t *testing.T) {
	if _, ok := LookupService[*itemStore](nil); ok {
		t.Error("expected false for nil fixture")
	}
}

func TestRoutes(t *testing.T) {
	f := newFixture(t, &testStartup{})

	var found bool
	for _, r := range f.Routes() {
		if r.Method == http.MethodGet && r.Path == "/value" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected GET /value in %v", f.Routes())
	}

	analyzer := MustService[*server.RouteAnalyzer](f)
	if !analyzer.Has(http.MethodDelete, "/value") {
		t.Error("expected DELETE /value")
	}
}

func TestAccessors(t *testing.T) {
	f := newFixture(t, &testStartup{})

	if f.Client() == nil || f.Server() == nil || f.Container() == nil || f.Config() == nil || f.Logger() == nil {
		t.Fatal("expected all accessors to be set")
	}
	if f.Settings().Environment != "Development" {
		t.Errorf("environment = %q", f.Settings().Environment)
	}
	if f.Logger().Service() != "testhost" {
		t.Errorf("logger service = %q", f.Logger().Service())
	}
}

func TestLogOutput(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, &testStartup{}, WithLogOutput(&buf))

	resp, err := f.Get(context.Background(), "/value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "Test host ready") || !strings.Contains(out, "Request completed") {
		t.Errorf("expected debug logs, got %q", out)
	}
}

package servertest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/testkit/observability"
	"github.com/kbukum/testkit/server/middleware"
)

// ErrClosed is returned for requests made after the fixture was closed.
var ErrClosed = errors.New("servertest: fixture is closed")

// transport dispatches requests straight into an http.Handler. Nothing
// touches the network.
type transport struct {
	handler    http.Handler
	headers    http.Header
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	metrics    *observability.Metrics
	closed     atomic.Bool
}

var _ http.RoundTripper = (*transport)(nil)

// RoundTrip serves req in memory. If the request context ends before the
// handler returns, the context error is returned and the response dropped.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.closed.Load() {
		closeBody(req)
		return nil, ErrClosed
	}
	if err := req.Context().Err(); err != nil {
		closeBody(req)
		return nil, err
	}

	ctx, span := t.tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrHTTPMethod, req.Method),
			attribute.String(observability.AttrHTTPTarget, req.URL.RequestURI()),
		),
	)
	defer span.End()

	inbound := t.inboundRequest(req.WithContext(ctx))
	t.propagator.Inject(ctx, propagation.HeaderCarrier(inbound.Header))

	start := time.Now()
	t.metrics.RecordRequestStart(ctx)

	rec := httptest.NewRecorder()
	done := make(chan error, 1)
	go func() {
		defer closeBody(req)
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("servertest: handler panicked: %v", p)
			}
		}()
		t.handler.ServeHTTP(rec, inbound)
		done <- nil
	}()

	select {
	case err := <-done:
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			t.fail(ctx, req.Method, start, err)
			return nil, err
		}
	case <-ctx.Done():
		err := ctx.Err()
		t.fail(ctx, req.Method, start, err)
		return nil, err
	}

	resp := rec.Result()
	resp.Request = req
	elapsed := time.Since(start)

	observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, resp.StatusCode)
	observability.SetSpanAttribute(ctx, observability.AttrDurationMs, elapsed.Milliseconds())
	if id := resp.Header.Get(middleware.HeaderRequestID); id != "" {
		observability.SetSpanAttribute(ctx, observability.AttrRequestID, id)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	t.metrics.RecordRequestEnd(ctx, req.Method, resp.StatusCode, elapsed)
	return resp, nil
}

// CloseIdleConnections is a no-op: there are no connections, and the
// transport lives as long as its fixture.
func (t *transport) CloseIdleConnections() {}

// close makes every later request fail with ErrClosed.
func (t *transport) close() {
	t.closed.Store(true)
}

// inboundRequest turns a client request into what a server handler expects.
func (t *transport) inboundRequest(req *http.Request) *http.Request {
	in := req.Clone(req.Context())
	for key, values := range t.headers {
		if in.Header.Get(key) != "" {
			continue
		}
		for _, v := range values {
			in.Header.Add(key, v)
		}
	}
	if in.Body == nil {
		in.Body = http.NoBody
	}
	if in.Host == "" {
		in.Host = in.URL.Host
	}
	in.RequestURI = in.URL.RequestURI()
	in.RemoteAddr = "192.0.2.1:1234"
	return in
}

func (t *transport) fail(ctx context.Context, method string, start time.Time, err error) {
	observability.SetSpanError(ctx, err)
	t.metrics.RecordRequestEnd(ctx, method, 0, time.Since(start))
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/logger"
)

func newTestServer(t *testing.T, buf *bytes.Buffer) *Server {
	t.Helper()
	log := logger.NewDebug("server-test", nil)
	if buf != nil {
		log = logger.NewDebug("server-test", buf)
	}
	srv := New(Config{}, log)
	srv.ApplyMiddleware()
	return srv
}

func serve(srv *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Name != "testhost" {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	cfg = Config{Name: "orders"}
	cfg.ApplyDefaults()
	if cfg.Name != "orders" {
		t.Errorf("explicit name overwritten: %+v", cfg)
	}
}

func TestNewLeavesGinModeAlone(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	New(Config{}, nil)
	if gin.Mode() != gin.ReleaseMode {
		t.Errorf("gin mode = %s, want %s", gin.Mode(), gin.ReleaseMode)
	}
}

func TestNilLoggerDisablesLogging(t *testing.T) {
	srv := New(Config{}, nil)
	srv.ApplyMiddleware()
	srv.GinEngine().GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	if rec := serve(srv, http.MethodGet, "/ok"); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestUpgradeHeadersAreServedAsHTTP1(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.GinEngine().GET("/value", func(c *gin.Context) { c.String(http.StatusOK, "42") })

	req := httptest.NewRequest(http.MethodGet, "/value", nil)
	req.Header.Set("Connection", "Upgrade, HTTP2-Settings")
	req.Header.Set("Upgrade", "h2c")
	req.Header.Set("HTTP2-Settings", "AAMAAABkAARAAAAAAAIAAAAA")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "42" {
		t.Errorf("got %d %q, want 200 42", rec.Code, rec.Body.String())
	}
}

func TestServerServesGinRoutes(t *testing.T) {
	var buf bytes.Buffer
	srv := newTestServer(t, &buf)
	srv.GinEngine().GET("/items", func(c *gin.Context) {
		RespondOK(c, []string{"a"})
	})

	rec := serve(srv, http.MethodGet, "/items")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":["a"]`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected request id header")
	}
	if !strings.Contains(buf.String(), "Request completed") {
		t.Errorf("expected request log line, got %q", buf.String())
	}
}

func TestServerUnknownRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	if rec := serve(srv, http.MethodGet, "/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServerHandleMountsHandler(t *testing.T) {
	var buf bytes.Buffer
	srv := newTestServer(t, &buf)

	tagged := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Mounted", "yes")
			next.ServeHTTP(w, r)
		})
	}
	srv.Handle("/raw/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), tagged)

	rec := serve(srv, http.MethodPost, "/raw/thing")
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if rec.Header().Get("X-Mounted") != "yes" {
		t.Error("expected extra middleware to run")
	}
	if !strings.Contains(buf.String(), `"status":202`) {
		t.Errorf("expected mounted request to be logged, got %q", buf.String())
	}
}

func TestServerRecoversPanics(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.GinEngine().GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	rec := serve(srv, http.MethodGet, "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != apperrors.ErrCodeInternal {
		t.Errorf("code = %s, want %s", body.Error.Code, apperrors.ErrCodeInternal)
	}
}

func TestRespondWithError(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.GinEngine().GET("/app", func(c *gin.Context) {
		RespondWithError(c, apperrors.NotFound("item", "7"))
	})
	srv.GinEngine().GET("/plain", func(c *gin.Context) {
		RespondWithError(c, http.ErrBodyNotAllowed)
	})
	srv.GinEngine().GET("/ok", func(c *gin.Context) {
		RespondOK(c, gin.H{"id": 1})
	})

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/app", http.StatusNotFound},
		{http.MethodGet, "/plain", http.StatusInternalServerError},
		{http.MethodGet, "/ok", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if rec := serve(srv, tc.method, tc.path); rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

package server

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/testkit/logger"
)

type itemsAPI struct{}

func (itemsAPI) List(c *gin.Context)    { c.Status(http.StatusOK) }
func (*itemsAPI) Create(c *gin.Context) { c.Status(http.StatusCreated) }

func ping(c *gin.Context) { c.String(http.StatusOK, "pong") }

func TestRouteAnalyzerRoutes(t *testing.T) {
	srv := New(Config{}, logger.NewDebug("routes", nil))
	api := &itemsAPI{}
	e := srv.GinEngine()
	e.DELETE("/items/:id", api.List)
	e.POST("/items", api.Create)
	e.GET("/items", api.List)
	e.GET("/ping", ping)

	got := NewRouteAnalyzer(srv).Routes()
	want := []Route{
		{Method: "GET", Path: "/items", Handler: "itemsAPI.List"},
		{Method: "POST", Path: "/items", Handler: "itemsAPI.Create"},
		{Method: "DELETE", Path: "/items/:id", Handler: "itemsAPI.List"},
		{Method: "GET", Path: "/ping", Handler: "ping"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d routes, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("routes[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRouteAnalyzerFind(t *testing.T) {
	srv := New(Config{}, logger.NewDebug("routes", nil))
	srv.GinEngine().GET("/ping", ping)
	a := NewRouteAnalyzer(srv)

	if r, ok := a.Find("get", "/ping"); !ok || r.Handler != "ping" {
		t.Errorf("Find() = %+v, %v", r, ok)
	}
	if a.Has(http.MethodPost, "/ping") {
		t.Error("expected no POST /ping route")
	}
}

func TestRouteAnalyzerEmpty(t *testing.T) {
	srv := New(Config{}, logger.NewDebug("routes", nil))
	if routes := NewRouteAnalyzer(srv).Routes(); len(routes) != 0 {
		t.Errorf("expected no routes, got %+v", routes)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/org/svc/internal/api/port.(*UserPort).List-fm": "UserPort.List",
		"github.com/org/svc/internal/api/port.UserPort.Get-fm":     "UserPort.Get",
		"github.com/org/svc/app.(*Startup).Configure.func1":        "configure",
		"github.com/org/svc/app.handler":                           "handler",
		"main.main.func2":                                          "main",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMethodOrder(t *testing.T) {
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	for i := 1; i < len(methods); i++ {
		if methodOrder(methods[i-1]) >= methodOrder(methods[i]) {
			t.Errorf("%s should sort before %s", methods[i-1], methods[i])
		}
	}
}

package servertest

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"

	"github.com/kbukum/testkit/di"
	apperrors "github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/server"
)

const testSecret = "fixture-secret"

type valueDTO struct {
	Value int `json:"value"`
}

type itemStore struct {
	closed int
}

func (s *itemStore) Close() error {
	s.closed++
	return nil
}

type testStartup struct {
	servicesErr  error
	configureErr error
	store        *itemStore
	greeting     string
}

func (s *testStartup) ConfigureServices(c di.Container, cfg *viper.Viper) error {
	if s.servicesErr != nil {
		return s.servicesErr
	}
	s.store = &itemStore{}
	s.greeting = cfg.GetString("greeting")
	return di.Provide(c, s.store)
}

func (s *testStartup) Configure(srv *server.Server) error {
	if s.configureErr != nil {
		return s.configureErr
	}
	e := srv.GinEngine()

	e.GET("/value", func(c *gin.Context) {
		c.JSON(http.StatusOK, valueDTO{Value: 42})
	})
	echo := func(c *gin.Context) {
		var in valueDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, in)
	}
	e.POST("/value", echo)
	e.PUT("/value", echo)
	e.DELETE("/value", func(c *gin.Context) {
		c.JSON(http.StatusOK, valueDTO{Value: 42})
	})

	e.POST("/raw", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.JSON(http.StatusOK, gin.H{
			"body":         string(body),
			"content_type": c.ContentType(),
		})
	})
	e.GET("/request", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"host":          c.Request.Host,
			"traceparent":   c.GetHeader("Traceparent"),
			"authorization": c.GetHeader("Authorization"),
			"custom":        c.GetHeader("X-Custom"),
			"greeting":      s.greeting,
		})
	})
	e.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		c.Status(http.StatusServiceUnavailable)
	})
	e.GET("/secure", func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			server.RespondWithError(c, apperrors.Unauthorized(""))
			return
		}
		server.RespondOK(c, gin.H{"subject": claims.Subject})
	})
	e.GET("/panic", func(c *gin.Context) {
		panic("handler failure")
	})

	srv.Handle("/mounted/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("mounted failure")
	}))
	return nil
}

// newFixture builds a fixture isolated from the working directory and the
// process environment.
func newFixture(t *testing.T, startup Startup, opts ...Option) *Fixture {
	t.Helper()
	base := []Option{WithConfigDir(t.TempDir()), WithoutEnv()}
	return NewT(t, startup, append(base, opts...)...)
}

func writeSettings(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestLoggerIncludesTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(OrgScope())
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set(OrgIDHeader, "org-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	line := buf.String()
	if !strings.Contains(line, `"organization_id":"org-1"`) {
		t.Fatalf("expected tenant in log line: %s", line)
	}
	if !strings.Contains(line, `"request_id":`) || !strings.Contains(line, `"status":200`) {
		t.Fatalf("expected request fields in log line: %s", line)
	}
}

func TestLoggerWithoutScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	line := buf.String()
	if strings.Contains(line, "organization_id") {
		t.Fatalf("unscoped request should not log a tenant: %s", line)
	}
	if !strings.Contains(line, `"path":"/healthz"`) {
		t.Fatalf("expected path in log line: %s", line)
	}
}

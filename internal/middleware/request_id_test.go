package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestRequestIDGeneratedAndLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	router := gin.New()
	router.Use(RequestIDMiddleware(zerolog.New(&buf)))
	router.GET("/products/:id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/products/1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	requestID := resp.Header().Get(requestIDHeaderName)
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected uuid request id, got %q", requestID)
	}
	if resp.Body.String() != requestID {
		t.Fatalf("context id %q != header id %q", resp.Body.String(), requestID)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if line["request_id"] != requestID || line["path"] != "/products/:id" {
		t.Fatalf("unexpected log line %v", line)
	}
	if int(line["status"].(float64)) != http.StatusOK {
		t.Fatalf("unexpected status in log %v", line["status"])
	}
}

func TestRequestIDPropagatedAndTruncated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware(zerolog.Nop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeaderName, "  upstream-id  ")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeaderName); got != "upstream-id" {
		t.Fatalf("expected propagated id, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeaderName, strings.Repeat("x", 300))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeaderName); len(got) != 128 {
		t.Fatalf("expected truncated id of 128 chars, got %d", len(got))
	}
}

package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gunvolt24/kbridge/pkg/ctxmeta"
	"github.com/Gunvolt24/kbridge/pkg/httpx"
)

// serveWithID — прогоняет запрос через middleware; возвращает заголовок ответа и id из контекста.
func serveWithID(t *testing.T, provided string) (header, inCtx string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(httpx.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		inCtx, _ = ctxmeta.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if provided != "" {
		req.Header.Set(httpx.HeaderRequestID, provided)
	}
	r.ServeHTTP(w, req)
	return w.Header().Get(httpx.HeaderRequestID), inCtx
}

func TestRequestIDMiddleware_KeepsClientID(t *testing.T) {
	header, inCtx := serveWithID(t, "  poll-debug-42 ")
	if header != "poll-debug-42" || inCtx != header {
		t.Fatalf("want trimmed client id, got header=%q ctx=%q", header, inCtx)
	}
}

func TestRequestIDMiddleware_ReplacesUnacceptable(t *testing.T) {
	for name, provided := range map[string]string{
		"missing":    "",
		"too long":   strings.Repeat("x", 129),
		"whitespace": "a b",
		"non-ascii":  "запрос",
	} {
		t.Run(name, func(t *testing.T) {
			header, inCtx := serveWithID(t, provided)
			if _, err := uuid.Parse(header); err != nil {
				t.Fatalf("want generated UUID, got %q (%v)", header, err)
			}
			if inCtx != header {
				t.Fatalf("context id %q differs from header %q", inCtx, header)
			}
		})
	}
}

package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/middleware"
)

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r := bankconsole.NewRouter(bankconsole.Config{Logger: zerolog.Nop()})
	r.Use(middleware.Logger(logger))
	var seen string
	r.Get("/merchants", func(ctx *bankconsole.Context) error {
		seen = middleware.RequestID(ctx)
		ctx.Logger().Info().Msg("inside")
		return ctx.String(http.StatusTeapot, "short")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/merchants", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var inside, served map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &served))
	assert.Equal(t, seen, inside["request_id"])
	assert.Equal(t, seen, served["request_id"])
	assert.Equal(t, float64(http.StatusTeapot), served["status"])
	assert.Equal(t, "/merchants", served["path"])
}

func TestLoggerKeepsIncomingRequestID(t *testing.T) {
	r := bankconsole.NewRouter(bankconsole.Config{Logger: zerolog.Nop()})
	r.Use(middleware.Logger(zerolog.Nop()))
	r.Get("/", func(ctx *bankconsole.Context) error { return ctx.NoContent() })

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "not-an-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-an-id", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRecover(t *testing.T) {
	r := bankconsole.NewRouter(bankconsole.Config{Logger: zerolog.Nop()})
	r.Use(middleware.Recover)
	r.Get("/", func(ctx *bankconsole.Context) error { panic("boom") })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func corsRouter(opt middleware.CorsOptions) *bankconsole.Router {
	r := bankconsole.NewRouter(bankconsole.Config{Logger: zerolog.Nop()})
	r.Use(middleware.Cors(opt))
	r.Get("/admin/merchants", func(ctx *bankconsole.Context) error { return ctx.JsonOk([]string{}) })
	r.Options("/admin/merchants", func(ctx *bankconsole.Context) error { return ctx.NoContent() })
	return r
}

func TestCorsPreflight(t *testing.T) {
	r := corsRouter(middleware.CorsDefault())
	req := httptest.NewRequest(http.MethodOptions, "/admin/merchants", nil)
	req.Header.Set("Origin", "https://reports.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://reports.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCorsOrigin(t *testing.T) {
	opt := middleware.CorsDefault()
	opt.AllowOrigin = "https://reports.example.com"
	r := corsRouter(opt)

	req := httptest.NewRequest(http.MethodGet, "/admin/merchants", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Origin", "https://reports.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://reports.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/merchants", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

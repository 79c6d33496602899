package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	max  int
	hits map[string]int
	err  error
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.hits[key]++
	return l.hits[key] <= l.max, nil
}

func serve(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func limitedEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw)
	e.GET("/api/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func TestRateLimit_PerAddress(t *testing.T) {
	limiter := &stubLimiter{max: 2, hits: map[string]int{}}
	e := limitedEcho(RateLimit(limiter, zerolog.Nop()))

	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.2").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	e := limitedEcho(RateLimit(limiter, zerolog.Nop()))

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, serve(e, "10.0.0.1").Code)
	}
}

func TestMemoryRateLimit(t *testing.T) {
	e := limitedEcho(MemoryRateLimit(3, time.Hour))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, serve(e, "10.0.0.9").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(e, "10.0.0.9").Code)
	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.10").Code)
}

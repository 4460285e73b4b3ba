package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/dinewise/internal/config"
)

func TestEntryRoundTrip(t *testing.T) {
	bs := encodeEntry(http.StatusOK, echo.MIMEApplicationJSON, []byte(`[{"id":"r1"}]`))
	status, ct, body, ok := decodeEntry(bs)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, ct)
	assert.Equal(t, `[{"id":"r1"}]`, string(body))

	_, _, _, ok = decodeEntry([]byte{0, 0})
	assert.False(t, ok)
	_, _, _, ok = decodeEntry([]byte{0, 0, 0, 200, 0, 9, 'a'})
	assert.False(t, ok)
}

func TestCacheKeyIgnoresQueryOrder(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "dinewise:cache"}
	e := echo.New()
	key := func(target string) string {
		return cacheKeyFrom(cfg, e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
	}

	a := key("/api/restaurants?city=Dehradun&page=2")
	assert.Equal(t, a, key("/api/restaurants?page=2&city=Dehradun"))
	assert.NotEqual(t, a, key("/api/restaurants?city=Dehradun&page=3"))
	assert.Contains(t, a, "dinewise:cache:")

	cfg.KeyStrategy = "route"
	assert.Equal(t, key("/api/restaurants?page=1"), key("/api/restaurants?page=9"))
}

func TestCaptureWriterStopsAtLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.over)
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.over)
	assert.Equal(t, 0, cw.buf.Len())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestNilRedisIsPassthrough(t *testing.T) {
	e := echo.New()
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}
	cache := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
	limit := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil)
	e.GET("/x", h, limit, cache)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 3, calls)
}

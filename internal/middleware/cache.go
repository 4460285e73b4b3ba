package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/dinewise/internal/config"
)

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int
    over   bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.over {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            // Too large to cache; stop copying but keep serving.
            cw.over = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom builds a stable key honoring prefix and strategy.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    var tail string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        tail = "route:" + r.URL.Path
    case "method_route_query":
        tail = "method:" + r.Method + ":route:" + r.URL.Path + ":q:" + r.URL.Query().Encode()
    default: // "route_query"
        tail = "route:" + r.URL.Path + ":q:" + r.URL.Query().Encode()
    }
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodeEntry packs [4 bytes status][2 bytes ctLen][content type][body].
func encodeEntry(status int, contentType string, body []byte) []byte {
    out := make([]byte, 6+len(contentType)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint16(out[4:6], uint16(len(contentType)))
    copy(out[6:], contentType)
    copy(out[6+len(contentType):], body)
    return out
}

func decodeEntry(bs []byte) (status int, contentType string, body []byte, ok bool) {
    if len(bs) < 6 {
        return 0, "", nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    n := int(binary.BigEndian.Uint16(bs[4:6]))
    if 6+n > len(bs) {
        return 0, "", nil, false
    }
    return status, string(bs[6 : 6+n]), bs[6+n:], true
}

// NewRedisCache caches successful responses of the configured methods in
// Redis for cfg.TTL.  It is a passthrough when caching is disabled or rdb
// is nil, and Redis errors never fail the request.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKeyFrom(cfg, c)

            bs, err := rdb.Get(ctx, key).Bytes()
            if err == nil {
                if status, ct, body, ok := decodeEntry(bs); ok {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(status, ct, body)
                }
            } else if err != redis.Nil {
                Logger(c).WithError(err).Warn("cache read failed")
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status == http.StatusOK && !cw.over {
                entry := encodeEntry(cw.status, c.Response().Header().Get(echo.HeaderContentType), cw.buf.Bytes())
                if err := rdb.Set(context.WithoutCancel(ctx), key, entry, ttl).Err(); err != nil {
                    Logger(c).WithError(err).Warn("cache write failed")
                }
            }
            return nil
        }
    }
}

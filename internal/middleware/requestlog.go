package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const loggerKey = "logger"

// RequestLogger attaches a request id and a request-scoped logrus entry to
// every request and logs its completion.  The Authorization header and the
// request body are never logged.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			requestID := r.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			start := time.Now()
			entry := log.WithFields(logrus.Fields{
				"http.req.path":   r.URL.Path,
				"http.req.method": r.Method,
				"http.req.id":     requestID,
			})
			c.Set(loggerKey, entry)
			entry.Debug("request started")

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			entry.WithFields(logrus.Fields{
				"http.resp.took_ms": time.Since(start).Milliseconds(),
				"http.resp.status":  c.Response().Status,
				"http.resp.bytes":   c.Response().Size,
			}).Info("request complete")
			return nil
		}
	}
}

// Logger returns the request-scoped entry set by RequestLogger, or an entry
// on the standard logger when the middleware is not installed.
func Logger(c echo.Context) *logrus.Entry {
	if e, ok := c.Get(loggerKey).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

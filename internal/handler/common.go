package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/dinewise/internal/middleware"
    "github.com/iliyamo/dinewise/internal/queue"
    "github.com/iliyamo/dinewise/internal/repository"
)

// dbTimeout bounds the store calls of a single request.
const dbTimeout = 5 * time.Second

// EventPublisher receives activity events after successful writes.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// errMissingFields is the body of every 400 caused by an absent field.
var errMissingFields = echo.Map{"error": "missing fields"}

// storeError maps a repository error to a response.  ErrNotFound and
// ErrConflict become 404 and 409 with the given messages; anything else is
// logged once with op and fields and answered with a generic 500.
func storeError(c echo.Context, err error, op string, fields logrus.Fields, notFound, conflict string) error {
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": notFound})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": conflict})
    }
    middleware.Logger(c).WithFields(fields).WithField("op", op).WithError(err).Error("store error")
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
}

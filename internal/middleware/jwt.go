package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/dinewise/internal/utils"
)

// UserIDKey is the echo context key under which JWTAuth stores the
// authenticated subject.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and stores its subject in the request context.  Handlers read it back via
// CurrentUserID.  A request without a bearer credential gets
// 401 "missing token"; a bad or expired token gets 401 "invalid token".
func JWTAuth(issuer *utils.TokenIssuer) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, err := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
            }
            sub, err := issuer.Verify(raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set(UserIDKey, sub)
            return next(c)
        }
    }
}

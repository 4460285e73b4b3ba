package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/dinewise/internal/utils"
)

// CurrentUserID returns the subject stored by JWTAuth, or "" when the
// request is unauthenticated.
func CurrentUserID(c echo.Context) string {
    if s, ok := c.Get(UserIDKey).(string); ok {
        return s
    }
    return ""
}

// userKey identifies the caller for rate limiting.  The limiter sits on the
// /api group and runs before the per-route JWTAuth, so a bearer token is
// verified here on a best-effort basis.  Guests and bad tokens share "anon".
func userKey(c echo.Context, issuer *utils.TokenIssuer) string {
    if s := CurrentUserID(c); s != "" {
        return s
    }
    if issuer == nil {
        return "anon"
    }
    raw, err := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
    if err != nil {
        return "anon"
    }
    sub, err := issuer.Verify(raw)
    if err != nil {
        return "anon"
    }
    return sub
}

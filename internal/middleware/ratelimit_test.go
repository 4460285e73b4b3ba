package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/dinewise/internal/config"
	"github.com/iliyamo/dinewise/internal/utils"
)

func TestBuildRateKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/ratings", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/ratings")
	c.Set(UserIDKey, "u1")

	cfg := config.RateLimitConfig{Prefix: "dinewise:rl"}
	assert.Equal(t, "dinewise:rl:ip:203.0.113.7:user:u1:route:POST /api/ratings", buildRateKey(cfg, c, nil))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "dinewise:rl:ip:203.0.113.7", buildRateKey(cfg, c, nil))

	cfg.KeyStrategy = "USER"
	assert.Equal(t, "dinewise:rl:user:u1", buildRateKey(cfg, c, nil))

	cfg.KeyStrategy = "ip_route"
	assert.Equal(t, "dinewise:rl:ip:203.0.113.7:route:POST /api/ratings", buildRateKey(cfg, c, nil))
}

func TestBuildRateKeyReadsBearerToken(t *testing.T) {
	issuer := utils.NewTokenIssuer("rl-secret")
	tok, err := issuer.Issue("alice")
	require.NoError(t, err)
	foreign, err := utils.NewTokenIssuer("other").Issue("mallory")
	require.NoError(t, err)

	cfg := config.RateLimitConfig{Prefix: "dinewise:rl", KeyStrategy: "user"}
	key := func(auth string, iss *utils.TokenIssuer) string {
		req := httptest.NewRequest(http.MethodPost, "/api/reviews", nil)
		if auth != "" {
			req.Header.Set(echo.HeaderAuthorization, auth)
		}
		return buildRateKey(cfg, echo.New().NewContext(req, httptest.NewRecorder()), iss)
	}

	assert.Equal(t, "dinewise:rl:user:alice", key("Bearer "+tok.Token, issuer))
	assert.Equal(t, "dinewise:rl:user:anon", key("Bearer "+foreign.Token, issuer))
	assert.Equal(t, "dinewise:rl:user:anon", key("", issuer))
	assert.Equal(t, "dinewise:rl:user:anon", key("Bearer "+tok.Token, nil))
}

package utils // package utils provides helpers for password hashing and session tokens

import (
    "errors" // sentinel errors for token verification
    "strings"
    "time" // expirations and issue times

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// AccessTokenTTL is the fixed validity window of a session token.
const AccessTokenTTL = 12 * time.Hour

var (
    // ErrMissingToken is returned when a request carries no bearer credential.
    ErrMissingToken = errors.New("missing token")
    // ErrInvalidToken covers bad signatures, unexpected algorithms, missing
    // subjects and expired tokens alike.
    ErrInvalidToken = errors.New("invalid token")
)

// AccessToken represents a signed JWT along with its expiry.  The Token
// field holds the serialized JWT sent back in the Authorization header of
// protected calls.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenIssuer signs and verifies HS256 session tokens.  It is built once at
// startup and shared read-only by every request.  Rotating Secret
// invalidates every outstanding token.
type TokenIssuer struct {
    secret []byte
    ttl    time.Duration
    now    func() time.Time
}

// NewTokenIssuer returns an issuer using the given secret, the fixed
// AccessTokenTTL and the wall clock.
func NewTokenIssuer(secret string) *TokenIssuer {
    return &TokenIssuer{secret: []byte(secret), ttl: AccessTokenTTL, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.  Tests
// use it to move past the expiry window.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
    cp := *i
    cp.now = now
    return &cp
}

// Issue builds and signs a token for subject.  The claims are the standard
// subject (sub), issued at (iat) and expiration (exp).
func (i *TokenIssuer) Issue(subject string) (AccessToken, error) {
    if strings.TrimSpace(subject) == "" {
        return AccessToken{}, errors.New("token subject required")
    }
    iat := i.now().UTC()
    exp := iat.Add(i.ttl)
    claims := jwt.MapClaims{
        "sub": subject,
        "iat": iat.Unix(),
        "exp": exp.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify parses raw, checks its signature and expiry and returns the
// subject.  Every failure is reported as ErrInvalidToken; an empty raw
// string is ErrMissingToken.
func (i *TokenIssuer) Verify(raw string) (string, error) {
    if strings.TrimSpace(raw) == "" {
        return "", ErrMissingToken
    }
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject anything not signed with HMAC.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return i.secret, nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(i.now),
    )
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    sub, err := tok.Claims.GetSubject()
    if err != nil || sub == "" {
        return "", ErrInvalidToken
    }
    return sub, nil
}

// BearerToken extracts the token from an Authorization header value.  It
// returns ErrMissingToken when the header is absent or not a Bearer
// credential.
func BearerToken(header string) (string, error) {
    const prefix = "Bearer "
    if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
        return "", ErrMissingToken
    }
    raw := strings.TrimSpace(header[len(prefix):])
    if raw == "" {
        return "", ErrMissingToken
    }
    return raw, nil
}

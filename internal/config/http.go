package config

import "strings"

// HTTPConfig holds the edge settings applied to every request.
type HTTPConfig struct {
    AllowOrigins []string // CORS origins; "*" allows any
    BodyLimit    string   // request body ceiling, e.g. "10M"
}

// LoadHTTPConfig reads CORS_ALLOWED_ORIGINS (comma separated, default "*")
// and HTTP_BODY_LIMIT (default "10M").
func LoadHTTPConfig() HTTPConfig {
    return HTTPConfig{
        AllowOrigins: parseList(envStr("CORS_ALLOWED_ORIGINS", "*")),
        BodyLimit:    envStr("HTTP_BODY_LIMIT", "10M"),
    }
}

func parseList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// JWT pattern: three base64 segments separated by dots
	jwtPattern = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)

	bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)

	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)
)

// DefaultRedactOptions returns the masq options applied to every log line.
// Covers credential-shaped field names plus the upstream service keys the
// engine holds (tourism API key, user-service token).
func DefaultRedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("apikey"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("serviceKey"),
		masq.WithFieldName("service_key"),
		masq.WithFieldName("accessToken"),
		masq.WithFieldName("access_token"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("auth"),
		masq.WithFieldName("bearer"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("session"),

		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),

		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
	}
}

// NewReplaceAttr creates a ReplaceAttr function for slog.HandlerOptions
// that redacts sensitive data.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	allOpts := append(DefaultRedactOptions(), opts...)
	return masq.New(allOpts...)
}

package transport

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/unrolled/secure"
)

// NewIPRateLimiter returns middleware that limits requests per client IP.
// rate uses the "<limit>-<period>" form, e.g. "100-M" or "10-S". An empty rate
// disables limiting.
func NewIPRateLimiter(rate string) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		return noopMiddleware, nil
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(memory.NewStore(), parsed)
	return stdlib.NewMiddleware(instance).Handler, nil
}

// SecureHeaders returns middleware that sets the standard hardening headers.
func SecureHeaders() func(http.Handler) http.Handler {
	return secure.New(secure.Options{
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}).Handler
}

func noopMiddleware(next http.Handler) http.Handler {
	return next
}

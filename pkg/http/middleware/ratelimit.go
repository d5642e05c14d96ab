package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower decides whether a request identified by key may proceed.
type Allower interface {
	Allow(key string) bool
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	Limiter Allower
	// Skip lists route templates that are never limited.
	Skip []string
	// Deny writes the rejection. Defaults to a bare 429.
	Deny echo.HandlerFunc
}

// RateLimit rejects requests once the caller's IP has exhausted its budget.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(cfg.Skip))
	for _, p := range cfg.Skip {
		skipped[p] = struct{}{}
	}
	deny := cfg.Deny
	if deny == nil {
		deny = func(c echo.Context) error {
			return c.NoContent(http.StatusTooManyRequests)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Path()]; ok {
				return next(c)
			}
			if !cfg.Limiter.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return deny(c)
			}
			return next(c)
		}
	}
}

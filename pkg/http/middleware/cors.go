package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

// CORS returns CORS middleware. Requests from origins outside AllowOrigins are
// passed through without CORS headers, so browsers reject them.
func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	wildcard := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
			break
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			origin := req.Header.Get(echo.HeaderOrigin)
			res.Header().Add(echo.HeaderVary, echo.HeaderOrigin)

			if origin == "" || !originAllowed(cfg.AllowOrigins, wildcard, origin) {
				return next(c)
			}

			if wildcard {
				res.Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
			} else {
				res.Header().Set(echo.HeaderAccessControlAllowOrigin, origin)
			}

			if req.Method != http.MethodOptions {
				return next(c)
			}

			// preflight
			if methods != "" {
				res.Header().Set(echo.HeaderAccessControlAllowMethods, methods)
			}
			if headers != "" {
				res.Header().Set(echo.HeaderAccessControlAllowHeaders, headers)
			}
			if cfg.MaxAge > 0 {
				res.Header().Set(echo.HeaderAccessControlMaxAge, strconv.Itoa(cfg.MaxAge))
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}

func originAllowed(allowed []string, wildcard bool, origin string) bool {
	if wildcard {
		return true
	}
	for _, o := range allowed {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

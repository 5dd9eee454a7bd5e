package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware creates an Echo middleware that validates a bearer token.
// Requests to any of skipPaths pass through unauthenticated. An empty
// adminKey disables the check entirely.
func AuthMiddleware(adminKey string, skipPaths []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminKey == "" {
				return next(c)
			}
			for _, p := range skipPaths {
				if c.Request().URL.Path == p {
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return errorJSON(c, http.StatusUnauthorized, "authentication_error", "missing authorization header")
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				return errorJSON(c, http.StatusUnauthorized, "authentication_error",
					"invalid authorization header format, expected 'Bearer <token>'")
			}

			token := strings.TrimPrefix(authHeader, prefix)
			if subtle.ConstantTimeCompare([]byte(token), []byte(adminKey)) != 1 {
				return errorJSON(c, http.StatusUnauthorized, "authentication_error", "invalid admin key")
			}

			return next(c)
		}
	}
}

package middleware

// identity.go resolves the optional caller identity from a bearer token.
// No route requires identity; it only decides who owns an upload and how
// the rate limiter buckets a request.

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pdfsum/internal/utils"
)

// userIDKey is the echo context key holding the authenticated user id (uint64).
const userIDKey = "user_id"

// Identity returns a middleware that validates an optional Bearer access
// token. Requests without an Authorization header pass through anonymously;
// a present but malformed or invalid token is answered with 401. With an
// empty secret no token can be verified and the header is ignored.
func Identity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if secret == "" {
			return next
		}
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(userIDKey, uid)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c echo.Context) (uint64, bool) {
	uid, ok := c.Get(userIDKey).(uint64)
	return uid, ok && uid != 0
}

// userIDLabel renders the caller for rate-limit keys. It returns "anon"
// when nobody is authenticated.
func userIDLabel(c echo.Context) string {
	if uid, ok := UserID(c); ok {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/booking-microservice/slot-service/pkg/auth"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// TokenParser turns a bearer token into a principal.
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// Authenticate requires a valid bearer token on every request it wraps.
// SSE clients that cannot set headers may pass the token as ?access_token=.
func Authenticate(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if tok == "" {
				tok = c.QueryParam("access_token")
			}
			if tok == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			p, err := parser.Parse(tok)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// DevAuthenticate reads the identity from ?uid=&role=&name=. Local use only.
func DevAuthenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := auth.Principal{
				ID:     strings.TrimSpace(c.QueryParam("uid")),
				Role:   auth.Role(c.QueryParam("role")),
				Name:   c.QueryParam("name"),
				Avatar: c.QueryParam("avatar"),
			}
			if p.ID == "" || !p.Role.Valid() {
				return echo.NewHTTPError(http.StatusUnauthorized, "uid and a valid role are required")
			}
			if p.Name == "" {
				p.Name = p.ID
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Authenticate or DevAuthenticate.
func PrincipalFrom(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}

// SetPrincipal is used by tests that bypass the auth middleware.
func SetPrincipal(c echo.Context, p auth.Principal) {
	c.Set(principalKey, p)
}

func bearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

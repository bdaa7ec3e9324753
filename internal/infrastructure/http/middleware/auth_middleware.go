package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/script-workspace/errors"
	"github.com/johnquangdev/script-workspace/pkg/jwt"
)

// ContextKey names values the middleware stores on the echo context
type ContextKey string

const (
	// ClaimsContextKey holds the validated *jwt.Claims
	ClaimsContextKey ContextKey = "claims"
	// SubjectContextKey holds the token subject
	SubjectContextKey ContextKey = "subject"
)

// TokenValidator validates a raw bearer token
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that requires a valid bearer token.
// The token is read from the Authorization header, the access_token cookie
// or, for websocket handshakes, the access_token query parameter.
func EchoAuth(validator TokenValidator, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return apperrors.ErrUnauthenticated()
			}

			claims, err := validator.Validate(token)
			if err != nil {
				if logger != nil {
					logger.Debug("rejected bearer token",
						zap.String("path", c.Path()),
						zap.Error(err),
					)
				}
				if errors.Is(err, jwt.ErrTokenExpired) {
					return apperrors.ErrTokenExpired()
				}
				return apperrors.ErrInvalidToken()
			}

			c.Set(string(ClaimsContextKey), claims)
			c.Set(string(SubjectContextKey), claims.Subject)
			return next(c)
		}
	}
}

// SubjectFromContext returns the authenticated subject, if any.
func SubjectFromContext(c echo.Context) (string, bool) {
	subject, ok := c.Get(string(SubjectContextKey)).(string)
	return subject, ok
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if websocketUpgrade(c) {
		return c.QueryParam("access_token")
	}
	return ""
}

func websocketUpgrade(c echo.Context) bool {
	return strings.EqualFold(c.Request().Header.Get(echo.HeaderUpgrade), "websocket")
}

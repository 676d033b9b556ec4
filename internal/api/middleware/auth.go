package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/LessonsQueue/QueueManager/internal/core/ports"
	"github.com/LessonsQueue/QueueManager/internal/core/token"
)

// Auth validates the bearer access token and injects the caller's identity
// into context. Beyond the signature and expiry, the token's binding hash
// must match the user's current credentials: a token minted before a
// password change verifies but is no longer accepted.
func Auth(issuer *token.Issuer, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			claims, err := issuer.Verify(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if token.BindingHash(user.Email, user.PasswordHash) != claims.Hash {
				return echo.NewHTTPError(http.StatusUnauthorized, "login with new credentials")
			}

			c.Set("user_id", user.ID)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AccessToken extracts the raw bearer token, if any. The refresh endpoint
// uses it to read the (possibly expired) access token alongside the refresh
// token from the body.
func AccessToken(c echo.Context) string {
	raw, _ := bearerToken(c)
	return raw
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/core/ports"
)

// callerKey is the context key the auth middleware stores the resolved
// caller identity under.
const callerKey = "caller"

// Auth requires a valid bearer token and injects the resolved caller
// identity into context. The token's subject is re-fetched from the user
// store, so tokens for deleted accounts are rejected.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			caller, _, err := auth.ResolveCaller(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// OptionalAuth resolves the caller when a bearer token is present and falls
// back to the guest sentinel when it is not. A token that is present but
// invalid is still rejected: silently downgrading a bad token to guest
// would mask client bugs.
func OptionalAuth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				c.Set(callerKey, ports.Guest())
				return next(c)
			}

			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			caller, _, err := auth.ResolveCaller(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// Caller extracts the identity stored by Auth or OptionalAuth. Returns the
// guest sentinel when neither middleware ran.
func Caller(c echo.Context) ports.Caller {
	caller, ok := c.Get(callerKey).(ports.Caller)
	if !ok {
		return ports.Guest()
	}
	return caller
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

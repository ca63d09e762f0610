package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/api/middleware"
	"github.com/inkwell/content-api/internal/core/ports"
)

// ctxCaller extracts the caller identity injected by the Auth middleware and
// fast-fails before any service call: an empty id means the middleware did
// not run on a route that requires it.
func ctxCaller(c echo.Context) (ports.Caller, error) {
	caller := middleware.Caller(c)
	if caller.IsGuest() {
		return ports.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return caller, nil
}

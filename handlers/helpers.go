package handlers

import (
	"net/http"

	"casevault/services"

	"github.com/labstack/echo/v4"
)

// httpError maps the service error taxonomy to HTTP statuses:
// ValidationError 400, Forbidden 403, NotFound 404, Conflict 409.
// Anything else is an internal error with a generic message.
func httpError(err error) error {
	switch {
	case services.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case services.IsForbidden(err):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case services.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case services.IsConflict(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
